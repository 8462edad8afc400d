package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	DBUrl                     string
	RedisURL                  string
	RedisPassword             string
	JWTSecret                 string
	Port                      string
	Host                      string
	Env                       string
	AllowedOrigins            []string
	CommissionRates           []decimal.Decimal
	CommissionOnRepeatDeposit bool
	SchedulerInterval         time.Duration
	DepositExpiryHours        int
}

func LoadConfig() Config {
	godotenv.Load()

	rates, err := parseRates(getEnvDefault("COMMISSION_RATES", "8,4,3,2,1,1,1"))
	if err != nil {
		panic(fmt.Sprintf("COMMISSION_RATES is invalid: %v", err))
	}

	interval, err := time.ParseDuration(getEnvDefault("SCHEDULER_INTERVAL", "1m"))
	if err != nil {
		panic("SCHEDULER_INTERVAL must be a valid duration, e.g. 1m or 30s")
	}

	expiryHours := 0
	if v := os.Getenv("DEPOSIT_EXPIRY_HOURS"); v != "" {
		expiryHours, err = strconv.Atoi(v)
		if err != nil || expiryHours < 0 {
			panic("DEPOSIT_EXPIRY_HOURS must be a non-negative integer")
		}
	}

	return Config{
		DBUrl:                     getEnv("DATABASE_URL"),
		RedisURL:                  getEnv("REDIS_URL"),
		RedisPassword:             os.Getenv("REDIS_PASSWORD"),
		JWTSecret:                 getEnv("JWT_SECRET"),
		Port:                      getEnv("PORT"),
		Host:                      getEnv("HOST"),
		Env:                       getEnv("ENV"),
		AllowedOrigins:            strings.Split(getEnv("ALLOWED_ORIGINS"), ","),
		CommissionRates:           rates,
		CommissionOnRepeatDeposit: os.Getenv("COMMISSION_ON_REPEAT_DEPOSITS") == "true",
		SchedulerInterval:         interval,
		DepositExpiryHours:        expiryHours,
	}
}

// parseRates parses a comma separated percent schedule, e.g. "8,4,3,2,1,1,1".
// Position i is the commission rate for referral level i+1.
func parseRates(s string) ([]decimal.Decimal, error) {
	parts := strings.Split(s, ",")
	rates := make([]decimal.Decimal, 0, len(parts))
	for _, p := range parts {
		d, err := decimal.NewFromString(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		if d.IsNegative() {
			return nil, fmt.Errorf("rate %s is negative", d)
		}
		rates = append(rates, d)
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("empty schedule")
	}
	return rates, nil
}

func getEnv(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	panic(fmt.Sprintf("%s is required", key))
}

func getEnvDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
