package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stackvest/stackvest-backend/pkg/config"
	"github.com/stackvest/stackvest-backend/pkg/logger"
)

const (
	CascadeQueue      = "cascade_events"
	NotificationQueue = "notification_events"
	FailedQueue       = "failed_cascade_events"
)

type RedisClient struct {
	Client *redis.Client
}

// CascadeEvent is one qualifying financial event the commission cascade must
// process. SourceType+SourceID identify it for idempotency.
type CascadeEvent struct {
	SourceType   string          `json:"source_type"` // "deposit" or "profit"
	SourceID     string          `json:"source_id"`
	UserID       string          `json:"user_id"`
	Amount       decimal.Decimal `json:"amount"`
	FirstDeposit bool            `json:"first_deposit"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// NotificationEvent informs the external dispatcher of a terminal
// transaction or distribution. Content templating happens downstream.
type NotificationEvent struct {
	Kind      string    `json:"kind"`
	UserID    string    `json:"user_id"`
	Reference string    `json:"reference"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRedisClient(cfg config.Config) *RedisClient {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Error("Failed to parse Redis url", logger.Fields{"error": err.Error(), "url": cfg.RedisURL})
		opt = &redis.Options{
			Addr:     cfg.RedisURL,
			Password: cfg.RedisPassword,
			DB:       0,
		}
	}

	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		logger.Error("Failed to connect to Redis", logger.Fields{"error": err.Error(), "url": cfg.RedisURL})
	} else {
		logger.Info("Connected to Redis", logger.Fields{"url": cfg.RedisURL})
	}

	return &RedisClient{Client: rdb}
}

func (r *RedisClient) PublishCascade(ctx context.Context, event CascadeEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal cascade event: %v", err)
	}

	if err := r.Client.RPush(ctx, CascadeQueue, data).Err(); err != nil {
		return fmt.Errorf("failed to push cascade event to redis: %v", err)
	}

	return nil
}

func (r *RedisClient) PublishNotification(ctx context.Context, event NotificationEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal notification event: %v", err)
	}

	if err := r.Client.RPush(ctx, NotificationQueue, data).Err(); err != nil {
		return fmt.Errorf("failed to push notification event to redis: %v", err)
	}

	return nil
}

func (r *RedisClient) PushToDLQ(ctx context.Context, data []byte) error {
	if err := r.Client.RPush(ctx, FailedQueue, data).Err(); err != nil {
		return fmt.Errorf("failed to push event to DLQ: %v", err)
	}
	return nil
}
