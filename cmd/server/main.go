package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/mux"
	"github.com/stackvest/stackvest-backend/cmd/routes"
	"github.com/stackvest/stackvest-backend/internal/adjustment"
	"github.com/stackvest/stackvest-backend/internal/gateway"
	"github.com/stackvest/stackvest-backend/internal/investment"
	"github.com/stackvest/stackvest-backend/internal/key"
	"github.com/stackvest/stackvest-backend/internal/plan"
	"github.com/stackvest/stackvest-backend/internal/referral"
	"github.com/stackvest/stackvest-backend/internal/transaction"
	"github.com/stackvest/stackvest-backend/internal/user"
	"github.com/stackvest/stackvest-backend/internal/wallet"
	"github.com/stackvest/stackvest-backend/pkg/config"
	"github.com/stackvest/stackvest-backend/pkg/database"
	"github.com/stackvest/stackvest-backend/pkg/events"
	"github.com/stackvest/stackvest-backend/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	database.Connect(cfg.DBUrl)
	database.Migrate(
		&user.User{},
		&wallet.Wallet{},
		&gateway.PaymentGateway{},
		&transaction.Transaction{},
		&plan.Plan{},
		&investment.Investment{},
		&investment.ProfitDistribution{},
		&adjustment.Adjustment{},
		&referral.Referral{},
		&referral.CommissionCredit{},
		&referral.CascadeRun{},
		&key.APIKey{},
	)

	redisClient := events.NewRedisClient(cfg)

	r := mux.NewRouter()
	handler, app := routes.RegisterRoutes(r, cfg, redisClient)

	rootCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	app.CascadeWorker.Start()
	app.Transactions.StartExpirySweep(cfg.DepositExpiryHours)
	investment.NewScheduler(app.Investments, cfg.SchedulerInterval).Start(rootCtx)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("Server starting", logger.Fields{"port": cfg.Port, "env": cfg.Env})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Could not listen", logger.Fields{"port": cfg.Port, "error": err.Error()})
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c

	stopWorkers()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	server.Shutdown(ctx)
	logger.Info("Server gracefully shut down")
}
