package routes

import (
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/stackvest/stackvest-backend/internal/adjustment"
	"github.com/stackvest/stackvest-backend/internal/auth"
	"github.com/stackvest/stackvest-backend/internal/gateway"
	"github.com/stackvest/stackvest-backend/internal/investment"
	"github.com/stackvest/stackvest-backend/internal/key"
	"github.com/stackvest/stackvest-backend/internal/middleware"
	"github.com/stackvest/stackvest-backend/internal/plan"
	"github.com/stackvest/stackvest-backend/internal/referral"
	"github.com/stackvest/stackvest-backend/internal/transaction"
	"github.com/stackvest/stackvest-backend/internal/user"
	"github.com/stackvest/stackvest-backend/internal/wallet"
	"github.com/stackvest/stackvest-backend/pkg/config"
	"github.com/stackvest/stackvest-backend/pkg/database"
	"github.com/stackvest/stackvest-backend/pkg/events"
	"github.com/stackvest/stackvest-backend/pkg/logger"
	"golang.org/x/time/rate"
)

// App bundles the long-running pieces the server entrypoint starts alongside
// the HTTP listener.
type App struct {
	Transactions  *transaction.Service
	Investments   *investment.Service
	CascadeWorker *referral.CascadeWorker
}

func RegisterRoutes(r *mux.Router, cfg config.Config, rdb *events.RedisClient) (http.Handler, *App) {
	userRepo := user.NewRepository(database.DB)
	walletRepo := wallet.NewRepository(database.DB)
	gatewayRepo := gateway.NewRepository(database.DB)
	planRepo := plan.NewRepository(database.DB)
	txnRepo := transaction.NewRepository(database.DB)
	invRepo := investment.NewRepository(database.DB)
	referralRepo := referral.NewRepository(database.DB)
	adjustmentRepo := adjustment.NewRepository(database.DB)
	keyRepo := key.NewRepository(database.DB)

	txnService := transaction.NewService(txnRepo, gatewayRepo, rdb)
	invService := investment.NewService(invRepo, planRepo, rdb)
	adjService := adjustment.NewService(adjustmentRepo)
	cascade := referral.NewCascade(userRepo, referralRepo, cfg.CommissionRates, cfg.CommissionOnRepeatDeposit)

	authHandler := auth.NewHandler(database.DB, userRepo, cfg)
	walletHandler := wallet.NewHandler(walletRepo)
	gatewayHandler := gateway.NewHandler(gatewayRepo)
	planHandler := plan.NewHandler(planRepo)
	txnHandler := transaction.NewHandler(txnService)
	invHandler := investment.NewHandler(invService)
	referralHandler := referral.NewHandler(referralRepo, cfg.CommissionRates)
	adjHandler := adjustment.NewHandler(adjService)
	keyHandler := key.NewHandler(keyRepo)

	r.Use(middleware.LoggingMiddleware)

	authLimiter := middleware.NewRateLimiter(rate.Limit(1), 5)
	authR := r.PathPrefix("/api/auth").Subrouter()
	authR.Use(authLimiter.Limit)
	authR.HandleFunc("/register", authHandler.Register).Methods("POST")
	authR.HandleFunc("/login", authHandler.Login).Methods("POST")

	r.HandleFunc("/api/plans", planHandler.ListPlans).Methods("GET")
	r.HandleFunc("/api/gateways", gatewayHandler.ListGateways).Methods("GET")

	userR := r.PathPrefix("/api").Subrouter()
	userR.Use(auth.JWTMiddleware(cfg, userRepo))
	userR.HandleFunc("/wallet", walletHandler.GetWallet).Methods("GET")
	userR.HandleFunc("/transactions/deposit", txnHandler.CreateDeposit).Methods("POST")
	userR.HandleFunc("/transactions/withdraw", txnHandler.CreateWithdrawal).Methods("POST")
	userR.HandleFunc("/transactions/{id}/cancel", txnHandler.Cancel).Methods("POST")
	userR.HandleFunc("/transactions/{id}", txnHandler.GetTransaction).Methods("GET")
	userR.HandleFunc("/transactions", txnHandler.ListTransactions).Methods("GET")
	userR.HandleFunc("/investments", invHandler.CreateInvestment).Methods("POST")
	userR.HandleFunc("/investments/{id}", invHandler.GetInvestment).Methods("GET")
	userR.HandleFunc("/investments", invHandler.ListInvestments).Methods("GET")
	userR.HandleFunc("/referrals", referralHandler.GetReferrals).Methods("GET")

	// Registered before the general admin subrouter so the prefix match
	// reaches the API-key path. External cron hits this with an API key; ops
	// can use an admin token.
	schedulerR := r.PathPrefix("/api/admin/scheduler").Subrouter()
	schedulerR.Use(auth.ServiceKeyOrAdmin(cfg, userRepo, keyRepo, key.PermissionScheduler))
	schedulerR.HandleFunc("/run", invHandler.RunDistributions).Methods("POST")

	adminR := r.PathPrefix("/api/admin").Subrouter()
	adminR.Use(auth.JWTMiddleware(cfg, userRepo))
	adminR.Use(auth.RequireAdmin)
	adminR.HandleFunc("/transactions/{id}/approve", txnHandler.Approve).Methods("POST")
	adminR.HandleFunc("/transactions/{id}/reject", txnHandler.Reject).Methods("POST")
	adminR.HandleFunc("/transactions", txnHandler.AdminListTransactions).Methods("GET")
	adminR.HandleFunc("/investments/{id}/pause", invHandler.Pause).Methods("POST")
	adminR.HandleFunc("/investments/{id}/resume", invHandler.Resume).Methods("POST")
	adminR.HandleFunc("/adjustments", adjHandler.CreateAdjustment).Methods("POST")
	adminR.HandleFunc("/adjustments", adjHandler.ListAdjustments).Methods("GET")
	adminR.HandleFunc("/keys", keyHandler.CreateKey).Methods("POST")
	adminR.HandleFunc("/keys", keyHandler.ListKeys).Methods("GET")

	if cfg.Env != "production" {
		r.HandleFunc("/swagger.yaml", func(w http.ResponseWriter, r *http.Request) {
			content, err := os.ReadFile("docs/swagger.yaml")
			if err != nil {
				logger.Error("Failed to read swagger.yaml", logger.Fields{"error": err.Error()})
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/yaml")
			w.Write(content)
		})

		r.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
			httpSwagger.URL("/swagger.yaml"),
		))
		logger.Info("Swagger documentation enabled at /swagger/index.html")
	}

	corsObj := handlers.CORS(
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-API-Key"}),
	)

	app := &App{
		Transactions:  txnService,
		Investments:   invService,
		CascadeWorker: referral.NewCascadeWorker(cascade, rdb),
	}
	return corsObj(r), app
}
