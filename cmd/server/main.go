package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/coopfin/loan-engine/internal/auth"
	"github.com/coopfin/loan-engine/internal/config"
	"github.com/coopfin/loan-engine/internal/domain"
	"github.com/coopfin/loan-engine/internal/handler"
	"github.com/coopfin/loan-engine/internal/interest"
	"github.com/coopfin/loan-engine/internal/logging"
	"github.com/coopfin/loan-engine/internal/repository"
	"github.com/coopfin/loan-engine/internal/service"
	"github.com/coopfin/loan-engine/pkg/response"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logging.Setup(cfg.Logging)

	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	redisClient := initRedis(cfg)
	defer redisClient.Close()

	loanRepo := repository.NewLoanRepository(db)
	userRepo := repository.NewUserRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	pricing := interest.Config{
		BaseMonth:               cfg.Interest.BaseMonth,
		BaseInterestRate:        cfg.GetBaseInterestRate(),
		SingleMonthInterestRate: cfg.GetSingleMonthInterestRate(),
		ServiceCharge:           cfg.GetServiceCharge(),
	}

	loanService := service.NewLoanService(loanRepo, userRepo, paymentRepo, redisClient, pricing)
	penaltyService := service.NewPenaltyService(loanRepo, redisClient, cfg.GetPenaltyRate())

	loanHandler := handler.NewLoanHandler(loanService, penaltyService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	router := setupRoutes(cfg, loanHandler, healthHandler)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		slog.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	slog.Info("server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(cfg *config.Config, loanHandler *handler.LoanHandler, healthHandler *handler.HealthHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware)
	router.Use(response.CORSMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// Internal routes: trusted scheduler only, guarded by a shared token
	internal := router.PathPrefix("/internal").Subrouter()
	internal.Use(auth.RequireInternalToken(cfg.Scheduler.InternalToken))
	internal.HandleFunc("/penalty-sweep", loanHandler.PenaltySweep).Methods("POST")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(auth.Middleware(cfg.Auth.JWTSecret))

	// The one member-facing read: a borrower's own approved loan
	api.HandleFunc("/loans/active", loanHandler.ActiveLoan).Methods("GET")

	admin := api.NewRoute().Subrouter()
	admin.Use(auth.RequireRole(domain.RoleAdmin))

	admin.HandleFunc("/loans/terms", loanHandler.ComputeTerms).Methods("POST")
	admin.HandleFunc("/loans", loanHandler.CreateLoan).Methods("POST")
	admin.HandleFunc("/loans/status", loanHandler.UpdateStatus).Methods("PATCH")
	admin.HandleFunc("/loans/by-status", loanHandler.LoansByStatus).Methods("POST")
	admin.HandleFunc("/loans/lookup", loanHandler.LookupLoan).Methods("POST")
	admin.HandleFunc("/loans/history", loanHandler.History).Methods("POST")
	admin.HandleFunc("/loans/payment", loanHandler.MakePayment).Methods("POST")
	admin.HandleFunc("/loans/stats", loanHandler.Stats).Methods("GET")

	return router
}
