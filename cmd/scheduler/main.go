package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/coopfin/loan-engine/internal/config"
	"github.com/coopfin/loan-engine/internal/logging"
	"github.com/coopfin/loan-engine/internal/repository"
	"github.com/coopfin/loan-engine/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logging.Setup(cfg.Logging)
	slog.Info("starting penalty scheduler")

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	loanRepo := repository.NewLoanRepository(db)
	penaltyService := service.NewPenaltyService(loanRepo, redisClient, cfg.GetPenaltyRate())

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatalf("Invalid scheduler timezone %q: %v", cfg.Scheduler.Timezone, err)
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	_, err = c.AddFunc(cfg.Scheduler.SweepSpec, func() {
		runSweep(penaltyService)
	})
	if err != nil {
		log.Fatalf("Failed to schedule penalty sweep: %v", err)
	}

	c.Start()
	slog.Info("scheduler started", "spec", cfg.Scheduler.SweepSpec, "timezone", cfg.Scheduler.Timezone)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down scheduler")
	<-c.Stop().Done()
	slog.Info("scheduler stopped")
}

func runSweep(penaltyService *service.PenaltyService) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	results, err := penaltyService.Sweep(ctx, time.Now())
	if err != nil {
		slog.Error("penalty sweep failed", "error", err)
		return
	}

	slog.Info("penalty sweep finished", "loans_penalized", len(results))
}
