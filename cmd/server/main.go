package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/safecity/backend/internal/config"
	delivery "github.com/safecity/backend/internal/delivery/http"
	"github.com/safecity/backend/internal/domain"
	"github.com/safecity/backend/internal/jobs"
	"github.com/safecity/backend/internal/logger"
	"github.com/safecity/backend/internal/repository/postgres"
	"github.com/safecity/backend/internal/service"
)

const rateLimiterIdle = 10 * time.Minute

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer logger.Sync(log)

	for _, w := range cfg.Warnings {
		log.Warn("config", zap.String("warning", w))
	}

	// Dependency Injection: Repositories
	pool := connectDatabase(cfg.DatabaseURL, log)
	if pool != nil {
		defer pool.Close()
	}

	var crimeRepo service.CrimeRepository
	if pool != nil {
		crimeRepo = postgres.NewCrimeRepository(pool)
	} else {
		crimeRepo = postgres.NewMockRepository()
	}

	// Dependency Injection: Services
	snapshot := service.NewReportSnapshot(crimeRepo, cfg.SnapshotTTL, log)
	clusterer := service.NewAreaClusterer()
	advisor := service.NewRouteAdvisor(domain.RouteScoring(cfg.RouteScoring))
	safetySvc := service.NewSafetyService(snapshot, clusterer, advisor, cfg.RouteReportLimit, log)
	insightSvc := service.NewInsightService(snapshot, clusterer, cfg.OpenAIAPIKey, cfg.OpenAIModel, log)
	limiter := delivery.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	log.Info("services ready",
		zap.String("route_scoring", string(advisor.Scoring())),
		zap.Duration("snapshot_ttl", cfg.SnapshotTTL),
		zap.Bool("llm_insights", cfg.OpenAIAPIKey != ""))

	// Background jobs
	scheduler, err := jobs.Start([]jobs.Task{
		{
			Name: "snapshot-refresh",
			Spec: cfg.SnapshotRefreshCron,
			Run:  snapshot.Refresh,
		},
		{
			Name: "rate-limiter-cleanup",
			Spec: "@every 5m",
			Run: func(ctx context.Context) error {
				if n := limiter.Cleanup(rateLimiterIdle); n > 0 {
					log.Debug("rate limiter clients evicted", zap.Int("count", n))
				}
				return nil
			},
		},
	}, log)
	if err != nil {
		log.Fatal("failed to start background jobs", zap.Error(err))
	}

	// Fiber App
	app := delivery.NewApp(delivery.AppConfig{
		Name:           "SafeCity API v1.0",
		AllowedOrigins: cfg.AllowedOrigins,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
	}, log)

	// Routes
	delivery.SetupRoutes(app, safetySvc, insightSvc, limiter, log)

	// Graceful shutdown
	go func() {
		log.Info("server starting", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	jobs.Stop(ctx, scheduler)

	log.Info("server exited gracefully")
}

// connectDatabase returns nil when the database is not configured or unreachable;
// the service then runs on demo data
func connectDatabase(url string, log *zap.Logger) *pgxpool.Pool {
	if url == "" {
		log.Warn("DATABASE_URL not set, running with demo data only")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		log.Warn("could not connect to database, running with demo data only", zap.Error(err))
		return nil
	}
	if err := pool.Ping(ctx); err != nil {
		log.Warn("database ping failed, running with demo data only", zap.Error(err))
		pool.Close()
		return nil
	}

	log.Info("connected to PostgreSQL")
	return pool
}
