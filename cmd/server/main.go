package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/wekeepgrowing/entitlement-service/internal/adapter/repository"
	"github.com/wekeepgrowing/entitlement-service/internal/config"
	"github.com/wekeepgrowing/entitlement-service/internal/domain/provider"
	domainRepo "github.com/wekeepgrowing/entitlement-service/internal/domain/repository"
	"github.com/wekeepgrowing/entitlement-service/internal/infrastructure/cache"
	"github.com/wekeepgrowing/entitlement-service/internal/infrastructure/database"
	httpServer "github.com/wekeepgrowing/entitlement-service/internal/infrastructure/http"
	stripeProvider "github.com/wekeepgrowing/entitlement-service/internal/infrastructure/provider/stripe"
	"github.com/wekeepgrowing/entitlement-service/internal/usecase"
	"go.uber.org/zap"
)

func main() {
	// .env is optional; real deployments inject the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Every dependency below is optional: a missing secret or address
	// disables the subsystem instead of failing startup.
	var billing provider.BillingProvider
	if cfg.Service.StripeSecretKey != "" {
		billing = stripeProvider.NewStripeProvider(cfg.Service.StripeSecretKey, logger)
	} else {
		logger.Warn("Stripe secret key not set, provider fallback disabled")
	}

	var snapshots domainRepo.SnapshotRepository
	if cfg.Cache.Enabled() {
		redisClient, err := cache.NewRedisClient(&cfg.Cache, logger)
		if err != nil {
			logger.Warn("Snapshot cache unavailable, continuing without it", zap.Error(err))
		} else {
			defer redisClient.Close()
			snapshots = repository.NewSnapshotRepository(redisClient, logger, cfg.Cache.TTL)
		}
	} else {
		logger.Info("Snapshot cache not configured")
	}

	var eventLog repository.EventLogRepository
	if cfg.Database.Enabled() {
		db, err := database.NewConnection(&cfg.Database, logger)
		if err != nil {
			logger.Warn("Event log database unavailable, continuing without it", zap.Error(err))
		} else {
			defer func() {
				if err := database.Close(db, logger); err != nil {
					logger.Error("Failed to close database connection", zap.Error(err))
				}
			}()
			if err := database.Migrate(db, logger); err != nil {
				logger.Error("Failed to run database migrations", zap.Error(err))
			} else {
				eventLog = repository.NewEventLogRepository(db, logger)
			}
		}
	} else {
		logger.Info("Event log database not configured")
	}

	services := &httpServer.Services{
		Entitlement: usecase.NewEntitlementService(snapshots, billing, logger),
		SessionLink: usecase.NewSessionLinkService(snapshots, billing, logger),
		Webhook:     usecase.NewWebhookService(snapshots, billing, eventLog, logger),
		EventLog:    eventLog,
	}

	srv := httpServer.NewServer(cfg, logger, services)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	logger.Info("Server shut down successfully")
}
