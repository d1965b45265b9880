package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"

	adapterrepo "github.com/ledgerline/payment-orchestrator/internal/adapter/repository"
	"github.com/ledgerline/payment-orchestrator/internal/config"
	"github.com/ledgerline/payment-orchestrator/internal/domain/gateway"
	domainrepo "github.com/ledgerline/payment-orchestrator/internal/domain/repository"
	"github.com/ledgerline/payment-orchestrator/internal/infrastructure/database"
	httpServer "github.com/ledgerline/payment-orchestrator/internal/infrastructure/http"
	"github.com/ledgerline/payment-orchestrator/internal/infrastructure/recordstore"
	"github.com/ledgerline/payment-orchestrator/internal/logger"
	"github.com/ledgerline/payment-orchestrator/internal/usecase"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.NewZapLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	store, annotator, db, cleanup, err := buildStore(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize record store", zap.Error(err))
	}
	defer cleanup()

	ledger, err := buildLedger(cfg, store, db, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize idempotency ledger", zap.Error(err))
	}

	refunds := usecase.NewRefundOrchestrator(store, annotator, gateway.Simulated(), zapLogger)
	uc := usecase.NewPaymentUsecase(store, ledger, refunds, zapLogger, cfg.Service.SyncResolve)

	srv := httpServer.NewServer(cfg, zapLogger, uc)
	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}
	refunds.Wait()

	zapLogger.Info("Server shut down successfully")
}

// buildStore selects the persistence boundary. The http backend is the
// remote record service; memory and postgres keep records locally. The order
// annotator only has a real target on the http backend, so the others pair
// with the in-memory one.
func buildStore(cfg *config.Config, zapLogger *zap.Logger) (domainrepo.RecordStore, domainrepo.OrderAnnotator, *gorm.DB, func(), error) {
	switch cfg.Store.Backend {
	case "http":
		client := recordstore.NewClient(cfg.Store.BaseURL, cfg.Store.ConnectTimeout, cfg.Store.ReadTimeout, zapLogger)
		return client, client, nil, func() {}, nil
	case "postgres":
		db, err := database.NewConnection(&cfg.Database, zapLogger)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		if err := database.Migrate(db, zapLogger); err != nil {
			return nil, nil, nil, nil, err
		}
		cleanup := func() {
			if err := database.Close(db, zapLogger); err != nil {
				zapLogger.Error("Failed to close database connection", zap.Error(err))
			}
		}
		annotator := recordstore.NewClient(cfg.Store.BaseURL, cfg.Store.ConnectTimeout, cfg.Store.ReadTimeout, zapLogger)
		return adapterrepo.NewPostgresStore(db, zapLogger), annotator, db, cleanup, nil
	case "memory":
		store := adapterrepo.NewMemoryStore()
		return store, store, nil, func() {}, nil
	}
	return nil, nil, nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

func buildLedger(cfg *config.Config, store domainrepo.RecordStore, db *gorm.DB, zapLogger *zap.Logger) (domainrepo.IdempotencyLedger, error) {
	switch cfg.Ledger.Backend {
	case "postgres":
		if db == nil {
			return nil, fmt.Errorf("postgres ledger requires the postgres store backend")
		}
		return adapterrepo.NewPostgresLedger(db, store), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Ledger.Redis.Addr,
			Password: cfg.Ledger.Redis.Password,
			DB:       cfg.Ledger.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return adapterrepo.NewRedisLedger(client, store, zapLogger), nil
	case "memory":
		return adapterrepo.NewMemoryLedger(store), nil
	}
	return nil, fmt.Errorf("unknown ledger backend %q", cfg.Ledger.Backend)
}
