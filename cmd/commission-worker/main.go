package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/jengamart/jengamart-backend/internal/commission"
	ordersconsumer "github.com/jengamart/jengamart-backend/internal/consumers/orders"
	"github.com/jengamart/jengamart-backend/internal/ledger"
	"github.com/jengamart/jengamart-backend/internal/orders"
	"github.com/jengamart/jengamart-backend/internal/vendors"
	"github.com/jengamart/jengamart-backend/pkg/config"
	"github.com/jengamart/jengamart-backend/pkg/db"
	"github.com/jengamart/jengamart-backend/pkg/logger"
	"github.com/jengamart/jengamart-backend/pkg/migrate"
	"github.com/jengamart/jengamart-backend/pkg/pubsub"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "commission-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "commission-worker"

	logg = logger.New(logger.Options{
		ServiceName: "commission-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub", err)
		}
	}()

	vendorsRepo := vendors.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	ledgerRepo := ledger.NewRepository(dbClient.DB())

	ledgerService, err := ledger.NewService(ledgerRepo, vendorsRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	commissionService, err := commission.NewService(dbClient, ordersRepo, vendorsRepo, ledgerService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create commission service", err)
		os.Exit(1)
	}

	consumer, err := ordersconsumer.NewConsumer(pubsubClient.OrdersSubscription(), commissionService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders consumer", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting commission worker")

	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "commission worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "commission worker shutting down gracefully")
}
