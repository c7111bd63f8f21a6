package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jengamart/jengamart-backend/internal/cron"
	"github.com/jengamart/jengamart-backend/internal/ledger"
	"github.com/jengamart/jengamart-backend/internal/payouts"
	"github.com/jengamart/jengamart-backend/internal/vendors"
	"github.com/jengamart/jengamart-backend/pkg/config"
	"github.com/jengamart/jengamart-backend/pkg/db"
	"github.com/jengamart/jengamart-backend/pkg/logger"
	"github.com/jengamart/jengamart-backend/pkg/metrics"
	"github.com/jengamart/jengamart-backend/pkg/migrate"
	"github.com/jengamart/jengamart-backend/pkg/payments"
	"github.com/jengamart/jengamart-backend/pkg/payments/banktransfer"
	"github.com/jengamart/jengamart-backend/pkg/payments/cash"
	"github.com/jengamart/jengamart-backend/pkg/payments/mobilemoney"
	"github.com/jengamart/jengamart-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	vendorsRepo := vendors.NewRepository(dbClient.DB())
	ledgerRepo := ledger.NewRepository(dbClient.DB())
	payoutsRepo := payouts.NewRepository(dbClient.DB())

	ledgerService, err := ledger.NewService(ledgerRepo, vendorsRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	payoutGenerator, err := payouts.NewGenerator(dbClient, payoutsRepo, vendorsRepo, cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payout generator", err)
		os.Exit(1)
	}

	registry, err := buildGatewayRegistry(cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build payout gateways", err)
		os.Exit(1)
	}

	payoutMetrics := metrics.NewPayoutMetrics(prometheus.DefaultRegisterer)
	payoutProcessor, err := payouts.NewProcessor(dbClient, payoutsRepo, vendorsRepo, ledgerService, registry, payoutMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payout processor", err)
		os.Exit(1)
	}

	monthlyJob, err := cron.NewMonthlyPayoutsJob(cron.MonthlyPayoutsJobParams{
		Logger:    logg,
		Generator: payoutGenerator,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create monthly payouts job", err)
		os.Exit(1)
	}
	pendingJob, err := cron.NewPendingPayoutsJob(cron.PendingPayoutsJobParams{
		Logger:    logg,
		Repo:      payoutsRepo,
		Processor: payoutProcessor,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create pending payouts job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, redis.LockKey("cron-worker", cfg.App.Env), cfg.Cron.Interval)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	jobMetrics := metrics.NewJobMetrics(prometheus.DefaultRegisterer)
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(monthlyJob, pendingJob),
		Lock:     lock,
		Metrics:  jobMetrics,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func buildGatewayRegistry(cfg *config.Config, logg *logger.Logger) (*payments.Registry, error) {
	gateways := []payments.Gateway{
		banktransfer.NewGateway(),
		cash.NewGateway(),
	}
	if cfg.MobileMoney.BaseURL != "" {
		mm, err := mobilemoney.NewGateway(cfg.MobileMoney, logg)
		if err != nil {
			return nil, err
		}
		gateways = append(gateways, mm)
	}
	return payments.NewRegistry(gateways...)
}
