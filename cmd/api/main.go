package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jengamart/jengamart-backend/api/routes"
	checkoutsvc "github.com/jengamart/jengamart-backend/internal/checkout"
	"github.com/jengamart/jengamart-backend/internal/commission"
	"github.com/jengamart/jengamart-backend/internal/ledger"
	"github.com/jengamart/jengamart-backend/internal/orders"
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
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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
	ordersRepo := orders.NewRepository(dbClient.DB())
	cartRepo := orders.NewCartRepository(dbClient.DB())
	ledgerRepo := ledger.NewRepository(dbClient.DB())
	payoutsRepo := payouts.NewRepository(dbClient.DB())

	ledgerService, err := ledger.NewService(ledgerRepo, vendorsRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(dbClient, cartRepo, ordersRepo, vendorsRepo, cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	commissionService, err := commission.NewService(dbClient, ordersRepo, vendorsRepo, ledgerService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create commission service", err)
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

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			checkoutService,
			commissionService,
			ledgerService,
			vendorsRepo,
			payoutsRepo,
			payoutGenerator,
			payoutProcessor,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
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
