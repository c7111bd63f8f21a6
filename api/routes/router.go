package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jengamart/jengamart-backend/api/controllers"
	"github.com/jengamart/jengamart-backend/api/middleware"
	checkoutsvc "github.com/jengamart/jengamart-backend/internal/checkout"
	"github.com/jengamart/jengamart-backend/internal/commission"
	"github.com/jengamart/jengamart-backend/internal/ledger"
	"github.com/jengamart/jengamart-backend/internal/payouts"
	"github.com/jengamart/jengamart-backend/internal/vendors"
	"github.com/jengamart/jengamart-backend/pkg/config"
	"github.com/jengamart/jengamart-backend/pkg/db"
	"github.com/jengamart/jengamart-backend/pkg/logger"
	"github.com/jengamart/jengamart-backend/pkg/redis"
)

// NewRouter wires the HTTP surface of the payout subsystem.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	checkoutService checkoutsvc.Service,
	commissionService commission.Service,
	ledgerService ledger.Service,
	vendorsRepo vendors.Repository,
	payoutsRepo payouts.Repository,
	payoutGenerator payouts.Generator,
	payoutProcessor payouts.Processor,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/carts/{cartId}/checkout", controllers.Checkout(checkoutService, logg))
		r.Get("/vendors/{vendorId}/payouts", controllers.ListVendorCompletedPayouts(payoutsRepo, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.AdminAuth(cfg.JWT, logg))

		r.Post("/orders/{orderId}/commission", controllers.ProcessOrderCommission(commissionService, logg))

		r.Get("/vendors/{vendorId}/transactions", controllers.ListVendorTransactions(ledgerService, logg))
		r.Get("/vendors/{vendorId}/balance", controllers.VendorBalance(ledgerService, vendorsRepo, logg))
		r.Post("/vendors/{vendorId}/payouts", controllers.GenerateVendorPayout(payoutGenerator, logg))

		r.Get("/payouts", controllers.ListPayouts(payoutsRepo, logg))
		r.Post("/payouts/generate", controllers.GenerateMonthlyPayouts(payoutGenerator, logg))
		r.Post("/payouts/{payoutId}/process", controllers.ProcessPayout(payoutProcessor, logg))
	})

	return r
}
