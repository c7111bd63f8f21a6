package payouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jengamart/jengamart-backend/internal/vendors"
	"github.com/jengamart/jengamart-backend/pkg/config"
	"github.com/jengamart/jengamart-backend/pkg/db"
	"github.com/jengamart/jengamart-backend/pkg/db/models"
	"github.com/jengamart/jengamart-backend/pkg/enums"
	pkgerrors "github.com/jengamart/jengamart-backend/pkg/errors"
	"github.com/jengamart/jengamart-backend/pkg/logger"
)

// Generator creates pending payout requests from accumulated earnings.
type Generator interface {
	// CalculateVendorPayout bundles the vendor's unlinked eligible earnings in
	// the period into one pending payout. Returns nil when there is nothing
	// worth paying out.
	CalculateVendorPayout(ctx context.Context, vendorID uuid.UUID, periodStart, periodEnd time.Time) (*models.PayoutRequest, error)

	// GenerateMonthlyPayouts runs CalculateVendorPayout for every active
	// vendor over the previous calendar month.
	GenerateMonthlyPayouts(ctx context.Context) ([]uuid.UUID, error)
}

type generator struct {
	txRunner    db.TxRunner
	repo        Repository
	vendorsRepo vendors.Repository
	cfg         *config.Config
	logg        *logger.Logger
	now         func() time.Time
}

// NewGenerator wires the payout generator.
func NewGenerator(
	txRunner db.TxRunner,
	repo Repository,
	vendorsRepo vendors.Repository,
	cfg *config.Config,
	logg *logger.Logger,
) (Generator, error) {
	if txRunner == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("payouts repository is required")
	}
	if vendorsRepo == nil {
		return nil, fmt.Errorf("vendors repository is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &generator{
		txRunner:    txRunner,
		repo:        repo,
		vendorsRepo: vendorsRepo,
		cfg:         cfg,
		logg:        logg,
		now:         time.Now,
	}, nil
}

func (g *generator) CalculateVendorPayout(ctx context.Context, vendorID uuid.UUID, periodStart, periodEnd time.Time) (*models.PayoutRequest, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id is required")
	}
	if periodStart.IsZero() || periodEnd.IsZero() || !periodStart.Before(periodEnd) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "period start must be before period end")
	}

	vendor, err := g.vendorsRepo.FindByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if vendor.Status != enums.VendorStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor is not active").
			WithDetails(map[string]any{"vendor_id": vendor.ID, "status": vendor.Status})
	}

	var payout *models.PayoutRequest
	err = g.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := g.repo.WithTx(tx)

		eligible, err := repo.EligibleTransactions(ctx, vendorID, periodStart, periodEnd)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading eligible transactions")
		}

		var amount int64
		for _, txn := range eligible {
			amount += txn.AmountCents
		}
		if amount <= 0 || amount < int64(g.cfg.Payout.MinAmountCents) {
			return nil
		}

		created := &models.PayoutRequest{
			ID:          uuid.New(),
			VendorID:    vendorID,
			PeriodStart: periodStart.UTC(),
			PeriodEnd:   periodEnd.UTC(),
			AmountCents: amount,
			Currency:    g.cfg.Payout.Currency(),
			Method:      vendor.PayoutMethod,
			Status:      enums.PayoutStatusPending,
		}
		for _, txn := range eligible {
			created.Items = append(created.Items, models.VendorPayoutItem{
				ID:            uuid.New(),
				PayoutID:      created.ID,
				TransactionID: txn.ID,
				OrderID:       txn.OrderID,
				AmountCents:   txn.AmountCents,
			})
		}

		if err := repo.Create(ctx, created); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating payout request")
		}
		payout = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	if payout != nil {
		logCtx := g.logg.WithPayoutID(g.logg.WithVendorID(ctx, vendorID.String()), payout.ID.String())
		g.logg.Info(logCtx, fmt.Sprintf(
			"payout generated amount_cents=%d transactions=%d", payout.AmountCents, len(payout.Items),
		))
	}

	return payout, nil
}

func (g *generator) GenerateMonthlyPayouts(ctx context.Context) ([]uuid.UUID, error) {
	now := g.now().UTC()
	periodEnd := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	periodStart := periodEnd.AddDate(0, -1, 0)

	vendorIDs, err := g.vendorsRepo.ListActiveIDs(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing active vendors")
	}

	var (
		created []uuid.UUID
		errs    []error
	)
	for _, vendorID := range vendorIDs {
		payout, err := g.CalculateVendorPayout(ctx, vendorID, periodStart, periodEnd)
		if err != nil {
			logCtx := g.logg.WithVendorID(ctx, vendorID.String())
			g.logg.Error(logCtx, "monthly payout generation failed for vendor", err)
			errs = append(errs, fmt.Errorf("vendor %s: %w", vendorID, err))
			continue
		}
		if payout != nil {
			created = append(created, payout.ID)
		}
	}

	g.logg.Info(ctx, fmt.Sprintf(
		"monthly payout run window=%s..%s vendors=%d created=%d failed=%d",
		periodStart.Format(time.DateOnly), periodEnd.Format(time.DateOnly),
		len(vendorIDs), len(created), len(errs),
	))

	return created, errors.Join(errs...)
}
