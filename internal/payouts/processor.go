package payouts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jengamart/jengamart-backend/internal/ledger"
	"github.com/jengamart/jengamart-backend/internal/vendors"
	"github.com/jengamart/jengamart-backend/pkg/db"
	"github.com/jengamart/jengamart-backend/pkg/db/models"
	"github.com/jengamart/jengamart-backend/pkg/enums"
	pkgerrors "github.com/jengamart/jengamart-backend/pkg/errors"
	"github.com/jengamart/jengamart-backend/pkg/logger"
	"github.com/jengamart/jengamart-backend/pkg/metrics"
	"github.com/jengamart/jengamart-backend/pkg/payments"
)

// Processor drives a pending payout through the gateway to a terminal state.
type Processor interface {
	ProcessPayout(ctx context.Context, payoutID uuid.UUID) (*models.PayoutRequest, error)
}

type processor struct {
	txRunner    db.TxRunner
	repo        Repository
	vendorsRepo vendors.Repository
	ledgerSvc   ledger.Service
	registry    *payments.Registry
	payoutMet   *metrics.PayoutMetrics
	logg        *logger.Logger
	now         func() time.Time
}

// NewProcessor wires the payout processor. Metrics may be nil.
func NewProcessor(
	txRunner db.TxRunner,
	repo Repository,
	vendorsRepo vendors.Repository,
	ledgerSvc ledger.Service,
	registry *payments.Registry,
	payoutMet *metrics.PayoutMetrics,
	logg *logger.Logger,
) (Processor, error) {
	if txRunner == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("payouts repository is required")
	}
	if vendorsRepo == nil {
		return nil, fmt.Errorf("vendors repository is required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service is required")
	}
	if registry == nil {
		return nil, fmt.Errorf("payments registry is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &processor{
		txRunner:    txRunner,
		repo:        repo,
		vendorsRepo: vendorsRepo,
		ledgerSvc:   ledgerSvc,
		registry:    registry,
		payoutMet:   payoutMet,
		logg:        logg,
		now:         time.Now,
	}, nil
}

// ProcessPayout claims the payout, verifies the vendor's ledger, executes the
// disbursement, and lands the payout in completed or failed. Reprocessing a
// terminal payout is a no-op success; a payout claimed by another worker is a
// state conflict.
func (p *processor) ProcessPayout(ctx context.Context, payoutID uuid.UUID) (*models.PayoutRequest, error) {
	if payoutID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payout id is required")
	}

	payout, err := p.repo.FindByID(ctx, payoutID)
	if err != nil {
		return nil, err
	}
	if payout.Status.IsTerminal() {
		return payout, nil
	}

	// Integrity gate: a drifted ledger halts the payout before any claim or
	// money movement. The payout stays pending for manual audit.
	if _, err := p.ledgerSvc.Verify(ctx, payout.VendorID); err != nil {
		return nil, err
	}

	claimed, err := p.repo.ClaimPending(ctx, payout.ID, p.now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "claiming payout")
	}
	if !claimed {
		current, err := p.repo.FindByID(ctx, payout.ID)
		if err != nil {
			return nil, err
		}
		if current.Status.IsTerminal() {
			return current, nil
		}
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payout is already being processed")
	}
	payout.Status = enums.PayoutStatusProcessing

	vendor, err := p.vendorsRepo.FindByID(ctx, payout.VendorID)
	if err != nil {
		return p.fail(ctx, payout, fmt.Sprintf("loading vendor: %v", err))
	}

	gateway, err := p.registry.Resolve(payout.Method)
	if err != nil {
		return p.fail(ctx, payout, err.Error())
	}

	receipt, payErr := p.execute(ctx, gateway, buildPayoutOrder(payout, vendor))
	if payErr != nil {
		return p.fail(ctx, payout, payErr.Error())
	}

	return p.complete(ctx, payout, receipt)
}

// execute shields the processor from a panicking gateway so the payout still
// lands in a terminal state.
func (p *processor) execute(ctx context.Context, gateway payments.Gateway, order payments.PayoutOrder) (receipt payments.Receipt, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("gateway panic: %v", r)
		}
	}()
	return gateway.Payout(ctx, order)
}

func (p *processor) complete(ctx context.Context, payout *models.PayoutRequest, receipt payments.Receipt) (*models.PayoutRequest, error) {
	now := p.now().UTC()

	err := p.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		if err := p.repo.WithTx(tx).MarkCompleted(ctx, payout.ID, receipt.TransactionRef, now); err != nil {
			return err
		}

		payoutID := payout.ID
		_, err := p.ledgerSvc.Append(ctx, tx, ledger.AppendInput{
			VendorID:    payout.VendorID,
			Type:        enums.TransactionTypePayout,
			AmountCents: -payout.AmountCents,
			PayoutID:    &payoutID,
		})
		return err
	})
	if err != nil {
		// The gateway moved money but the completion write failed; the payout
		// is stuck processing and needs operator attention, not a retry that
		// would disburse twice.
		logCtx := p.logg.WithPayoutID(ctx, payout.ID.String())
		p.logg.Error(logCtx, "payout disbursed but completion write failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finalizing completed payout")
	}

	payout.Status = enums.PayoutStatusCompleted
	payout.TransactionRef = &receipt.TransactionRef
	payout.CompletedAt = &now

	p.payoutMet.IncCompleted(payout.Method.String(), payout.AmountCents)
	logCtx := p.logg.WithPayoutID(p.logg.WithVendorID(ctx, payout.VendorID.String()), payout.ID.String())
	p.logg.Info(logCtx, fmt.Sprintf(
		"payout completed method=%s amount_cents=%d ref=%s", payout.Method, payout.AmountCents, receipt.TransactionRef,
	))

	return payout, nil
}

// fail lands the payout in failed and releases its linked transactions so the
// amount stays eligible for the next cycle. Balances are untouched.
func (p *processor) fail(ctx context.Context, payout *models.PayoutRequest, reason string) (*models.PayoutRequest, error) {
	now := p.now().UTC()

	err := p.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := p.repo.WithTx(tx)
		if err := repo.MarkFailed(ctx, payout.ID, reason, now); err != nil {
			return err
		}
		return repo.ReleaseItems(ctx, payout.ID, now)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording payout failure")
	}

	payout.Status = enums.PayoutStatusFailed
	payout.FailureReason = &reason
	payout.FailedAt = &now

	p.payoutMet.IncFailed(payout.Method.String())
	logCtx := p.logg.WithPayoutID(p.logg.WithVendorID(ctx, payout.VendorID.String()), payout.ID.String())
	p.logg.Warn(logCtx, fmt.Sprintf("payout failed method=%s reason=%s", payout.Method, reason))

	return payout, pkgerrors.New(pkgerrors.CodeDependency, "payout disbursement failed").
		WithDetails(map[string]any{"payout_id": payout.ID, "reason": reason})
}

func buildPayoutOrder(payout *models.PayoutRequest, vendor *models.Vendor) payments.PayoutOrder {
	order := payments.PayoutOrder{
		PayoutID:    payout.ID,
		VendorID:    payout.VendorID,
		AmountCents: payout.AmountCents,
		Currency:    payout.Currency,
	}
	if vendor.MobileMoneyProvider != nil {
		order.Provider = *vendor.MobileMoneyProvider
	}
	if vendor.MobileMoneyPhone != nil {
		order.Phone = *vendor.MobileMoneyPhone
	}
	if vendor.BankName != nil {
		order.BankName = *vendor.BankName
	}
	if vendor.BankAccount != nil {
		order.BankAccount = *vendor.BankAccount
	}
	return order
}
