package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jengamart/jengamart-backend/internal/vendors"
	"github.com/jengamart/jengamart-backend/pkg/db/models"
	"github.com/jengamart/jengamart-backend/pkg/enums"
	pkgerrors "github.com/jengamart/jengamart-backend/pkg/errors"
	"github.com/jengamart/jengamart-backend/pkg/logger"
)

// AppendInput describes one ledger entry to record. AmountCents is signed:
// earnings positive, disbursements negative.
type AppendInput struct {
	VendorID    uuid.UUID
	Type        enums.TransactionType
	AmountCents int64
	OrderID     *uuid.UUID
	PayoutID    *uuid.UUID
	Metadata    json.RawMessage
}

// Replay is the result of recomputing a vendor's balance from the ledger.
type Replay struct {
	VendorID     uuid.UUID
	Transactions int
	BalanceCents int64
}

// Service owns the vendor transaction ledger. Append is the only way money
// moves on a vendor account; it runs inside the caller's transaction so the
// ledger row and the business write that caused it commit or roll back
// together.
type Service interface {
	Append(ctx context.Context, tx *gorm.DB, input AppendInput) (*models.VendorTransaction, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID, from, to *time.Time) ([]models.VendorTransaction, error)
	HasOrderCommission(ctx context.Context, orderID uuid.UUID) (bool, error)
	ReplayBalance(ctx context.Context, vendorID uuid.UUID) (*Replay, error)
	Verify(ctx context.Context, vendorID uuid.UUID) (*Replay, error)
}

type service struct {
	repo        Repository
	vendorsRepo vendors.Repository
	logg        *logger.Logger
}

// NewService wires the ledger service.
func NewService(repo Repository, vendorsRepo vendors.Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository is required")
	}
	if vendorsRepo == nil {
		return nil, fmt.Errorf("vendors repository is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{repo: repo, vendorsRepo: vendorsRepo, logg: logg}, nil
}

// Append locks the vendor row, records the transaction with a contiguous
// balance_before/balance_after pair, and moves the cached balances by the
// signed amount. Must be called inside an open transaction.
func (s *service) Append(ctx context.Context, tx *gorm.DB, input AppendInput) (*models.VendorTransaction, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "ledger append requires an open transaction")
	}
	if input.VendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id is required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid transaction type")
	}
	if input.Type == enums.TransactionTypePayout {
		if input.PayoutID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "payout transactions require a payout id")
		}
		if input.AmountCents > 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "payout transactions must carry a non-positive amount")
		}
	}
	if input.Type == enums.TransactionTypeSaleCommission && input.OrderID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale commission transactions require an order id")
	}

	vendor, err := s.vendorsRepo.WithTx(tx).FindByIDForUpdate(ctx, input.VendorID)
	if err != nil {
		return nil, err
	}

	before := vendor.BalanceCents
	after := before + input.AmountCents

	txn := &models.VendorTransaction{
		ID:                 uuid.New(),
		VendorID:           vendor.ID,
		Type:               input.Type,
		AmountCents:        input.AmountCents,
		BalanceBeforeCents: before,
		BalanceAfterCents:  after,
		OrderID:            input.OrderID,
		PayoutID:           input.PayoutID,
		Metadata:           input.Metadata,
	}

	if err := s.repo.WithTx(tx).Create(ctx, txn); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording vendor transaction")
	}

	pending := vendor.PendingBalanceCents + input.AmountCents
	if err := s.vendorsRepo.WithTx(tx).UpdateBalances(ctx, vendor.ID, after, pending); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating vendor balances")
	}

	logCtx := s.logg.WithVendorID(ctx, vendor.ID.String())
	s.logg.Info(logCtx, fmt.Sprintf(
		"ledger append type=%s amount_cents=%d balance_after_cents=%d", input.Type, input.AmountCents, after,
	))

	return txn, nil
}

func (s *service) ListByVendor(ctx context.Context, vendorID uuid.UUID, from, to *time.Time) ([]models.VendorTransaction, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id is required")
	}
	if from != nil && to != nil && !from.Before(*to) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "from must be before to")
	}
	if _, err := s.vendorsRepo.FindByID(ctx, vendorID); err != nil {
		return nil, err
	}
	return s.repo.ListByVendor(ctx, vendorID, from, to)
}

func (s *service) HasOrderCommission(ctx context.Context, orderID uuid.UUID) (bool, error) {
	if orderID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	return s.repo.HasOrderCommission(ctx, orderID)
}

// ReplayBalance folds the full ledger in creation order and checks every row's
// arithmetic and chain continuity along the way.
func (s *service) ReplayBalance(ctx context.Context, vendorID uuid.UUID) (*Replay, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id is required")
	}

	rows, err := s.repo.ListByVendor(ctx, vendorID, nil, nil)
	if err != nil {
		return nil, err
	}

	var running int64
	for i := range rows {
		row := &rows[i]
		if row.BalanceAfterCents != row.BalanceBeforeCents+row.AmountCents {
			return nil, pkgerrors.New(pkgerrors.CodeIntegrity, "transaction arithmetic mismatch").
				WithDetails(map[string]any{
					"transaction_id":       row.ID,
					"amount_cents":         row.AmountCents,
					"balance_before_cents": row.BalanceBeforeCents,
					"balance_after_cents":  row.BalanceAfterCents,
				})
		}
		if row.BalanceBeforeCents != running {
			return nil, pkgerrors.New(pkgerrors.CodeIntegrity, "ledger chain broken").
				WithDetails(map[string]any{
					"transaction_id":        row.ID,
					"expected_before_cents": running,
					"actual_before_cents":   row.BalanceBeforeCents,
				})
		}
		running = row.BalanceAfterCents
	}

	return &Replay{VendorID: vendorID, Transactions: len(rows), BalanceCents: running}, nil
}

// Verify replays the ledger and compares the result against the cached vendor
// balance. A mismatch means the ledger and the vendor record have drifted and
// money movement for the vendor must stop until audited.
func (s *service) Verify(ctx context.Context, vendorID uuid.UUID) (*Replay, error) {
	vendor, err := s.vendorsRepo.FindByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	replay, err := s.ReplayBalance(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	if replay.BalanceCents != vendor.BalanceCents {
		return nil, pkgerrors.New(pkgerrors.CodeIntegrity, "cached balance does not match ledger replay").
			WithDetails(map[string]any{
				"vendor_id":             vendorID,
				"cached_balance_cents":  vendor.BalanceCents,
				"replayed_balance_cents": replay.BalanceCents,
			})
	}

	return replay, nil
}
