package payouts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jengamart/jengamart-backend/pkg/db/models"
	"github.com/jengamart/jengamart-backend/pkg/enums"
	pkgerrors "github.com/jengamart/jengamart-backend/pkg/errors"
)

// ListFilter narrows payout listings.
type ListFilter struct {
	VendorID *uuid.UUID
	Status   *enums.PayoutStatus
	Limit    int
}

// Repository persists payout requests and their linked ledger transactions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, payout *models.PayoutRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.PayoutRequest, error)
	List(ctx context.Context, filter ListFilter) ([]models.PayoutRequest, error)
	ListPendingIDs(ctx context.Context, limit int) ([]uuid.UUID, error)

	// EligibleTransactions returns a vendor's payout-eligible ledger rows in
	// the period that are not linked to any live payout.
	EligibleTransactions(ctx context.Context, vendorID uuid.UUID, periodStart, periodEnd time.Time) ([]models.VendorTransaction, error)

	// ClaimPending conditionally moves pending -> processing. Returns false
	// when the payout was not in pending, which means another worker already
	// claimed or finished it.
	ClaimPending(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)

	MarkCompleted(ctx context.Context, id uuid.UUID, transactionRef string, at time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string, at time.Time) error
	ReleaseItems(ctx context.Context, payoutID uuid.UUID, at time.Time) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, payout *models.PayoutRequest) error {
	return r.db.WithContext(ctx).Create(payout).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PayoutRequest, error) {
	var payout models.PayoutRequest
	err := r.db.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&payout).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payout not found")
		}
		return nil, err
	}
	return &payout, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.PayoutRequest, error) {
	q := r.db.WithContext(ctx).Model(&models.PayoutRequest{})
	if filter.VendorID != nil {
		q = q.Where("vendor_id = ?", *filter.VendorID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var rows []models.PayoutRequest
	if err := q.Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListPendingIDs(ctx context.Context, limit int) ([]uuid.UUID, error) {
	q := r.db.WithContext(ctx).
		Model(&models.PayoutRequest{}).
		Where("status = ?", enums.PayoutStatusPending).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var ids []uuid.UUID
	if err := q.Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repository) EligibleTransactions(ctx context.Context, vendorID uuid.UUID, periodStart, periodEnd time.Time) ([]models.VendorTransaction, error) {
	linked := r.db.
		Model(&models.VendorPayoutItem{}).
		Select("transaction_id").
		Where("released_at IS NULL")

	var rows []models.VendorTransaction
	err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Where("type IN ?", enums.PayoutEligibleTransactionTypes).
		Where("created_at >= ? AND created_at < ?", periodStart, periodEnd).
		Where("id NOT IN (?)", linked).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ClaimPending(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PayoutRequest{}).
		Where("id = ? AND status = ?", id, enums.PayoutStatusPending).
		Updates(map[string]any{
			"status":        enums.PayoutStatusProcessing,
			"processing_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) MarkCompleted(ctx context.Context, id uuid.UUID, transactionRef string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.PayoutRequest{}).
		Where("id = ? AND status = ?", id, enums.PayoutStatusProcessing).
		Updates(map[string]any{
			"status":          enums.PayoutStatusCompleted,
			"transaction_ref": transactionRef,
			"completed_at":    at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "payout is not processing")
	}
	return nil
}

func (r *repository) MarkFailed(ctx context.Context, id uuid.UUID, reason string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.PayoutRequest{}).
		Where("id = ? AND status = ?", id, enums.PayoutStatusProcessing).
		Updates(map[string]any{
			"status":         enums.PayoutStatusFailed,
			"failure_reason": reason,
			"failed_at":      at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "payout is not processing")
	}
	return nil
}

// ReleaseItems unlinks a failed payout's ledger transactions so they stay
// eligible for the next cycle. The rows are kept with released_at stamped,
// preserving the audit trail of what the failed attempt had bundled.
func (r *repository) ReleaseItems(ctx context.Context, payoutID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.VendorPayoutItem{}).
		Where("payout_id = ? AND released_at IS NULL", payoutID).
		Update("released_at", at).Error
}
