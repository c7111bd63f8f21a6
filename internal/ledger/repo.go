package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jengamart/jengamart-backend/pkg/db/models"
	"github.com/jengamart/jengamart-backend/pkg/enums"
)

// Repository persists vendor ledger rows. Rows are insert-only.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, txn *models.VendorTransaction) error
	ListByVendor(ctx context.Context, vendorID uuid.UUID, from, to *time.Time) ([]models.VendorTransaction, error)
	HasOrderCommission(ctx context.Context, orderID uuid.UUID) (bool, error)
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

func (r *repository) Create(ctx context.Context, txn *models.VendorTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

// ListByVendor returns a vendor's ledger in creation order. Either bound may
// be nil; from is inclusive, to is exclusive.
func (r *repository) ListByVendor(ctx context.Context, vendorID uuid.UUID, from, to *time.Time) ([]models.VendorTransaction, error) {
	q := r.db.WithContext(ctx).Where("vendor_id = ?", vendorID)
	if from != nil {
		q = q.Where("created_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("created_at < ?", *to)
	}

	var rows []models.VendorTransaction
	if err := q.Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) HasOrderCommission(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.VendorTransaction{}).
		Where("order_id = ? AND type = ?", orderID, enums.TransactionTypeSaleCommission).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
