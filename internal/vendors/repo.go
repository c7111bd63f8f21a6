package vendors

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jengamart/jengamart-backend/pkg/db/models"
	"github.com/jengamart/jengamart-backend/pkg/enums"
	pkgerrors "github.com/jengamart/jengamart-backend/pkg/errors"
)

// Repository manages persistence for vendors.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	ListActiveIDs(ctx context.Context) ([]uuid.UUID, error)
	Create(ctx context.Context, vendor *models.Vendor) error
	UpdateBalances(ctx context.Context, id uuid.UUID, balanceCents, pendingBalanceCents int64) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a vendor repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&vendor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
		}
		return nil, err
	}
	return &vendor, nil
}

// FindByIDForUpdate row-locks the vendor for the duration of the surrounding
// transaction. SQLite (tests) serializes writers already and rejects FOR
// UPDATE, so the clause is applied on Postgres only.
func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	q := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var vendor models.Vendor
	err := q.Where("id = ?", id).First(&vendor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
		}
		return nil, err
	}
	return &vendor, nil
}

func (r *repository) ListActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Vendor{}).
		Where("status = ?", enums.VendorStatusActive).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repository) Create(ctx context.Context, vendor *models.Vendor) error {
	return r.db.WithContext(ctx).Create(vendor).Error
}

func (r *repository) UpdateBalances(ctx context.Context, id uuid.UUID, balanceCents, pendingBalanceCents int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Vendor{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"balance_cents":         balanceCents,
			"pending_balance_cents": pendingBalanceCents,
		}).Error
}
