package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jengamart/jengamart-backend/pkg/db/models"
	"github.com/jengamart/jengamart-backend/pkg/enums"
	pkgerrors "github.com/jengamart/jengamart-backend/pkg/errors"
)

// Repository manages vendor orders and their line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.VendorOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.VendorOrder, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.VendorOrder, error)
	ListByCartGroup(ctx context.Context, cartGroupID uuid.UUID) ([]models.VendorOrder, error)
	MarkSettled(ctx context.Context, id uuid.UUID, paidAt, deliveredAt time.Time) error
	MarkCommissionProcessed(ctx context.Context, id uuid.UUID, processedAt time.Time, itemCommissions map[uuid.UUID]int64) error
}

// CartRepository reads and finalizes checkout carts.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	Create(ctx context.Context, cart *models.Cart) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	MarkCheckedOut(ctx context.Context, id uuid.UUID) error
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

func (r *repository) Create(ctx context.Context, order *models.VendorOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.VendorOrder, error) {
	return r.findByID(ctx, id, false)
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.VendorOrder, error) {
	return r.findByID(ctx, id, true)
}

func (r *repository) findByID(ctx context.Context, id uuid.UUID, forUpdate bool) (*models.VendorOrder, error) {
	q := r.db.WithContext(ctx)
	if forUpdate && r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var order models.VendorOrder
	err := q.Preload("Items").Where("id = ?", id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByCartGroup(ctx context.Context, cartGroupID uuid.UUID) ([]models.VendorOrder, error) {
	var rows []models.VendorOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("cart_group_id = ?", cartGroupID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkSettled records the external lifecycle signal that the order is both
// paid and delivered. Timestamps are written once and never moved.
func (r *repository) MarkSettled(ctx context.Context, id uuid.UUID, paidAt, deliveredAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.VendorOrder{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       enums.OrderStatusDelivered,
			"paid_at":      gorm.Expr("COALESCE(paid_at, ?)", paidAt),
			"delivered_at": gorm.Expr("COALESCE(delivered_at, ?)", deliveredAt),
		}).Error
}

func (r *repository) MarkCommissionProcessed(ctx context.Context, id uuid.UUID, processedAt time.Time, itemCommissions map[uuid.UUID]int64) error {
	err := r.db.WithContext(ctx).
		Model(&models.VendorOrder{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"commission_processed":    true,
			"commission_processed_at": processedAt,
		}).Error
	if err != nil {
		return err
	}

	for itemID, amount := range itemCommissions {
		err = r.db.WithContext(ctx).
			Model(&models.OrderItem{}).
			Where("id = ?", itemID).
			Update("commission_amount_cents", amount).Error
		if err != nil {
			return err
		}
	}
	return nil
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &cartRepository{db: tx}
}

func (r *cartRepository) Create(ctx context.Context, cart *models.Cart) error {
	return r.db.WithContext(ctx).Create(cart).Error
}

func (r *cartRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, err
	}
	return &cart, nil
}

// MarkCheckedOut conditionally moves active -> checked_out. Rivals racing on
// the same cart observe zero rows updated and get a state conflict, so only
// one checkout transaction can commit a cart's order set.
func (r *cartRepository) MarkCheckedOut(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ? AND status = ?", id, models.CartStatusActive).
		Update("status", models.CartStatusCheckedOut)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cart already checked out")
	}
	return nil
}
