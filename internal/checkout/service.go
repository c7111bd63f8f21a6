package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jengamart/jengamart-backend/internal/orders"
	"github.com/jengamart/jengamart-backend/internal/vendors"
	"github.com/jengamart/jengamart-backend/pkg/config"
	"github.com/jengamart/jengamart-backend/pkg/db"
	"github.com/jengamart/jengamart-backend/pkg/db/models"
	"github.com/jengamart/jengamart-backend/pkg/enums"
	pkgerrors "github.com/jengamart/jengamart-backend/pkg/errors"
	"github.com/jengamart/jengamart-backend/pkg/logger"
)

// SplitResult is the outcome of splitting one cart at checkout.
type SplitResult struct {
	CartGroupID uuid.UUID
	Orders      []models.VendorOrder
}

// Service splits a multi-vendor cart into per-vendor orders. The split is
// all-or-nothing: one bad vendor fails the whole checkout and no orders are
// persisted.
type Service interface {
	Split(ctx context.Context, cartID uuid.UUID) (*SplitResult, error)
}

type service struct {
	txRunner    db.TxRunner
	cartRepo    orders.CartRepository
	ordersRepo  orders.Repository
	vendorsRepo vendors.Repository
	cfg         *config.Config
	logg        *logger.Logger
}

// NewService wires the checkout splitter.
func NewService(
	txRunner db.TxRunner,
	cartRepo orders.CartRepository,
	ordersRepo orders.Repository,
	vendorsRepo vendors.Repository,
	cfg *config.Config,
	logg *logger.Logger,
) (Service, error) {
	if txRunner == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository is required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository is required")
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
	return &service{
		txRunner:    txRunner,
		cartRepo:    cartRepo,
		ordersRepo:  ordersRepo,
		vendorsRepo: vendorsRepo,
		cfg:         cfg,
		logg:        logg,
	}, nil
}

func (s *service) Split(ctx context.Context, cartID uuid.UUID) (*SplitResult, error) {
	if cartID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id is required")
	}

	cart, err := s.cartRepo.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart.Status != models.CartStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart already checked out")
	}
	if len(cart.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart has no items")
	}
	for _, item := range cart.Items {
		if item.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart item qty must be positive").
				WithDetails(map[string]any{"item_id": item.ID})
		}
		if item.UnitPriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart item price must not be negative").
				WithDetails(map[string]any{"item_id": item.ID})
		}
	}

	defaultRate, err := s.cfg.Commission.DefaultRate()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving default commission rate")
	}

	cartGroupID := uuid.New()
	vendorIDs, groups := GroupItemsByVendor(cart.Items)

	result := &SplitResult{CartGroupID: cartGroupID}

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		// Claim the cart before writing any orders. The conditional update
		// serializes rival checkouts of the same cart: the loser sees zero
		// rows updated and the whole split rolls back.
		if err := s.cartRepo.WithTx(tx).MarkCheckedOut(ctx, cart.ID); err != nil {
			return err
		}

		ordersRepo := s.ordersRepo.WithTx(tx)
		vendorsRepo := s.vendorsRepo.WithTx(tx)

		for _, vendorID := range vendorIDs {
			vendor, err := vendorsRepo.FindByID(ctx, vendorID)
			if err != nil {
				if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
					return pkgerrors.New(pkgerrors.CodeValidation, "cart references an unknown vendor").
						WithDetails(map[string]any{"vendor_id": vendorID})
				}
				return err
			}
			if vendor.Status != enums.VendorStatusActive {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart references an inactive vendor").
					WithDetails(map[string]any{"vendor_id": vendorID, "status": vendor.Status})
			}

			items := groups[vendorID]
			subtotal := SubtotalCents(items)
			shipping := ShippingFeeCents(subtotal, s.cfg.Shipping)
			rate := vendor.EffectiveCommissionRate(defaultRate)

			order := &models.VendorOrder{
				ID:               uuid.New(),
				CartGroupID:      cartGroupID,
				CartID:           cart.ID,
				BuyerID:          cart.BuyerID,
				VendorID:         vendorID,
				Currency:         s.cfg.Payout.Currency(),
				Status:           enums.OrderStatusCreatedPending,
				SubtotalCents:    subtotal,
				ShippingFeeCents: shipping,
				TotalCents:       subtotal + shipping,
				ShippingAddress:  cart.ShippingAddress,
			}
			for _, item := range items {
				order.Items = append(order.Items, models.OrderItem{
					ID:             uuid.New(),
					OrderID:        order.ID,
					ProductID:      item.ProductID,
					Name:           item.Name,
					UnitPriceCents: item.UnitPriceCents,
					Qty:            item.Qty,
					CommissionRate: rate,
				})
			}

			if err := ordersRepo.Create(ctx, order); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating vendor order")
			}
			result.Orders = append(result.Orders, *order)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithField(ctx, "cart_group_id", cartGroupID.String())
	s.logg.Info(logCtx, fmt.Sprintf("cart %s split into %d vendor orders", cart.ID, len(result.Orders)))

	return result, nil
}
