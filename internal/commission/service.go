package commission

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jengamart/jengamart-backend/internal/ledger"
	"github.com/jengamart/jengamart-backend/internal/orders"
	"github.com/jengamart/jengamart-backend/internal/vendors"
	"github.com/jengamart/jengamart-backend/pkg/db"
	"github.com/jengamart/jengamart-backend/pkg/db/models"
	"github.com/jengamart/jengamart-backend/pkg/enums"
	pkgerrors "github.com/jengamart/jengamart-backend/pkg/errors"
	"github.com/jengamart/jengamart-backend/pkg/logger"
)

// Result reports what commission processing did for one order.
type Result struct {
	OrderID          uuid.UUID  `json:"order_id"`
	VendorID         uuid.UUID  `json:"vendor_id"`
	AlreadyProcessed bool       `json:"already_processed"`
	GrossCents       int64      `json:"gross_cents"`
	CommissionCents  int64      `json:"commission_cents"`
	NetCents         int64      `json:"net_cents"`
	TransactionID    *uuid.UUID `json:"transaction_id,omitempty"`
}

// Service turns settled orders into vendor earnings. Processing an order is
// idempotent: exactly one sale_commission ledger row per order, ever.
type Service interface {
	ProcessOrderCommission(ctx context.Context, orderID uuid.UUID) (*Result, error)
	HandleSettlement(ctx context.Context, orderID uuid.UUID, paidAt, deliveredAt time.Time) (*Result, error)
}

type service struct {
	txRunner    db.TxRunner
	ordersRepo  orders.Repository
	vendorsRepo vendors.Repository
	ledgerSvc   ledger.Service
	logg        *logger.Logger
	now         func() time.Time
}

// NewService wires the commission processor.
func NewService(
	txRunner db.TxRunner,
	ordersRepo orders.Repository,
	vendorsRepo vendors.Repository,
	ledgerSvc ledger.Service,
	logg *logger.Logger,
) (Service, error) {
	if txRunner == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository is required")
	}
	if vendorsRepo == nil {
		return nil, fmt.Errorf("vendors repository is required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		txRunner:    txRunner,
		ordersRepo:  ordersRepo,
		vendorsRepo: vendorsRepo,
		ledgerSvc:   ledgerSvc,
		logg:        logg,
		now:         time.Now,
	}, nil
}

// ProcessOrderCommission credits the vendor for a settled order. Calling it
// again for the same order is a no-op success.
func (s *service) ProcessOrderCommission(ctx context.Context, orderID uuid.UUID) (*Result, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	var result *Result
	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.ordersRepo.WithTx(tx).FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		res, err := s.processLocked(ctx, tx, order)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// HandleSettlement records the paid+delivered lifecycle signal and processes
// commission in the same transaction. Used by the order events consumer.
func (s *service) HandleSettlement(ctx context.Context, orderID uuid.UUID, paidAt, deliveredAt time.Time) (*Result, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if paidAt.IsZero() || deliveredAt.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "paid and delivered timestamps are required")
	}

	var result *Result
	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.ordersRepo.WithTx(tx)

		order, err := ordersRepo.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.CanceledAt != nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is canceled")
		}

		if err := ordersRepo.MarkSettled(ctx, order.ID, paidAt, deliveredAt); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking order settled")
		}
		if order.PaidAt == nil {
			order.PaidAt = &paidAt
		}
		if order.DeliveredAt == nil {
			order.DeliveredAt = &deliveredAt
		}
		order.Status = enums.OrderStatusDelivered

		res, err := s.processLocked(ctx, tx, order)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) processLocked(ctx context.Context, tx *gorm.DB, order *models.VendorOrder) (*Result, error) {
	if order.CommissionProcessed {
		return &Result{
			OrderID:          order.ID,
			VendorID:         order.VendorID,
			AlreadyProcessed: true,
		}, nil
	}
	if !order.SettledForCommission() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not paid and delivered").
			WithDetails(map[string]any{"order_id": order.ID, "status": order.Status})
	}

	// The ledger's partial unique index backstops this check under races.
	seen, err := s.ledgerSvc.HasOrderCommission(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if seen {
		return &Result{
			OrderID:          order.ID,
			VendorID:         order.VendorID,
			AlreadyProcessed: true,
		}, nil
	}

	vendor, err := s.vendorsRepo.WithTx(tx).FindByID(ctx, order.VendorID)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "order references an unknown vendor")
		}
		return nil, err
	}
	if vendor.Status != enums.VendorStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor is not active").
			WithDetails(map[string]any{"vendor_id": vendor.ID, "status": vendor.Status})
	}

	commissionCents, itemCommissions := commissionForItems(order.Items)
	netCents := order.TotalCents - commissionCents

	if err := s.ordersRepo.WithTx(tx).MarkCommissionProcessed(ctx, order.ID, s.now().UTC(), itemCommissions); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking commission processed")
	}

	metadata, err := json.Marshal(map[string]any{
		"gross_cents":      order.TotalCents,
		"subtotal_cents":   order.SubtotalCents,
		"shipping_cents":   order.ShippingFeeCents,
		"commission_cents": commissionCents,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding transaction metadata")
	}

	orderID := order.ID
	txn, err := s.ledgerSvc.Append(ctx, tx, ledger.AppendInput{
		VendorID:    vendor.ID,
		Type:        enums.TransactionTypeSaleCommission,
		AmountCents: netCents,
		OrderID:     &orderID,
		Metadata:    metadata,
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithOrderID(s.logg.WithVendorID(ctx, vendor.ID.String()), order.ID.String())
	s.logg.Info(logCtx, fmt.Sprintf(
		"commission processed gross_cents=%d commission_cents=%d net_cents=%d",
		order.TotalCents, commissionCents, netCents,
	))

	txnID := txn.ID
	return &Result{
		OrderID:         order.ID,
		VendorID:        vendor.ID,
		GrossCents:      order.TotalCents,
		CommissionCents: commissionCents,
		NetCents:        netCents,
		TransactionID:   &txnID,
	}, nil
}

// commissionForItems computes the platform's cut per line using the rate
// snapshotted at order creation. Each line rounds independently, half away
// from zero.
func commissionForItems(items []models.OrderItem) (int64, map[uuid.UUID]int64) {
	hundred := decimal.NewFromInt(100)
	perItem := make(map[uuid.UUID]int64, len(items))

	var total int64
	for _, item := range items {
		amount := item.CommissionRate.
			Mul(decimal.NewFromInt(item.RevenueCents())).
			Div(hundred).
			Round(0).
			IntPart()
		perItem[item.ID] = amount
		total += amount
	}
	return total, perItem
}
