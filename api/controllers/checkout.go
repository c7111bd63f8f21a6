package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jengamart/jengamart-backend/api/responses"
	"github.com/jengamart/jengamart-backend/api/validators"
	"github.com/jengamart/jengamart-backend/internal/checkout"
	"github.com/jengamart/jengamart-backend/pkg/db/models"
	"github.com/jengamart/jengamart-backend/pkg/logger"
)

// OrderResponse is the public shape of a vendor order created at checkout.
type OrderResponse struct {
	ID               uuid.UUID `json:"id"`
	CartGroupID      uuid.UUID `json:"cart_group_id"`
	VendorID         uuid.UUID `json:"vendor_id"`
	Currency         string    `json:"currency"`
	Status           string    `json:"status"`
	SubtotalCents    int64     `json:"subtotal_cents"`
	ShippingFeeCents int64     `json:"shipping_fee_cents"`
	TotalCents       int64     `json:"total_cents"`
	Items            int       `json:"items"`
	CreatedAt        time.Time `json:"created_at"`
}

func toOrderResponse(order *models.VendorOrder) OrderResponse {
	return OrderResponse{
		ID:               order.ID,
		CartGroupID:      order.CartGroupID,
		VendorID:         order.VendorID,
		Currency:         string(order.Currency),
		Status:           order.Status.String(),
		SubtotalCents:    order.SubtotalCents,
		ShippingFeeCents: order.ShippingFeeCents,
		TotalCents:       order.TotalCents,
		Items:            len(order.Items),
		CreatedAt:        order.CreatedAt,
	}
}

// CheckoutResponse reports the per-vendor orders split from one cart.
type CheckoutResponse struct {
	CartGroupID uuid.UUID       `json:"cart_group_id"`
	Orders      []OrderResponse `json:"orders"`
}

// Checkout splits the cart into per-vendor orders.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		cartID, err := validators.PathUUID(r, "cartId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Split(ctx, cartID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		out := CheckoutResponse{CartGroupID: result.CartGroupID}
		for i := range result.Orders {
			out.Orders = append(out.Orders, toOrderResponse(&result.Orders[i]))
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, out)
	}
}
