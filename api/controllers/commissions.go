package controllers

import (
	"net/http"

	"github.com/jengamart/jengamart-backend/api/responses"
	"github.com/jengamart/jengamart-backend/api/validators"
	"github.com/jengamart/jengamart-backend/internal/commission"
	"github.com/jengamart/jengamart-backend/pkg/logger"
)

// ProcessOrderCommission triggers commission processing for a settled order.
// Reprocessing an already-handled order succeeds without a second credit.
func ProcessOrderCommission(svc commission.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		orderID, err := validators.PathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.ProcessOrderCommission(ctx, orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
