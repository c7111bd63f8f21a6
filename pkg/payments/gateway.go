package payments

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jengamart/jengamart-backend/pkg/enums"
)

// PayoutOrder is the opaque instruction handed to a gateway.
type PayoutOrder struct {
	PayoutID    uuid.UUID
	VendorID    uuid.UUID
	AmountCents int64
	Currency    enums.Currency

	// Mobile money settings; empty for other methods.
	Provider string
	Phone    string

	// Bank transfer settings; empty for other methods.
	BankName    string
	BankAccount string
}

// Receipt reports a successful disbursement.
type Receipt struct {
	TransactionRef string
}

// Gateway executes the money movement for one payout method. One
// implementation exists per method; the processor never switches on the
// method itself.
type Gateway interface {
	Method() enums.PayoutMethod
	Payout(ctx context.Context, order PayoutOrder) (Receipt, error)
}

// Registry resolves gateways by payout method.
type Registry struct {
	gateways map[enums.PayoutMethod]Gateway
}

// NewRegistry indexes the provided gateways by method.
func NewRegistry(gateways ...Gateway) (*Registry, error) {
	indexed := make(map[enums.PayoutMethod]Gateway, len(gateways))
	for _, gw := range gateways {
		if gw == nil {
			continue
		}
		method := gw.Method()
		if !method.IsValid() {
			return nil, fmt.Errorf("gateway reports invalid method %q", method)
		}
		if _, exists := indexed[method]; exists {
			return nil, fmt.Errorf("duplicate gateway for method %q", method)
		}
		indexed[method] = gw
	}
	if len(indexed) == 0 {
		return nil, fmt.Errorf("at least one payout gateway is required")
	}
	return &Registry{gateways: indexed}, nil
}

// Resolve returns the gateway for the method.
func (r *Registry) Resolve(method enums.PayoutMethod) (Gateway, error) {
	gw, ok := r.gateways[method]
	if !ok {
		return nil, fmt.Errorf("no gateway registered for method %q", method)
	}
	return gw, nil
}
