// Package mobilemoney disburses payouts through the mobile-money aggregator's
// HTTP API. The aggregator multiplexes providers (mpesa, airtel, tigo) behind
// one B2C endpoint.
package mobilemoney

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jengamart/jengamart-backend/pkg/config"
	"github.com/jengamart/jengamart-backend/pkg/enums"
	pkgerrors "github.com/jengamart/jengamart-backend/pkg/errors"
	"github.com/jengamart/jengamart-backend/pkg/logger"
	"github.com/jengamart/jengamart-backend/pkg/payments"
)

var (
	errBaseURLRequired = errors.New("mobile money base url is required")
	errAPIKeyRequired  = errors.New("mobile money api key is required")
	errLoggerRequired  = errors.New("mobile money logger is required")
)

// Gateway is the mobile-money implementation of payments.Gateway.
type Gateway struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	provider   string
	logg       *logger.Logger
}

// NewGateway validates the aggregator credentials and builds the gateway.
func NewGateway(cfg config.MobileMoneyConfig, logg *logger.Logger) (*Gateway, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	return &Gateway{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		provider:   strings.TrimSpace(cfg.Provider),
		logg:       logg,
	}, nil
}

// Method implements payments.Gateway.
func (g *Gateway) Method() enums.PayoutMethod {
	return enums.PayoutMethodMobileMoney
}

type disburseRequest struct {
	IdempotencyKey string `json:"idempotency_key"`
	Provider       string `json:"provider"`
	Phone          string `json:"phone"`
	AmountCents    int64  `json:"amount_cents"`
	Currency       string `json:"currency"`
	Reference      string `json:"reference"`
}

type disburseResponse struct {
	Status         string `json:"status"`
	TransactionRef string `json:"transaction_ref"`
	Error          struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Payout executes a B2C disbursement. The payout ID doubles as the
// idempotency key so gateway-side retries of the same payout cannot double-send.
func (g *Gateway) Payout(ctx context.Context, order payments.PayoutOrder) (payments.Receipt, error) {
	provider := strings.TrimSpace(order.Provider)
	if provider == "" {
		provider = g.provider
	}
	if provider == "" {
		return payments.Receipt{}, pkgerrors.New(pkgerrors.CodeValidation, "mobile money provider is required")
	}
	phone := strings.TrimSpace(order.Phone)
	if phone == "" {
		return payments.Receipt{}, pkgerrors.New(pkgerrors.CodeValidation, "mobile money phone is required")
	}
	if order.AmountCents <= 0 {
		return payments.Receipt{}, pkgerrors.New(pkgerrors.CodeValidation, "payout amount must be positive")
	}

	payload := disburseRequest{
		IdempotencyKey: order.PayoutID.String(),
		Provider:       provider,
		Phone:          phone,
		AmountCents:    order.AmountCents,
		Currency:       order.Currency.String(),
		Reference:      fmt.Sprintf("payout-%s", order.PayoutID),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return payments.Receipt{}, fmt.Errorf("encoding disburse request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/disbursements", bytes.NewReader(body))
	if err != nil {
		return payments.Receipt{}, fmt.Errorf("building disburse request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return payments.Receipt{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mobile money request failed")
	}
	defer resp.Body.Close()

	var decoded disburseResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return payments.Receipt{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding mobile money response")
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return payments.Receipt{}, pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("mobile money aggregator unavailable (status %d)", resp.StatusCode))
	}
	if resp.StatusCode >= http.StatusBadRequest || !strings.EqualFold(decoded.Status, "success") {
		message := decoded.Error.Message
		if message == "" {
			message = fmt.Sprintf("disbursement rejected (status %d)", resp.StatusCode)
		}
		return payments.Receipt{}, pkgerrors.New(pkgerrors.CodeDependency, message).
			WithDetails(map[string]any{"provider_code": decoded.Error.Code})
	}
	if strings.TrimSpace(decoded.TransactionRef) == "" {
		return payments.Receipt{}, pkgerrors.New(pkgerrors.CodeDependency, "mobile money response missing transaction ref")
	}

	return payments.Receipt{TransactionRef: decoded.TransactionRef}, nil
}
