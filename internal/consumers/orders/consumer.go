package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/jengamart/jengamart-backend/internal/commission"
	pkgerrors "github.com/jengamart/jengamart-backend/pkg/errors"
	"github.com/jengamart/jengamart-backend/pkg/logger"
)

const eventOrderDeliveredPaid = "order.delivered_paid"

// SettlementEvent is the order lifecycle message published when an order is
// both delivered and paid.
type SettlementEvent struct {
	EventType   string    `json:"event_type"`
	OrderID     uuid.UUID `json:"order_id"`
	PaidAt      time.Time `json:"paid_at"`
	DeliveredAt time.Time `json:"delivered_at"`
}

type commissionProcessor interface {
	HandleSettlement(ctx context.Context, orderID uuid.UUID, paidAt, deliveredAt time.Time) (*commission.Result, error)
}

// Consumer turns order settlement events into commission processing.
type Consumer struct {
	subscription *pubsub.Subscriber
	processor    commissionProcessor
	logg         *logger.Logger
	now          func() time.Time
}

// NewConsumer constructs a consumer that watches the orders subscription.
func NewConsumer(subscription *pubsub.Subscriber, processor commissionProcessor, logg *logger.Logger) (*Consumer, error) {
	if subscription == nil {
		return nil, errors.New("orders subscription is required")
	}
	if processor == nil {
		return nil, errors.New("commission processor is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Consumer{
		subscription: subscription,
		processor:    processor,
		logg:         logg,
		now:          time.Now,
	}, nil
}

// Run processes messages until the context is canceled or the subscription errors.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	logCtx := c.logg.WithField(ctx, "message_id", msg.ID)

	var event SettlementEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		c.logg.Error(logCtx, "failed to unmarshal order event", err)
		return processResult{ack: true}
	}

	eventType := strings.TrimSpace(event.EventType)
	if eventType == "" {
		eventType = msg.Attributes["event_type"]
	}
	logCtx = c.logg.WithField(logCtx, "event_type", eventType)
	if eventType != eventOrderDeliveredPaid {
		c.logg.Info(logCtx, "skipping unhandled order event")
		return processResult{ack: true}
	}

	if event.OrderID == uuid.Nil {
		c.logg.Error(logCtx, "order event missing order id", fmt.Errorf("empty order_id"))
		return processResult{ack: true}
	}

	paidAt := event.PaidAt
	deliveredAt := event.DeliveredAt
	if paidAt.IsZero() {
		paidAt = c.now().UTC()
	}
	if deliveredAt.IsZero() {
		deliveredAt = c.now().UTC()
	}

	logCtx = c.logg.WithOrderID(logCtx, event.OrderID.String())
	result, err := c.processor.HandleSettlement(logCtx, event.OrderID, paidAt, deliveredAt)
	if err != nil {
		return c.handleError(logCtx, err)
	}

	if result.AlreadyProcessed {
		c.logg.Info(logCtx, "commission already processed for order")
		return processResult{ack: true}
	}

	logCtx = c.logg.WithVendorID(logCtx, result.VendorID.String())
	c.logg.Info(logCtx, fmt.Sprintf(
		"commission processed from event net_cents=%d commission_cents=%d", result.NetCents, result.CommissionCents,
	))
	return processResult{ack: true}
}

// handleError acks permanent failures so a poison message does not loop
// forever, and nacks transient ones so delivery retries.
func (c *Consumer) handleError(ctx context.Context, err error) processResult {
	c.logg.Error(ctx, "order settlement processing failed", err)
	if pkgerrors.IsCode(err, pkgerrors.CodeValidation) ||
		pkgerrors.IsCode(err, pkgerrors.CodeNotFound) ||
		pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		return processResult{ack: true}
	}
	return processResult{nack: true}
}
