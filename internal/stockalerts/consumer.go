package stockalerts

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/shopzen/shopzen-backend/pkg/events"
	"github.com/shopzen/shopzen-backend/pkg/logger"
)

const stockAlertConsumerName = "stock-alert-worker"

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// Consumer watches the product change feed and hands each update to the
// notifier, one invocation per event, with Redis idempotency against
// change-feed redelivery.
type Consumer struct {
	notifier     *Notifier
	subscription *pubsub.Subscriber
	manager      idempotencyChecker
	logg         *logger.Logger
}

// NewConsumer builds the stock-alert consumer. The subscription may be nil in
// tests that call Process directly.
func NewConsumer(notifier *Notifier, subscription *pubsub.Subscriber, manager idempotencyChecker, logg *logger.Logger) (*Consumer, error) {
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		notifier:     notifier,
		subscription: subscription,
		manager:      manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled. Malformed
// messages are acked (redelivery cannot fix them); dependency failures are
// nacked for redelivery.
func (c *Consumer) Run(ctx context.Context) error {
	if c.subscription == nil {
		return fmt.Errorf("product updates subscription required")
	}
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.handleMessage(ctx, msg)
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

func (c *Consumer) handleMessage(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := msg.Attributes["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	var envelope events.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	if err := c.Process(ctx, eventType, envelope); err != nil {
		c.logg.Error(logCtx, "alert handling failed", err)
		return processResult{nack: true}
	}
	return processResult{ack: true}
}

// Process runs one alert invocation for a decoded envelope.
func (c *Consumer) Process(ctx context.Context, eventType string, envelope events.PayloadEnvelope) error {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"event_id":   envelope.EventID,
		"event_type": eventType,
	})

	if eventType != events.EventTypeProductUpdated {
		c.logg.Info(logCtx, "event not handled by stock-alert consumer")
		return nil
	}

	if envelope.EventID == "" {
		return fmt.Errorf("event id missing")
	}
	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		return fmt.Errorf("parse event id: %w", err)
	}

	already, err := c.manager.CheckAndMarkProcessed(ctx, stockAlertConsumerName, eventID)
	if err != nil {
		return fmt.Errorf("idempotency check: %w", err)
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return nil
	}

	var payload events.ProductUpdated
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		c.logg.Error(logCtx, "failed to parse payload", err)
		_ = c.manager.Delete(ctx, stockAlertConsumerName, eventID)
		return err
	}
	if payload.After.ID == uuid.Nil || payload.After.StoreID == uuid.Nil {
		_ = c.manager.Delete(ctx, stockAlertConsumerName, eventID)
		return fmt.Errorf("payload missing product identity")
	}

	if err := c.notifier.HandleProductUpdate(ctx, payload.After.StoreID, payload.After.ID, payload); err != nil {
		_ = c.manager.Delete(ctx, stockAlertConsumerName, eventID)
		return err
	}
	return nil
}
