package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ActorRef identifies who produced the event.
type ActorRef struct {
	UserID  uuid.UUID  `json:"userId"`
	StoreID *uuid.UUID `json:"storeId,omitempty"`
	Role    string     `json:"role,omitempty"`
}

// PayloadEnvelope is the stable payload structure published on every topic.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// EventTypeProductUpdated is the message attribute set on product change-feed events.
const EventTypeProductUpdated = "product.updated"

// ProductSnapshot captures the persisted fields of a product at a point in time.
// StockQty is a pointer so a missing value can be told apart from zero.
type ProductSnapshot struct {
	ID         uuid.UUID `json:"id"`
	StoreID    uuid.UUID `json:"storeId"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"priceCents"`
	StockQty   *int64    `json:"stockQty,omitempty"`
	IsActive   bool      `json:"isActive"`
}

// ProductUpdated is the Data payload for product.updated events: the product
// state before and after a persisted change.
type ProductUpdated struct {
	Before *ProductSnapshot `json:"before,omitempty"`
	After  ProductSnapshot  `json:"after"`
}
