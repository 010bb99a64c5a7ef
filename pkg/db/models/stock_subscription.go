package models

import (
	"time"

	"github.com/google/uuid"
)

// StockSubscription is a shopper's "notify me when back in stock" request for
// a single product. Entries are consumed (deleted) by the alert pipeline after
// one processing pass, delivered or not.
type StockSubscription struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID   uuid.UUID `gorm:"column:store_id;type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_stock_subscriptions_product_email"`
	Email     string    `gorm:"column:email;not null;uniqueIndex:idx_stock_subscriptions_product_email"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
