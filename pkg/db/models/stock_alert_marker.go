package models

import (
	"time"

	"github.com/google/uuid"
)

// StockAlertMarker records the instant the most recent back-in-stock alert
// batch was dispatched for a product. One mutable row per (store, product).
type StockAlertMarker struct {
	StoreID     uuid.UUID `gorm:"column:store_id;type:uuid;primaryKey"`
	ProductID   uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	LastAlertAt time.Time `gorm:"column:last_alert_at;not null"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
