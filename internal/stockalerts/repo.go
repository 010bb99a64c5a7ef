package stockalerts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shopzen/shopzen-backend/pkg/db/models"
)

// SubscriptionRepository persists back-in-stock subscription requests.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *models.StockSubscription) error
	ListByProduct(ctx context.Context, storeID, productID uuid.UUID) ([]models.StockSubscription, error)
	Delete(ctx context.Context, storeID, productID, id uuid.UUID) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// MarkerRepository persists the per-product record of the last alert batch.
type MarkerRepository interface {
	LastAlertAt(ctx context.Context, storeID, productID uuid.UUID) (*time.Time, error)
	RecordAlert(ctx context.Context, storeID, productID uuid.UUID, at time.Time) error
}

// ProductReader looks up a product scoped to its owning store.
type ProductReader interface {
	FindProduct(ctx context.Context, storeID, productID uuid.UUID) (*models.Product, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a stock-alerts repository bound to the provided DB.
func NewRepository(db *gorm.DB) *repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, sub *models.StockSubscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

// ListByProduct returns a snapshot of all subscribers for the product, oldest
// first. Subscriptions created after the snapshot is taken are not included.
func (r *repository) ListByProduct(ctx context.Context, storeID, productID uuid.UUID) ([]models.StockSubscription, error) {
	var subs []models.StockSubscription
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND product_id = ?", storeID, productID).
		Order("created_at ASC").
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

// Delete removes a subscription. Deleting an id that is already gone is a no-op.
func (r *repository) Delete(ctx context.Context, storeID, productID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("store_id = ? AND product_id = ? AND id = ?", storeID, productID, id).
		Delete(&models.StockSubscription{}).
		Error
}

// DeleteOlderThan purges subscriptions created before the cutoff and returns
// the number of rows removed.
func (r *repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.StockSubscription{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repository) LastAlertAt(ctx context.Context, storeID, productID uuid.UUID) (*time.Time, error) {
	var marker models.StockAlertMarker
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND product_id = ?", storeID, productID).
		First(&marker).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	at := marker.LastAlertAt
	return &at, nil
}

// RecordAlert upserts the marker so recording succeeds whether or not the
// product has been alerted before.
func (r *repository) RecordAlert(ctx context.Context, storeID, productID uuid.UUID, at time.Time) error {
	marker := models.StockAlertMarker{
		StoreID:     storeID,
		ProductID:   productID,
		LastAlertAt: at,
		UpdatedAt:   at,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "store_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_alert_at", "updated_at"}),
		}).
		Create(&marker).Error
}

func (r *repository) FindProduct(ctx context.Context, storeID, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND id = ?", storeID, productID).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}
