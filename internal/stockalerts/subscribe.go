package stockalerts

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/shopzen/shopzen-backend/pkg/db"
	"github.com/shopzen/shopzen-backend/pkg/db/models"
	pkgerrors "github.com/shopzen/shopzen-backend/pkg/errors"
	"github.com/shopzen/shopzen-backend/pkg/logger"
)

const subscriptionUniqueConstraint = "idx_stock_subscriptions_product_email"

// Service exposes the storefront-facing subscription operation.
type Service struct {
	stores   StoreReader
	products ProductReader
	subs     SubscriptionRepository
	validate *validator.Validate
	logg     *logger.Logger
}

// NewService wires the subscription service dependencies.
func NewService(stores StoreReader, products ProductReader, subs SubscriptionRepository, logg *logger.Logger) (*Service, error) {
	if stores == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "store reader required")
	}
	if products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "product reader required")
	}
	if subs == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "subscription repository required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &Service{
		stores:   stores,
		products: products,
		subs:     subs,
		validate: validator.New(),
		logg:     logg,
	}, nil
}

// SubscribeParams identifies the product a shopper wants an alert for.
type SubscribeParams struct {
	StoreID   uuid.UUID
	ProductID uuid.UUID
	Email     string
}

// Subscribe registers a shopper for a back-in-stock alert on an out-of-stock
// product. Subscribing twice with the same address is a conflict.
func (s *Service) Subscribe(ctx context.Context, params SubscribeParams) (*models.StockSubscription, error) {
	if params.StoreID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if params.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	address := strings.TrimSpace(strings.ToLower(params.Email))
	if err := s.validate.Var(address, "required,email"); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "a valid email address is required")
	}

	store, err := s.stores.FindByID(ctx, params.StoreID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading store")
	}
	if !store.BackInStockEnabled {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "back-in-stock alerts are not enabled for this store")
	}

	product, err := s.products.FindProduct(ctx, params.StoreID, params.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading product")
	}
	if product.StockQty != nil && *product.StockQty > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product is already in stock")
	}

	sub := &models.StockSubscription{
		ID:        uuid.New(),
		StoreID:   params.StoreID,
		ProductID: params.ProductID,
		Email:     address,
	}
	if err := s.subs.Create(ctx, sub); err != nil {
		if dbpkg.IsUniqueViolation(err, subscriptionUniqueConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "this address is already subscribed")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating subscription")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"store_id":   params.StoreID.String(),
		"product_id": params.ProductID.String(),
	}), "stock subscription created")
	return sub, nil
}
