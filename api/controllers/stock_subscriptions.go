package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shopzen/shopzen-backend/api/responses"
	"github.com/shopzen/shopzen-backend/api/validators"
	"github.com/shopzen/shopzen-backend/internal/stockalerts"
	"github.com/shopzen/shopzen-backend/pkg/db/models"
	pkgerrors "github.com/shopzen/shopzen-backend/pkg/errors"
	"github.com/shopzen/shopzen-backend/pkg/logger"
)

// StockSubscriptionService is the slice of stockalerts the controller needs.
type StockSubscriptionService interface {
	Subscribe(ctx context.Context, params stockalerts.SubscribeParams) (*models.StockSubscription, error)
}

type createStockSubscriptionPayload struct {
	Email string `json:"email" validate:"required,email"`
}

type stockSubscriptionResponse struct {
	ID        uuid.UUID `json:"id"`
	StoreID   uuid.UUID `json:"store_id"`
	ProductID uuid.UUID `json:"product_id"`
	Email     string    `json:"email"`
}

// CreateStockSubscription registers a shopper for a back-in-stock alert on the
// product named in the route.
func CreateStockSubscription(svc StockSubscriptionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stock subscription service unavailable"))
			return
		}

		storeID, err := uuid.Parse(chi.URLParam(r, "storeId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid store id"))
			return
		}
		productID, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		var payload createStockSubscriptionPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		sub, err := svc.Subscribe(ctx, stockalerts.SubscribeParams{
			StoreID:   storeID,
			ProductID: productID,
			Email:     payload.Email,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, stockSubscriptionResponse{
			ID:        sub.ID,
			StoreID:   sub.StoreID,
			ProductID: sub.ProductID,
			Email:     sub.Email,
		})
	}
}
