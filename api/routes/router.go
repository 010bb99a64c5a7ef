package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shopzen/shopzen-backend/api/controllers"
	"github.com/shopzen/shopzen-backend/api/middleware"
	"github.com/shopzen/shopzen-backend/pkg/config"
	"github.com/shopzen/shopzen-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient controllers.Pinger,
	pubsubClient controllers.Pinger,
	stockSubscriptionService controllers.StockSubscriptionService,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient, pubsubClient))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/stores/{storeId}/products/{productId}", func(r chi.Router) {
		r.Post("/stock-subscriptions", controllers.CreateStockSubscription(stockSubscriptionService, logg))
	})

	return r
}
