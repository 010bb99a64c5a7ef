package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shopzen/shopzen-backend/internal/stockalerts"
	"github.com/shopzen/shopzen-backend/internal/stores"
	"github.com/shopzen/shopzen-backend/pkg/config"
	"github.com/shopzen/shopzen-backend/pkg/db"
	"github.com/shopzen/shopzen-backend/pkg/email"
	"github.com/shopzen/shopzen-backend/pkg/events/idempotency"
	"github.com/shopzen/shopzen-backend/pkg/logger"
	"github.com/shopzen/shopzen-backend/pkg/pubsub"
	"github.com/shopzen/shopzen-backend/pkg/redis"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "stock-alert-worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	cfg.Service.Kind = "stock-alert-worker"

	logg = logger.New(logger.Options{
		ServiceName: "stock-alert-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer redisClient.Close()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer pubsubClient.Close()

	sender, err := email.NewSendgridSender(cfg.Sendgrid)
	requireResource(ctx, logg, "sendgrid", err)

	manager, err := idempotency.NewManager(redisClient, cfg.Eventing.IdempotencyTTL)
	requireResource(ctx, logg, "idempotency manager", err)

	alertRepo := stockalerts.NewRepository(dbClient.DB())
	notifier, err := stockalerts.NewNotifier(stockalerts.NotifierOptions{
		Stores:            stores.NewRepository(dbClient.DB()),
		Subscriptions:     alertRepo,
		Markers:           alertRepo,
		Sender:            sender,
		Metrics:           stockalerts.NewMetrics(prometheus.DefaultRegisterer),
		Logger:            logg,
		CooldownWindow:    cfg.Alerts.CooldownWindow,
		StorefrontBaseURL: cfg.Alerts.StorefrontBaseURL,
	})
	requireResource(ctx, logg, "stock alert notifier", err)

	alertConsumer, err := stockalerts.NewConsumer(
		notifier,
		pubsubClient.ProductUpdatesSubscription(),
		manager,
		logg,
	)
	requireResource(ctx, logg, "stock alert consumer", err)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"serviceKind": cfg.Service.Kind,
		"env":         cfg.App.Env,
	})
	logg.Info(runCtx, "stock alert worker ready")

	if err := alertConsumer.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "stock alert worker not working", err)
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
