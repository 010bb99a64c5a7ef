package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/shopzen/shopzen-backend/api/responses"
	"github.com/shopzen/shopzen-backend/pkg/config"
	pkgerrors "github.com/shopzen/shopzen-backend/pkg/errors"
	"github.com/shopzen/shopzen-backend/pkg/logger"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-ShopZen-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks the datastores the API cannot serve without. A nil pinger
// means the dependency is not wired for this deployment and is skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, db, redisClient, pubsubClient Pinger) http.HandlerFunc {
	checks := []struct {
		name   string
		pinger Pinger
	}{
		{name: "postgres", pinger: db},
		{name: "redis", pinger: redisClient},
		{name: "pubsub", pinger: pubsubClient},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-ShopZen-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := map[string]string{}
		for _, check := range checks {
			if check.pinger == nil {
				continue
			}
			if err := check.pinger.Ping(ctx); err != nil {
				status[check.name] = "unreachable"
				wrapped := pkgerrors.Wrap(pkgerrors.CodeDependency, err, check.name+" unreachable").WithDetails(status)
				responses.WriteError(ctx, logg, w, wrapped)
				return
			}
			status[check.name] = "ok"
		}

		status["status"] = "ready"
		responses.WriteSuccess(w, status)
	}
}
