package controllers

import (
	"net/http"

	"github.com/aresheg/restaurant-storefront/api/responses"
	"github.com/aresheg/restaurant-storefront/pkg/config"
	pkgerrors "github.com/aresheg/restaurant-storefront/pkg/errors"
	"github.com/aresheg/restaurant-storefront/pkg/logger"
	"github.com/aresheg/restaurant-storefront/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady verifies optional backing services. A missing pinger means the
// dependency is not configured and is skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, redisPinger redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)

		if redisPinger != nil {
			if err := redisPinger.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
