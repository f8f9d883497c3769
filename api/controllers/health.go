package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/sagaflow-backend/api/responses"
	"github.com/angelmondragon/sagaflow-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/sagaflow-backend/pkg/errors"
	"github.com/angelmondragon/sagaflow-backend/pkg/logger"
)

const readyCheckTimeout = 2 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SagaFlow-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every wired dependency before reporting ready. A nil
// pinger is skipped so workers can reuse the handler with a partial set.
func HealthReady(cfg *config.Config, logg *logger.Logger, db pinger, cache pinger) http.HandlerFunc {
	checks := []struct {
		name   string
		pinger pinger
	}{
		{name: "postgres", pinger: db},
		{name: "redis", pinger: cache},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SagaFlow-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		for _, check := range checks {
			if check.pinger == nil {
				continue
			}
			if err := check.pinger.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, check.name+" not ready"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
