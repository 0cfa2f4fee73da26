package controllers

import (
	"context"
	"net/http"

	"github.com/clubwash/clubwash-backend/api/responses"
	"github.com/clubwash/clubwash-backend/pkg/config"
	"github.com/clubwash/clubwash-backend/pkg/db"
	pkgerrors "github.com/clubwash/clubwash-backend/pkg/errors"
	"github.com/clubwash/clubwash-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-ClubWash-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks the dependencies the API cannot serve without. Redis is
// optional so a nil client is simply skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, cache pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-ClubWash-Env", cfg.App.Env)

		if dbP == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "database unavailable"))
			return
		}
		if err := dbP.Ping(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database ping"))
			return
		}
		if cache != nil {
			if err := cache.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis ping"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
