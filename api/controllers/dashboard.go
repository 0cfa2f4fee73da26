package controllers

import (
	"net/http"

	"github.com/clubwash/clubwash-backend/api/responses"
	"github.com/clubwash/clubwash-backend/internal/dashboard"
	"github.com/clubwash/clubwash-backend/pkg/logger"
)

// Dashboard returns the reporting snapshot.
func Dashboard(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := svc.Snapshot(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}
