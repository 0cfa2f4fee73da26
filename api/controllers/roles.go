package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clubwash/clubwash-backend/api/responses"
	"github.com/clubwash/clubwash-backend/api/validators"
	"github.com/clubwash/clubwash-backend/internal/rbac"
	"github.com/clubwash/clubwash-backend/pkg/enums"
	"github.com/clubwash/clubwash-backend/pkg/logger"
)

type updateRoleRequest struct {
	Changes map[string]bool `json:"changes" validate:"required,min=1"`
}

// GetRoleMatrix returns the full role/capability policy table.
func GetRoleMatrix(svc rbac.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matrix, err := svc.Matrix(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, matrix)
	}
}

// UpdateRole toggles capabilities for one role.
func UpdateRole(svc rbac.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := enums.StaffRole(chi.URLParam(r, "role"))

		var req updateRoleRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		changes := make(map[enums.Capability]bool, len(req.Changes))
		for capability, allowed := range req.Changes {
			changes[enums.Capability(capability)] = allowed
		}

		set, err := svc.UpdateRole(r.Context(), rbac.UpdateRoleParams{
			Role:    role,
			Changes: changes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, set)
	}
}
