package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/clubwash/clubwash-backend/api/responses"
	"github.com/clubwash/clubwash-backend/api/validators"
	"github.com/clubwash/clubwash-backend/internal/auth"
	"github.com/clubwash/clubwash-backend/pkg/db/models"
	"github.com/clubwash/clubwash-backend/pkg/enums"
	"github.com/clubwash/clubwash-backend/pkg/logger"
	"github.com/clubwash/clubwash-backend/pkg/pagination"
)

type createStaffRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role" validate:"required"`
}

type createStaffResponse struct {
	Staff        staffView `json:"staff"`
	TempPassword string    `json:"temp_password,omitempty"`
}

type listStaffResponse struct {
	Staff      []staffView `json:"staff"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

type setStaffActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// CreateStaff registers a new operator account. A missing password yields a
// generated temporary one, returned once in the response.
func CreateStaff(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createStaffRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreateStaff(r.Context(), auth.CreateStaffParams{
			Email:    req.Email,
			Name:     req.Name,
			Password: req.Password,
			Role:     enums.StaffRole(req.Role),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, createStaffResponse{
			Staff:        toStaffView(result.Staff),
			TempPassword: result.TempPassword,
		})
	}
}

// ListStaff pages through operator accounts.
func ListStaff(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListStaff(r.Context(), auth.ListStaffParams{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]staffView, 0, len(result.Staff))
		for i := range result.Staff {
			staff := result.Staff[i]
			views = append(views, toStaffView(&staff))
		}
		responses.WriteSuccess(w, listStaffResponse{
			Staff:      views,
			NextCursor: result.NextCursor,
		})
	}
}

// SetStaffActive enables or disables an operator account.
func SetStaffActive(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req setStaffActiveRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var staff *models.StaffUser
		staff, err = svc.SetStaffActive(r.Context(), id, *req.IsActive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toStaffView(staff))
	}
}
