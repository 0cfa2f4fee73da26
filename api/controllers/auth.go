package controllers

import (
	"net/http"
	"time"

	"github.com/clubwash/clubwash-backend/api/responses"
	"github.com/clubwash/clubwash-backend/api/validators"
	"github.com/clubwash/clubwash-backend/internal/auth"
	"github.com/clubwash/clubwash-backend/pkg/db/models"
	"github.com/clubwash/clubwash-backend/pkg/enums"
	"github.com/clubwash/clubwash-backend/pkg/logger"
	"github.com/google/uuid"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type staffView struct {
	ID          uuid.UUID       `json:"id"`
	Email       string          `json:"email"`
	Name        string          `json:"name"`
	Role        enums.StaffRole `json:"role"`
	IsActive    bool            `json:"is_active"`
	LastLoginAt *time.Time      `json:"last_login_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Staff     staffView `json:"staff"`
}

func toStaffView(staff *models.StaffUser) staffView {
	return staffView{
		ID:          staff.ID,
		Email:       staff.Email,
		Name:        staff.Name,
		Role:        staff.Role,
		IsActive:    staff.IsActive,
		LastLoginAt: staff.LastLoginAt,
		CreatedAt:   staff.CreatedAt,
	}
}

// AuthLogin exchanges staff credentials for an access token.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), auth.LoginParams{
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, loginResponse{
			Token:     result.Token,
			ExpiresAt: result.ExpiresAt,
			Staff:     toStaffView(result.Staff),
		})
	}
}
