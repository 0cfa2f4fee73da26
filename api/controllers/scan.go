package controllers

import (
	"net/http"

	"github.com/clubwash/clubwash-backend/api/responses"
	"github.com/clubwash/clubwash-backend/api/validators"
	"github.com/clubwash/clubwash-backend/internal/admission"
	"github.com/clubwash/clubwash-backend/internal/members"
	"github.com/clubwash/clubwash-backend/pkg/logger"
)

type scanRequest struct {
	CardUID string `json:"card_uid" validate:"required"`
}

// Scan runs the gate admission decision for a scanned card.
func Scan(svc admission.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scanRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Scan(r.Context(), req.CardUID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type statusCheckRequest struct {
	Phone   string `json:"phone,omitempty"`
	CardUID string `json:"card_uid,omitempty"`
}

// StatusCheck is the self-service membership lookup by phone or card UID.
func StatusCheck(svc members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req statusCheckRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.StatusCheck(r.Context(), members.StatusCheckParams{
			Phone:   req.Phone,
			CardUID: req.CardUID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}
