package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/clubwash/clubwash-backend/api/middleware"
	"github.com/clubwash/clubwash-backend/api/responses"
	"github.com/clubwash/clubwash-backend/api/validators"
	"github.com/clubwash/clubwash-backend/internal/replacements"
	"github.com/clubwash/clubwash-backend/pkg/enums"
	pkgerrors "github.com/clubwash/clubwash-backend/pkg/errors"
	"github.com/clubwash/clubwash-backend/pkg/logger"
	"github.com/clubwash/clubwash-backend/pkg/pagination"
	"github.com/google/uuid"
)

type submitReplacementRequest struct {
	MemberID string  `json:"member_id" validate:"required"`
	OldUID   string  `json:"old_uid" validate:"required"`
	NewUID   string  `json:"new_uid" validate:"required"`
	Reason   string  `json:"reason" validate:"required"`
	Note     *string `json:"note,omitempty"`
	ProofRef *string `json:"proof_ref,omitempty"`
}

// SubmitReplacement files a pending card replacement request.
func SubmitReplacement(svc replacements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitReplacementRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		memberID, err := uuid.Parse(req.MemberID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid member id"))
			return
		}

		request, err := svc.Submit(r.Context(), replacements.SubmitParams{
			MemberID: memberID,
			OldUID:   req.OldUID,
			NewUID:   req.NewUID,
			Reason:   enums.ReplacementReason(req.Reason),
			Note:     req.Note,
			ProofRef: req.ProofRef,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, request)
	}
}

func actingStaffID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.StaffIDFromContext(r.Context())
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return id, nil
}

// ApproveReplacement decides a pending request and swaps the member's card.
func ApproveReplacement(svc replacements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		staffID, err := actingStaffID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.Approve(r.Context(), id, staffID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}

// RejectReplacement declines a pending request without touching the member.
func RejectReplacement(svc replacements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		staffID, err := actingStaffID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.Reject(r.Context(), id, staffID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}

// GetReplacement returns one request.
func GetReplacement(svc replacements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}

// ListReplacements pages through requests with member and status filters.
func ListReplacements(svc replacements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		memberID, err := validators.ParseQueryUUID(r, "member_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := replacements.ListParams{
			MemberID: memberID,
			Limit:    limit,
			Cursor:   strings.TrimSpace(r.URL.Query().Get("cursor")),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status := enums.ReplacementStatus(raw)
			params.Status = &status
		}

		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
