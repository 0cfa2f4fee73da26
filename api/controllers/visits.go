package controllers

import (
	"net/http"
	"strings"

	"github.com/clubwash/clubwash-backend/api/responses"
	"github.com/clubwash/clubwash-backend/api/validators"
	"github.com/clubwash/clubwash-backend/internal/visits"
	"github.com/clubwash/clubwash-backend/pkg/enums"
	"github.com/clubwash/clubwash-backend/pkg/logger"
	"github.com/clubwash/clubwash-backend/pkg/pagination"
)

// ListVisits returns the scan log with member, date range and outcome filters.
func ListVisits(svc visits.Service, logg *logger.Logger) http.HandlerFunc {
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
		from, err := validators.ParseQueryDate(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryDate(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := visits.ListParams{
			MemberID: memberID,
			From:     from,
			To:       to,
			Limit:    limit,
			Cursor:   strings.TrimSpace(r.URL.Query().Get("cursor")),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("outcome")); raw != "" {
			outcome := enums.AdmissionOutcome(raw)
			params.Outcome = &outcome
		}

		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
