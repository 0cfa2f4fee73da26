package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clubwash/clubwash-backend/api/responses"
	"github.com/clubwash/clubwash-backend/api/validators"
	"github.com/clubwash/clubwash-backend/internal/members"
	"github.com/clubwash/clubwash-backend/internal/membership"
	"github.com/clubwash/clubwash-backend/pkg/enums"
	pkgerrors "github.com/clubwash/clubwash-backend/pkg/errors"
	"github.com/clubwash/clubwash-backend/pkg/logger"
	"github.com/clubwash/clubwash-backend/pkg/pagination"
)

type createMemberRequest struct {
	Name        string                 `json:"name" validate:"required"`
	Phone       string                 `json:"phone" validate:"required"`
	CardUID     string                 `json:"card_uid" validate:"required"`
	PackageTier string                 `json:"package_tier" validate:"required"`
	EndDate     string                 `json:"end_date" validate:"required"`
	Vehicles    []members.VehicleInput `json:"vehicles" validate:"dive"`
}

type updateMemberRequest struct {
	Name        *string `json:"name,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	PackageTier *string `json:"package_tier,omitempty"`
	Status      *string `json:"status,omitempty"`
}

type extendMembershipRequest struct {
	EndDate string `json:"end_date" validate:"required"`
}

func parseDateField(raw, field string) (time.Time, error) {
	parsed, err := time.Parse(time.DateOnly, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "must be a date (YYYY-MM-DD)").WithDetails(map[string]any{"field": field})
	}
	return parsed, nil
}

// CreateMember onboards a member with their first period and vehicles.
func CreateMember(svc members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createMemberRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		endDate, err := parseDateField(req.EndDate, "end_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Create(r.Context(), members.CreateMemberParams{
			Name:        req.Name,
			Phone:       req.Phone,
			CardUID:     req.CardUID,
			PackageTier: enums.PackageTier(req.PackageTier),
			EndDate:     endDate,
			Vehicles:    req.Vehicles,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, detail)
	}
}

// GetMember returns one member with vehicles, periods and derived validity.
func GetMember(svc members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// UpdateMember applies a partial update.
func UpdateMember(svc members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateMemberRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := members.UpdateMemberParams{
			Name:  req.Name,
			Phone: req.Phone,
		}
		if req.PackageTier != nil {
			tier := enums.PackageTier(*req.PackageTier)
			params.PackageTier = &tier
		}
		if req.Status != nil {
			status := enums.MemberStatus(*req.Status)
			params.Status = &status
		}

		member, err := svc.Update(r.Context(), id, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, member)
	}
}

// DeleteMember removes a member and their vehicles. Visits are kept.
func DeleteMember(svc members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// SearchMembers lists members with text search, filters and cursor pagination.
func SearchMembers(svc members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := members.SearchParams{
			Query:  strings.TrimSpace(r.URL.Query().Get("q")),
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status := enums.MemberStatus(raw)
			params.Status = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("package_tier")); raw != "" {
			tier := enums.PackageTier(raw)
			params.Tier = &tier
		}

		result, err := svc.Search(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AddVehicle registers another vehicle, subject to the tier quota.
func AddVehicle(svc members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req members.VehicleInput
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicle, err := svc.AddVehicle(r.Context(), id, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, vehicle)
	}
}

// RemoveVehicle deletes one of the member's vehicles.
func RemoveVehicle(svc members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		memberID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		vehicleID, err := validators.ParsePathUUID(chi.URLParam(r, "vehicleID"), "vehicleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveVehicle(r.Context(), memberID, vehicleID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// ExtendMembership appends a new validity period for the member.
func ExtendMembership(svc membership.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req extendMembershipRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		endDate, err := parseDateField(req.EndDate, "end_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Extend(r.Context(), membership.ExtendParams{
			MemberID: id,
			EndDate:  endDate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
