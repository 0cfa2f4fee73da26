package members

import (
	"time"

	"github.com/clubwash/clubwash-backend/pkg/db/models"
	"github.com/clubwash/clubwash-backend/pkg/enums"
)

// VehicleInput is one vehicle supplied at onboarding or via add-vehicle.
type VehicleInput struct {
	Plate string `json:"plate" validate:"required"`
	Color string `json:"color,omitempty"`
}

// CreateMemberParams carries everything needed to onboard a member.
type CreateMemberParams struct {
	Name        string
	Phone       string
	CardUID     string
	PackageTier enums.PackageTier
	EndDate     time.Time
	Vehicles    []VehicleInput
	Now         time.Time
}

// UpdateMemberParams applies a partial update; nil fields are untouched.
type UpdateMemberParams struct {
	Name        *string
	Phone       *string
	PackageTier *enums.PackageTier
	Status      *enums.MemberStatus
}

// SearchParams filters and paginates the member list.
type SearchParams struct {
	Query  string
	Status *enums.MemberStatus
	Tier   *enums.PackageTier
	Limit  int
	Cursor string
}

// MemberDetail is a member plus the derived state the dashboard and detail
// views present.
type MemberDetail struct {
	Member        models.Member             `json:"member"`
	Vehicles      []models.Vehicle          `json:"vehicles"`
	Periods       []models.MembershipPeriod `json:"periods"`
	Valid         bool                      `json:"valid"`
	DaysRemaining int                       `json:"days_remaining"`
}

// StatusCheckParams identifies a member by phone (any accepted variant) or
// card UID for the self-service status lookup.
type StatusCheckParams struct {
	Phone   string
	CardUID string
	Now     time.Time
}

// StatusSnapshot is the public view returned by the status check. It omits
// internal ids on purpose.
type StatusSnapshot struct {
	Code          string             `json:"code"`
	Name          string             `json:"name"`
	PackageTier   enums.PackageTier  `json:"package_tier"`
	Status        enums.MemberStatus `json:"status"`
	Valid         bool               `json:"valid"`
	DaysRemaining int                `json:"days_remaining"`
	EndDate       *time.Time         `json:"end_date,omitempty"`
	Vehicles      []models.Vehicle   `json:"vehicles"`
}
