package membership

import (
	"time"

	"github.com/clubwash/clubwash-backend/pkg/db/models"
	"github.com/clubwash/clubwash-backend/pkg/enums"
)

// DateOnly truncates a timestamp to midnight of the same calendar day in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// LatestActiveEnd returns the latest end date among active periods.
// The second return is false when the member has no active period at all.
func LatestActiveEnd(periods []models.MembershipPeriod) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, p := range periods {
		if p.Status != enums.PeriodStatusActive {
			continue
		}
		end := DateOnly(p.EndDate)
		if !found || end.After(latest) {
			latest = end
			found = true
		}
	}
	return latest, found
}

// LatestEnd returns the latest end date across every period regardless of
// status. Extensions append after this date so renewal history never overlaps.
func LatestEnd(periods []models.MembershipPeriod) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, p := range periods {
		end := DateOnly(p.EndDate)
		if !found || end.After(latest) {
			latest = end
			found = true
		}
	}
	return latest, found
}

// IsCurrentlyValid reports whether the member holds at least one active
// period whose end date has not passed. End dates are inclusive through the
// end of the day, so a period ending today still admits.
func IsCurrentlyValid(periods []models.MembershipPeriod, now time.Time) bool {
	end, ok := LatestActiveEnd(periods)
	if !ok {
		return false
	}
	return !DateOnly(now).After(end)
}

// DaysRemaining counts whole days from now to the latest active end date.
// A period ending today yields 0, never negative; no valid period yields 0.
func DaysRemaining(periods []models.MembershipPeriod, now time.Time) int {
	end, ok := LatestActiveEnd(periods)
	if !ok {
		return 0
	}
	days := int(end.Sub(DateOnly(now)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
