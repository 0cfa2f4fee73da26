package membership

import (
	"testing"
	"time"

	"github.com/clubwash/clubwash-backend/pkg/db/models"
	"github.com/clubwash/clubwash-backend/pkg/enums"
)

func day(offset int) time.Time {
	return time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func period(status enums.PeriodStatus, startOffset, endOffset int) models.MembershipPeriod {
	return models.MembershipPeriod{
		Status:    status,
		StartDate: day(startOffset),
		EndDate:   day(endOffset),
	}
}

func TestIsCurrentlyValidNoActivePeriods(t *testing.T) {
	now := day(0)

	if IsCurrentlyValid(nil, now) {
		t.Fatal("no periods should not be valid")
	}
	if DaysRemaining(nil, now) != 0 {
		t.Fatal("no periods should yield 0 days")
	}

	periods := []models.MembershipPeriod{
		period(enums.PeriodStatusExpired, -60, -30),
		period(enums.PeriodStatusGrace, -30, 10),
	}
	if IsCurrentlyValid(periods, now) {
		t.Fatal("only non-active statuses should not be valid")
	}
	if DaysRemaining(periods, now) != 0 {
		t.Fatal("only non-active statuses should yield 0 days")
	}
}

func TestIsCurrentlyValidEndOfDayInclusive(t *testing.T) {
	// Period ends today; a scan at 18:45 must still admit.
	now := time.Date(2026, 5, 20, 18, 45, 0, 0, time.UTC)
	periods := []models.MembershipPeriod{
		period(enums.PeriodStatusActive, -30, 0),
	}

	if !IsCurrentlyValid(periods, now) {
		t.Fatal("period ending today should still be valid")
	}
	if got := DaysRemaining(periods, now); got != 0 {
		t.Fatalf("expected 0 days remaining, got %d", got)
	}
}

func TestIsCurrentlyValidAllPassed(t *testing.T) {
	now := day(0)
	periods := []models.MembershipPeriod{
		period(enums.PeriodStatusActive, -60, -31),
		period(enums.PeriodStatusActive, -30, -1),
	}

	if IsCurrentlyValid(periods, now) {
		t.Fatal("all periods in the past should not be valid")
	}
	if DaysRemaining(periods, now) != 0 {
		t.Fatal("expired periods should yield 0 days")
	}
}

func TestDaysRemainingPicksLatestActiveEnd(t *testing.T) {
	now := day(0)
	periods := []models.MembershipPeriod{
		period(enums.PeriodStatusActive, -30, 5),
		period(enums.PeriodStatusActive, -10, 23),
		period(enums.PeriodStatusExpired, -10, 90),
	}

	if got := DaysRemaining(periods, now); got != 23 {
		t.Fatalf("expected 23 days to the latest active end, got %d", got)
	}
	if !IsCurrentlyValid(periods, now) {
		t.Fatal("expected valid membership")
	}
}

func TestLatestEndSpansAllStatuses(t *testing.T) {
	periods := []models.MembershipPeriod{
		period(enums.PeriodStatusExpired, -60, 40),
		period(enums.PeriodStatusActive, -30, 10),
	}

	end, ok := LatestEnd(periods)
	if !ok {
		t.Fatal("expected an end date")
	}
	if !end.Equal(day(40)) {
		t.Fatalf("expected latest end %v, got %v", day(40), end)
	}

	if _, ok := LatestEnd(nil); ok {
		t.Fatal("no periods should report no end date")
	}
}
