package enums

import "fmt"

// PeriodStatus tracks the state of one paid membership interval.
type PeriodStatus string

const (
	PeriodStatusActive  PeriodStatus = "active"
	PeriodStatusExpired PeriodStatus = "expired"
	PeriodStatusGrace   PeriodStatus = "grace"
)

var validPeriodStatuses = []PeriodStatus{
	PeriodStatusActive,
	PeriodStatusExpired,
	PeriodStatusGrace,
}

// String implements fmt.Stringer.
func (p PeriodStatus) String() string {
	return string(p)
}

// IsValid reports whether the value matches a known PeriodStatus.
func (p PeriodStatus) IsValid() bool {
	for _, candidate := range validPeriodStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePeriodStatus converts raw input into a PeriodStatus.
func ParsePeriodStatus(value string) (PeriodStatus, error) {
	for _, candidate := range validPeriodStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid period status %q", value)
}
