package enums

import "fmt"

// ReplacementStatus is the approval state of a card replacement request.
// A request starts pending and transitions exactly once.
type ReplacementStatus string

const (
	ReplacementStatusPending  ReplacementStatus = "pending"
	ReplacementStatusApproved ReplacementStatus = "approved"
	ReplacementStatusRejected ReplacementStatus = "rejected"
)

var validReplacementStatuses = []ReplacementStatus{
	ReplacementStatusPending,
	ReplacementStatusApproved,
	ReplacementStatusRejected,
}

// String implements fmt.Stringer.
func (r ReplacementStatus) String() string {
	return string(r)
}

// IsValid reports whether the value matches a known ReplacementStatus.
func (r ReplacementStatus) IsValid() bool {
	for _, candidate := range validReplacementStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseReplacementStatus converts raw input into a ReplacementStatus.
func ParseReplacementStatus(value string) (ReplacementStatus, error) {
	for _, candidate := range validReplacementStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid replacement status %q", value)
}
