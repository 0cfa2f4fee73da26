package enums

import "fmt"

// ReplacementReason explains why a member needs a new card.
type ReplacementReason string

const (
	ReplacementReasonLost    ReplacementReason = "lost"
	ReplacementReasonDamaged ReplacementReason = "damaged"
	ReplacementReasonStolen  ReplacementReason = "stolen"
	ReplacementReasonOther   ReplacementReason = "other"
)

var validReplacementReasons = []ReplacementReason{
	ReplacementReasonLost,
	ReplacementReasonDamaged,
	ReplacementReasonStolen,
	ReplacementReasonOther,
}

// String implements fmt.Stringer.
func (r ReplacementReason) String() string {
	return string(r)
}

// IsValid reports whether the value matches a known ReplacementReason.
func (r ReplacementReason) IsValid() bool {
	for _, candidate := range validReplacementReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseReplacementReason converts raw input into a ReplacementReason.
func ParseReplacementReason(value string) (ReplacementReason, error) {
	for _, candidate := range validReplacementReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid replacement reason %q", value)
}
