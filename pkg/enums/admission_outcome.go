package enums

import "fmt"

// AdmissionOutcome is the allowed/blocked decision computed at scan time.
type AdmissionOutcome string

const (
	AdmissionOutcomeAllowed AdmissionOutcome = "allowed"
	AdmissionOutcomeBlocked AdmissionOutcome = "blocked"
)

var validAdmissionOutcomes = []AdmissionOutcome{
	AdmissionOutcomeAllowed,
	AdmissionOutcomeBlocked,
}

// String implements fmt.Stringer.
func (a AdmissionOutcome) String() string {
	return string(a)
}

// IsValid reports whether the value matches a known AdmissionOutcome.
func (a AdmissionOutcome) IsValid() bool {
	for _, candidate := range validAdmissionOutcomes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAdmissionOutcome converts raw input into an AdmissionOutcome.
func ParseAdmissionOutcome(value string) (AdmissionOutcome, error) {
	for _, candidate := range validAdmissionOutcomes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid admission outcome %q", value)
}
