package enums

import "fmt"

// PackageTier identifies one of the three fixed membership plans. Values
// mirror the monthly price the plan is sold under.
type PackageTier string

const (
	PackageTier299K PackageTier = "299k"
	PackageTier499K PackageTier = "499k"
	PackageTier669K PackageTier = "669k"
)

var validPackageTiers = []PackageTier{
	PackageTier299K,
	PackageTier499K,
	PackageTier669K,
}

// String implements fmt.Stringer.
func (p PackageTier) String() string {
	return string(p)
}

// IsValid reports whether the value matches a known PackageTier.
func (p PackageTier) IsValid() bool {
	for _, candidate := range validPackageTiers {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePackageTier converts raw input into a PackageTier.
func ParsePackageTier(value string) (PackageTier, error) {
	for _, candidate := range validPackageTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid package tier %q", value)
}

// PackageTiers returns all known tiers in ascending price order.
func PackageTiers() []PackageTier {
	out := make([]PackageTier, len(validPackageTiers))
	copy(out, validPackageTiers)
	return out
}
