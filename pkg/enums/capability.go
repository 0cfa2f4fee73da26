package enums

import "fmt"

// Capability names a single guarded operation in the permission matrix.
type Capability string

const (
	CapScanPerform         Capability = "scan.perform"
	CapMembersManage       Capability = "members.manage"
	CapPeriodsExtend       Capability = "periods.extend"
	CapReplacementsRequest Capability = "replacements.request"
	CapReplacementsDecide  Capability = "replacements.decide"
	CapReportsView         Capability = "reports.view"
	CapRolesManage         Capability = "roles.manage"
)

var validCapabilities = []Capability{
	CapScanPerform,
	CapMembersManage,
	CapPeriodsExtend,
	CapReplacementsRequest,
	CapReplacementsDecide,
	CapReportsView,
	CapRolesManage,
}

// String implements fmt.Stringer.
func (c Capability) String() string {
	return string(c)
}

// IsValid reports whether the value matches a known Capability.
func (c Capability) IsValid() bool {
	for _, candidate := range validCapabilities {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCapability converts raw input into a Capability.
func ParseCapability(value string) (Capability, error) {
	for _, candidate := range validCapabilities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid capability %q", value)
}

// Capabilities returns every known capability.
func Capabilities() []Capability {
	out := make([]Capability, len(validCapabilities))
	copy(out, validCapabilities)
	return out
}
