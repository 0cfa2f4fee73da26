package normalize

import "strings"

const countryCode = "62"

// Phone canonicalizes a phone number to the local "0"-prefixed form used for
// uniqueness checks and lookups: digits only, country code 62 stripped,
// leading zeros collapsed into a single "0" prefix.
func Phone(raw string) string {
	digits := digitsOnly(raw)
	digits = strings.TrimPrefix(digits, countryCode)
	digits = strings.TrimLeft(digits, "0")
	return "0" + digits
}

// PhoneVariants returns the equivalent representations of a canonical phone
// number (local, country-code-prefixed, and bare) so searches match records
// stored in any of the three forms.
func PhoneVariants(canonical string) []string {
	bare := strings.TrimPrefix(canonical, "0")
	return []string{canonical, countryCode + bare, bare}
}

func digitsOnly(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
