package normalize

// CardUID canonicalizes a card UID to its digit string. The result is the
// comparison key for uniqueness across members and replacement requests.
func CardUID(raw string) string {
	return digitsOnly(raw)
}
