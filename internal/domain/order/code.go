package order

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"time"
)

// codePattern matches the AUD-DDMMYY-XXXX order code format.
var codePattern = regexp.MustCompile(`^AUD-\d{6}-\d{4}$`)

// NewCode generates an order code in the AUD-DDMMYY-XXXX format: a
// date-derived prefix plus a random 4-digit suffix (1000-9999).
//
// Codes are not collision-checked against the store, so two checkouts on the
// same day can draw the same suffix.
func NewCode(now time.Time) string {
	return CodeAt(now, 1000+rand.IntN(9000))
}

// CodeAt builds the order code for the given date and suffix. Split out from
// NewCode so the format is testable without randomness.
func CodeAt(now time.Time, suffix int) string {
	return fmt.Sprintf("AUD-%02d%02d%02d-%04d",
		now.Day(), int(now.Month()), now.Year()%100, suffix)
}

// ValidCode reports whether s looks like an order code. Used by the lookup
// view to reject garbage before it reaches the store.
func ValidCode(s string) bool {
	return codePattern.MatchString(s)
}
