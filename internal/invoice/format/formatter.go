package format

import (
	"fmt"
	"time"
)

const dayLayout = "02012006"

// DateKey returns the calendar-day key scoping the invoice sequence.
func DateKey(t time.Time) string {
	return t.UTC().Format(dayLayout)
}

// FormatInvoiceNumber formats a human-readable invoice number from the
// invoice issue time and the day-scoped monotonic sequence: DDMMYYYY-N.
//
// This function is PURE:
// - No side effects
// - No DB access
// - Fully deterministic
func FormatInvoiceNumber(issuedAt time.Time, seq int64) (string, error) {
	if seq <= 0 {
		return "", fmt.Errorf("invalid invoice sequence: %d", seq)
	}
	return fmt.Sprintf("%s-%d", DateKey(issuedAt), seq), nil
}
