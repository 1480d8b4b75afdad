package pagination

import (
	"encoding/base64"
	"fmt"
	"time"
)

const dayFormat = "2006-01-02"

// EncodeDayToken creates an opaque token pointing after the given calendar day.
// Rate history pages are keyed by day because there is one rate per currency per day.
func EncodeDayToken(day time.Time) string {
	return base64.URLEncoding.EncodeToString([]byte(day.UTC().Format(dayFormat)))
}

// DecodeDayToken parses a token produced by EncodeDayToken.
func DecodeDayToken(token string) (time.Time, error) {
	decodedBytes, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}

	day, err := time.Parse(dayFormat, string(decodedBytes))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid pagination token format (date parse): %w", err)
	}

	return day, nil
}

// ClampLimit bounds a requested page size to [1, max], using def when requested <= 0.
func ClampLimit(requested, def, max int) int {
	if requested <= 0 {
		return def
	}
	if requested > max {
		return max
	}
	return requested
}
