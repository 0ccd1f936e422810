// pkg/frame/values.go
package frame

import (
	"strconv"
	"strings"
	"time"
)

// Null-equivalent tokens seen across the spreadsheet sources. Comparison is
// case-sensitive against this list after trimming, matching how the source
// systems export missing values.
var nullTokens = map[string]struct{}{
	"":         {},
	"nan":      {},
	"NaN":      {},
	"NAN":      {},
	"null":     {},
	"NULL":     {},
	"None":     {},
	"NONE":     {},
	"none":     {},
	"na":       {},
	"NA":       {},
	"N/A":      {},
	"#N/A":     {},
	"Sin dato": {},
	"SIN DATO": {},
	"sin dato": {},
}

// IsNull reports whether a raw cell encodes a missing value
func IsNull(s string) bool {
	_, ok := nullTokens[strings.TrimSpace(s)]
	return ok
}

// ParseInt attempts to interpret a raw cell as an integer. Numeric cells
// exported as floats ("12.0") are accepted when the fraction is zero.
func ParseInt(s string) (int, bool) {
	cleaned := strings.TrimSpace(s)
	if IsNull(cleaned) {
		return 0, false
	}
	// Spreadsheets export thousands separators on count columns
	cleaned = strings.ReplaceAll(cleaned, ",", "")

	if v, err := strconv.Atoi(cleaned); err == nil {
		return v, true
	}
	if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
		if f == float64(int(f)) {
			return int(f), true
		}
	}
	return 0, false
}

// ParseFloat attempts to interpret a raw cell as a float
func ParseFloat(s string) (float64, bool) {
	cleaned := strings.TrimSpace(s)
	if IsNull(cleaned) {
		return 0, false
	}
	cleaned = strings.ReplaceAll(cleaned, ",", "")

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Date layouts seen across the sources, tried in order. Day-first layouts come
// before month-first because the sources are Colombian exports.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"2006/01/02",
	"2/1/2006",
	"02/01/2006 15:04:05",
}

// ParseDate attempts to interpret a raw cell as a calendar date, truncated to
// day precision
func ParseDate(s string) (time.Time, bool) {
	cleaned := strings.TrimSpace(s)
	if IsNull(cleaned) {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
