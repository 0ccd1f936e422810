// pkg/model/cleaning.go
package model

import (
	"time"
)

// CleaningOperation represents a single data cleaning operation
type CleaningOperation struct {
	SourceName        string      // Input source name (e.g. "historico", "barridos")
	FieldName         string      // Canonical field that was cleaned
	OriginalValue     interface{} // Original value (may be nil)
	NewValue          string      // New value after cleaning
	RowIdentifier     string      // ID that identifies the row (usually patient id)
	CleaningOperation string      // Type of cleaning performed (e.g., "sex_normalization")
	CleaningReason    string      // Reason for cleaning (e.g., "variant_encoding")
	CleanedAt         time.Time   // When the cleaning occurred (set by database)
}

// CleaningContext contains information needed for cleaning a value
type CleaningContext struct {
	SourceName    string
	FieldName     string
	RowIdentifier string
}
