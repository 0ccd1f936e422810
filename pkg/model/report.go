// pkg/model/report.go
package model

import (
	"fmt"
	"time"
)

// WarningCategory defines categories of non-fatal data-quality conditions
type WarningCategory int

const (
	WarningNone WarningCategory = iota
	WarningColumnNotFound
	WarningMalformedValue
	WarningInvariantViolation
)

// String returns a string representation of the warning category
func (wc WarningCategory) String() string {
	switch wc {
	case WarningNone:
		return "None"
	case WarningColumnNotFound:
		return "ColumnNotFound"
	case WarningMalformedValue:
		return "MalformedValue"
	case WarningInvariantViolation:
		return "InvariantViolation"
	default:
		return fmt.Sprintf("Unknown(%d)", wc)
	}
}

// Warning is a single accumulated non-fatal condition. Warnings never
// interrupt a batch run; they are collected and surfaced in the report.
type Warning struct {
	Category WarningCategory
	Source   string
	Field    string
	RowID    string
	Value    interface{}
	Message  string
}

// WithRow adds row information to the warning
func (w Warning) WithRow(rowID string) Warning {
	w.RowID = rowID
	return w
}

// WithValue adds the offending value to the warning
func (w Warning) WithValue(value interface{}) Warning {
	w.Value = value
	return w
}

// NewWarning creates a warning for the given category, source and field
func NewWarning(category WarningCategory, source, field, message string) Warning {
	return Warning{
		Category: category,
		Source:   source,
		Field:    field,
		Message:  message,
	}
}

// WarningSet accumulates warnings during a single pipeline run, keeping full
// counts per category and a bounded number of samples for reporting.
type WarningSet struct {
	counts     map[WarningCategory]int
	samples    map[WarningCategory][]Warning
	maxSamples int
}

// NewWarningSet creates an empty warning set
func NewWarningSet() *WarningSet {
	return &WarningSet{
		counts:     make(map[WarningCategory]int),
		samples:    make(map[WarningCategory][]Warning),
		maxSamples: 5,
	}
}

// Add records a warning occurrence
func (ws *WarningSet) Add(w Warning) {
	ws.counts[w.Category]++
	if len(ws.samples[w.Category]) < ws.maxSamples {
		ws.samples[w.Category] = append(ws.samples[w.Category], w)
	}
}

// Count returns the number of warnings recorded for a category
func (ws *WarningSet) Count(category WarningCategory) int {
	return ws.counts[category]
}

// Total returns the number of warnings across all categories
func (ws *WarningSet) Total() int {
	total := 0
	for _, count := range ws.counts {
		total += count
	}
	return total
}

// Samples returns up to maxSamples stored warnings for a category
func (ws *WarningSet) Samples(category WarningCategory) []Warning {
	out := make([]Warning, len(ws.samples[category]))
	copy(out, ws.samples[category])
	return out
}

// Summary returns per-category counts keyed by category name
func (ws *WarningSet) Summary() map[string]int {
	summary := make(map[string]int, len(ws.counts))
	for category, count := range ws.counts {
		summary[category.String()] = count
	}
	return summary
}

// AgeStats holds age-calculation counters for one batch run
type AgeStats struct {
	TotalProcessed  int `json:"total_processed"`
	Successful      int `json:"successful"`
	InvalidDates    int `json:"invalid_dates"`
	FutureDates     int `json:"future_dates"`
	UnrealisticAges int `json:"unrealistic_ages"`
}

// InsurerMergeStats reports how many raw insurer name variants were collapsed
// into each canonical name, and how many rows were rewritten in total.
type InsurerMergeStats struct {
	VariantsByCanonical map[string]int `json:"variants_by_canonical"`
	RowsAffected        int            `json:"rows_affected"`
}

// QualityReport is the structured per-run data-quality summary returned
// alongside successful results. It is plain data for the presentation layer,
// never formatted text.
type QualityReport struct {
	RunID         string            `json:"run_id"`
	ReferenceDate time.Time         `json:"reference_date"`
	Cutoff        *time.Time        `json:"cutoff,omitempty"`
	Warnings      map[string]int    `json:"warnings"`
	Age           AgeStats          `json:"age"`
	InsurerMerge  InsurerMergeStats `json:"insurer_merge"`

	IndividualRows      int `json:"individual_rows"`
	IndividualKept      int `json:"individual_kept"`
	IndividualDiscarded int `json:"individual_discarded"`
	BrigadeSweeps       int `json:"brigade_sweeps"`
	BrigadeExpanded     int `json:"brigade_expanded"`
	Deduplicated        int `json:"deduplicated"`
	CombinedRows        int `json:"combined_rows"`
}
