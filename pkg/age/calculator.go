// pkg/age/calculator.go
package age

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/tolimahealth/vaccination-ingress/pkg/model"
)

// Flag classifies the outcome of one age computation
type Flag int

const (
	FlagOK Flag = iota
	FlagMissing
	FlagFuture
	FlagUnrealistic
)

// Ages above this are kept but flagged for the quality report. Real exports
// occasionally carry such values and dropping the rows would skew totals.
const unrealisticAge = 120

// Calculator computes whole-year ages against a fixed reference date and
// accumulates run statistics for the data-quality summary. Not safe for
// concurrent use; each batch run gets its own calculator or calls Reset.
type Calculator struct {
	reference time.Time
	logger    *zap.Logger
	stats     model.AgeStats
}

// NewCalculator creates a calculator for the given reference date. The
// reference is injected rather than read from the clock so a run is
// reproducible and every field derived from it has a single meaning:
// current age as of that date.
func NewCalculator(reference time.Time, logger *zap.Logger) (*Calculator, error) {
	if reference.IsZero() {
		return nil, errors.New("reference date cannot be zero")
	}
	if logger == nil {
		logger = zap.L().Named("age")
	}
	return &Calculator{reference: reference, logger: logger}, nil
}

// Reference returns the reference date ages are computed against
func (c *Calculator) Reference() time.Time {
	return c.reference
}

// Compute returns the whole-year age for a birth date, nil when the birth
// date is missing or lies after the reference date. Ages above the
// plausibility limit are returned anyway and flagged.
func (c *Calculator) Compute(birth *time.Time) (*int, Flag) {
	c.stats.TotalProcessed++

	if birth == nil || birth.IsZero() {
		c.stats.InvalidDates++
		return nil, FlagMissing
	}

	if birth.After(c.reference) {
		c.stats.FutureDates++
		return nil, FlagFuture
	}

	years := c.reference.Year() - birth.Year()
	refMonth, refDay := c.reference.Month(), c.reference.Day()
	birthMonth, birthDay := birth.Month(), birth.Day()
	if refMonth < birthMonth || (refMonth == birthMonth && refDay < birthDay) {
		years--
	}

	c.stats.Successful++
	if years > unrealisticAge {
		c.stats.UnrealisticAges++
		c.logger.Debug("Unrealistic age computed",
			zap.Time("birthDate", *birth),
			zap.Int("age", years))
		return &years, FlagUnrealistic
	}
	return &years, FlagOK
}

// Bucket computes the age for a birth date and classifies it in one step
func (c *Calculator) Bucket(birth *time.Time) (*int, Bucket) {
	years, _ := c.Compute(birth)
	return years, ClassifyPtr(years)
}

// Stats returns the counters accumulated since construction or the last Reset
func (c *Calculator) Stats() model.AgeStats {
	return c.stats
}

// Reset clears accumulated counters for a new batch run
func (c *Calculator) Reset() {
	c.stats = model.AgeStats{}
}
