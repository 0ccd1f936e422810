// pkg/coverage/brigade.go
package coverage

import (
	"github.com/tolimahealth/vaccination-ingress/pkg/age"
	"github.com/tolimahealth/vaccination-ingress/pkg/model"
	"github.com/tolimahealth/vaccination-ingress/pkg/normalize"
)

// SweepMetrics are the derived field-operation rates for one brigade sweep,
// all expressed as percentages. A zero denominator yields zero, never NaN.
type SweepMetrics struct {
	Effectiveness float64 `json:"tasa_efectividad"`
	Acceptance    float64 `json:"tasa_aceptacion"`
	Resistance    float64 `json:"tasa_resistencia"`
	PriorCoverage float64 `json:"cobertura_previa"`
	Efficiency    float64 `json:"eficiencia"`
}

// ComputeSweepMetrics derives operation rates from one sweep's counts:
// effectiveness over all visit outcomes, acceptance and resistance over the
// population found, prior coverage over the population found, and efficiency
// of this sweep over the population not already vaccinated.
func ComputeSweepMetrics(s *model.BrigadeSweep) SweepMetrics {
	return SweepMetrics{
		Effectiveness: safeRate(s.EffectiveVisits, s.EffectiveVisits+s.IneffectiveVisits+s.FailedVisits),
		Acceptance:    safeRate(s.VaccinatedThisSweep, s.Found),
		Resistance:    safeRate(s.RefusingHouseholds, s.Found),
		PriorCoverage: safeRate(s.PreviouslyVaccinated, s.Found),
		Efficiency:    safeRate(s.VaccinatedThisSweep, s.Found-s.PreviouslyVaccinated),
	}
}

func safeRate(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	return float64(num) / float64(den) * 100
}

// StageBucketTotal sums a sweep's age-bucket counts for one survey stage
// across the canonical buckets
func StageBucketTotal(s *model.BrigadeSweep, stage normalize.Stage) int {
	buckets := s.StageBuckets[int(stage)]
	total := 0
	for _, b := range age.Buckets {
		total += buckets[string(b)]
	}
	return total
}

// stageTotal returns the declared total column for a stage
func stageTotal(s *model.BrigadeSweep, stage normalize.Stage) int {
	switch stage {
	case normalize.StageFound:
		return s.Found
	case normalize.StagePrevVaccinated:
		return s.PreviouslyVaccinated
	case normalize.StageNotVaccinated:
		return s.NotVaccinated
	case normalize.StageSweepVaccinated:
		return s.VaccinatedThisSweep
	default:
		return 0
	}
}

// VerifyBucketTotals checks, per stage, that a sweep's age-bucket counts sum
// to its declared stage total. Mismatches are soft: the data is used as-is
// and the discrepancy goes into the quality report.
func VerifyBucketTotals(s *model.BrigadeSweep, rowID string, warnings *model.WarningSet) {
	for _, stage := range normalize.Stages {
		buckets := s.StageBuckets[int(stage)]
		if len(buckets) == 0 {
			continue
		}
		if got, want := StageBucketTotal(s, stage), stageTotal(s, stage); got != want {
			warnings.Add(model.NewWarning(model.WarningInvariantViolation, "barridos", stage.String(),
				"age bucket counts do not sum to the stage total").WithRow(rowID).WithValue(got))
		}
	}
}
