package coverage

import (
	"testing"

	"github.com/tolimahealth/vaccination-ingress/pkg/model"
	"github.com/tolimahealth/vaccination-ingress/pkg/normalize"
)

func TestComputeSweepMetrics(t *testing.T) {
	sweep := &model.BrigadeSweep{
		EffectiveVisits:      80,
		IneffectiveVisits:    15,
		FailedVisits:         5,
		RefusingHouseholds:   10,
		Found:                200,
		PreviouslyVaccinated: 120,
		NotVaccinated:        30,
		VaccinatedThisSweep:  50,
	}

	m := ComputeSweepMetrics(sweep)
	if !floatEqual(m.Effectiveness, 80.0) {
		t.Fatalf("effectiveness = %v, want 80", m.Effectiveness)
	}
	if !floatEqual(m.Acceptance, 25.0) {
		t.Fatalf("acceptance = %v, want 25", m.Acceptance)
	}
	if !floatEqual(m.Resistance, 5.0) {
		t.Fatalf("resistance = %v, want 5", m.Resistance)
	}
	if !floatEqual(m.PriorCoverage, 60.0) {
		t.Fatalf("prior coverage = %v, want 60", m.PriorCoverage)
	}
	// 50 vaccinated of the 80 not previously vaccinated
	if !floatEqual(m.Efficiency, 62.5) {
		t.Fatalf("efficiency = %v, want 62.5", m.Efficiency)
	}
}

func TestComputeSweepMetricsZeroDenominators(t *testing.T) {
	m := ComputeSweepMetrics(&model.BrigadeSweep{})
	if m.Effectiveness != 0 || m.Acceptance != 0 || m.Resistance != 0 ||
		m.PriorCoverage != 0 || m.Efficiency != 0 {
		t.Fatalf("expected all-zero rates for empty sweep, got %+v", m)
	}

	// Everyone found was already vaccinated: efficiency denominator is zero
	m = ComputeSweepMetrics(&model.BrigadeSweep{Found: 10, PreviouslyVaccinated: 10})
	if m.Efficiency != 0 {
		t.Fatalf("efficiency = %v, want 0 for exhausted denominator", m.Efficiency)
	}
}

func TestStageBucketTotal(t *testing.T) {
	sweep := &model.BrigadeSweep{
		StageBuckets: map[int]map[string]int{
			1: {"<1": 2, "1-5": 10, "60+": 3},
			4: {"1-5": 4},
		},
	}
	if got := StageBucketTotal(sweep, normalize.StageFound); got != 15 {
		t.Fatalf("stage 1 total = %d, want 15", got)
	}
	if got := StageBucketTotal(sweep, normalize.StageSweepVaccinated); got != 4 {
		t.Fatalf("stage 4 total = %d, want 4", got)
	}
	if got := StageBucketTotal(sweep, normalize.StagePrevVaccinated); got != 0 {
		t.Fatalf("stage 2 total = %d, want 0", got)
	}
}

func TestVerifyBucketTotals(t *testing.T) {
	warnings := model.NewWarningSet()
	sweep := &model.BrigadeSweep{
		Found:               15,
		VaccinatedThisSweep: 5,
		StageBuckets: map[int]map[string]int{
			1: {"<1": 2, "1-5": 10, "60+": 3},
			4: {"1-5": 4},
		},
	}

	VerifyBucketTotals(sweep, "barridos#0", warnings)
	// Stage 1 sums correctly, stage 4 is short by one
	if got := warnings.Count(model.WarningInvariantViolation); got != 1 {
		t.Fatalf("invariant warnings = %d, want 1", got)
	}

	samples := warnings.Samples(model.WarningInvariantViolation)
	if len(samples) != 1 || samples[0].Field != "TPVB" {
		t.Fatalf("unexpected warning sample: %+v", samples)
	}
}

func TestVerifyBucketTotalsSkipsStagesWithoutBuckets(t *testing.T) {
	warnings := model.NewWarningSet()
	sweep := &model.BrigadeSweep{Found: 100}

	VerifyBucketTotals(sweep, "barridos#0", warnings)
	if warnings.Total() != 0 {
		t.Fatalf("expected no warnings when no bucket columns exist, got %d", warnings.Total())
	}
}
