// pkg/coverage/calculator.go
package coverage

import (
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/tolimahealth/vaccination-ingress/pkg/model"
	"github.com/tolimahealth/vaccination-ingress/pkg/normalize"
)

var (
	errNilInsurers = errors.New("insurer normalizer cannot be nil")
	errNilWarnings = errors.New("warning set cannot be nil")
)

// DefaultTargetPct is the campaign goal applied when none is configured:
// vaccinate 80% of the population.
const DefaultTargetPct = 80.0

// Calculator joins vaccinated counts against population baselines to
// produce per-territory coverage metrics.
type Calculator struct {
	targetPct float64
	logger    *zap.Logger
}

// NewCalculator creates a coverage calculator. A non-positive target falls
// back to the default goal.
func NewCalculator(targetPct float64, logger *zap.Logger) (*Calculator, error) {
	if targetPct < 0 {
		return nil, errors.New("target percentage cannot be negative")
	}
	if targetPct == 0 {
		targetPct = DefaultTargetPct
	}
	if logger == nil {
		logger = zap.L().Named("coverage")
	}
	return &Calculator{targetPct: targetPct, logger: logger}, nil
}

// Compute joins vaccinated counts (keyed by municipality as it appears on
// timeline rows) against one population baseline. Both sides pass through
// the same municipality-key normalization; raw string equality would miss
// most matches since the sources are independently produced. Territories
// with vaccinated people but no population row get a zero-population metric
// so the gap stays visible. Coverage above 100 is reported, not clipped.
func (c *Calculator) Compute(
	vaccinated map[string]int,
	population []model.PopulationRecord,
	source model.PopulationSource,
) []model.CoverageMetric {
	type territory struct {
		display    string
		population int
		vaccinated int
	}
	territories := make(map[string]*territory)

	for i := range population {
		rec := &population[i]
		if rec.Source != source {
			continue
		}
		key := normalize.MunicipalityKey(rec.MunicipalityName)
		if key == "" {
			continue
		}
		t, ok := territories[key]
		if !ok {
			t = &territory{display: normalize.NormalizeMunicipality(rec.MunicipalityName)}
			territories[key] = t
		}
		t.population += rec.Total
	}

	for rawName, count := range vaccinated {
		key := normalize.MunicipalityKey(rawName)
		if key == "" {
			continue
		}
		t, ok := territories[key]
		if !ok {
			t = &territory{display: normalize.NormalizeMunicipality(rawName)}
			territories[key] = t
		}
		t.vaccinated += count
	}

	metrics := make([]model.CoverageMetric, 0, len(territories))
	for _, t := range territories {
		metrics = append(metrics, c.metricFor(t.display, t.population, t.vaccinated, source))
	}
	sort.Slice(metrics, func(i, j int) bool { return metrics[i].Territory < metrics[j].Territory })

	c.logger.Info("Computed coverage metrics",
		zap.String("baseline", string(source)),
		zap.Int("territories", len(metrics)))
	return metrics
}

func (c *Calculator) metricFor(territory string, population, vaccinated int, source model.PopulationSource) model.CoverageMetric {
	m := model.CoverageMetric{
		Territory:       territory,
		Source:          source,
		PopulationTotal: population,
		VaccinatedTotal: vaccinated,
		GoalPct:         c.targetPct,
	}

	if population > 0 {
		m.CoveragePct = float64(vaccinated) / float64(population) * 100

		goal := float64(population) * c.targetPct / 100
		if goal > 0 {
			m.GoalProgressPct = float64(vaccinated) / goal * 100
		}
	}
	if pending := population - vaccinated; pending > 0 {
		m.Pending = pending
	}

	m.Status = classifyProgress(m.GoalProgressPct)
	return m
}

func classifyProgress(progressPct float64) model.CoverageStatus {
	switch {
	case progressPct >= 100:
		return model.StatusCompleted
	case progressPct >= 80:
		return model.StatusHigh
	case progressPct >= 50:
		return model.StatusMedium
	default:
		return model.StatusLow
	}
}
