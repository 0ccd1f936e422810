// pkg/combine/combiner.go
package combine

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tolimahealth/vaccination-ingress/pkg/age"
	"github.com/tolimahealth/vaccination-ingress/pkg/frame"
	"github.com/tolimahealth/vaccination-ingress/pkg/model"
	"github.com/tolimahealth/vaccination-ingress/pkg/normalize"
)

// ErrMissingSource indicates both input sources are absent. One missing
// source degrades to a single-source timeline; two is fatal.
var ErrMissingSource = errors.New("no data to combine: both individual and sweep sources are missing")

// Phase identifies a stage of timeline construction
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseSplitting
	PhaseStandardizing
	PhaseMerging
	PhaseDone
)

// String returns a string representation of the phase
func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "LOADING"
	case PhaseSplitting:
		return "SPLITTING"
	case PhaseStandardizing:
		return "STANDARDIZING"
	case PhaseMerging:
		return "MERGING"
	case PhaseDone:
		return "DONE"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}

// OperationRecorder receives audit records for values rewritten while loading
type OperationRecorder interface {
	Record(op model.CleaningOperation)
}

// Combiner builds the unified timeline from the individual and brigade
// sources. Construction is fail-fast: a fatal condition in an early phase
// aborts the whole build, there is no partial output. One combiner serves
// one batch run.
type Combiner struct {
	columns  *normalize.ColumnNormalizer
	insurers *normalize.EAPBNormalizer
	ages     *age.Calculator
	cutoff   *CutoffResolver
	recorder OperationRecorder
	warnings *model.WarningSet
	logger   *zap.Logger

	phase  Phase
	sweeps []model.BrigadeSweep
}

// NewCombiner creates a combiner. The recorder may be nil when no audit
// trail is wanted.
func NewCombiner(
	columns *normalize.ColumnNormalizer,
	insurers *normalize.EAPBNormalizer,
	ages *age.Calculator,
	recorder OperationRecorder,
	warnings *model.WarningSet,
	logger *zap.Logger,
) (*Combiner, error) {
	if columns == nil {
		return nil, errors.New("column normalizer cannot be nil")
	}
	if insurers == nil {
		return nil, errors.New("insurer normalizer cannot be nil")
	}
	if ages == nil {
		return nil, errors.New("age calculator cannot be nil")
	}
	if warnings == nil {
		return nil, errors.New("warning set cannot be nil")
	}
	if logger == nil {
		logger = zap.L().Named("combiner")
	}

	return &Combiner{
		columns:  columns,
		insurers: insurers,
		ages:     ages,
		cutoff:   NewCutoffResolver(logger.Named("cutoff")),
		recorder: recorder,
		warnings: warnings,
		logger:   logger,
		phase:    PhaseLoading,
	}, nil
}

// Phase returns the construction phase the combiner last entered
func (c *Combiner) Phase() Phase {
	return c.phase
}

// Sweeps returns the parsed brigade sweeps from the last Combine call, for
// consumers that work on the aggregates themselves (derived sweep metrics,
// bucket total verification).
func (c *Combiner) Sweeps() []model.BrigadeSweep {
	return c.sweeps
}

// Combine builds the combined timeline. Either frame may be nil: the build
// degrades to a single-source timeline with a logged warning. Both nil is
// ErrMissingSource; an unresolvable cutoff on a present sweep source is
// ErrUnresolvableCutoff. The partition around the cutoff is a hard contract:
// individual rows on or after the cutoff are discarded, never double counted
// against the sweep aggregates covering the same window.
func (c *Combiner) Combine(individuals, sweeps *frame.Frame) (*model.CombinedTimeline, error) {
	c.phase = PhaseLoading
	if individuals == nil && sweeps == nil {
		return nil, c.fail(ErrMissingSource)
	}
	if individuals == nil {
		c.logger.Warn("Individual source missing, building sweep-only timeline")
	}
	if sweeps == nil {
		c.logger.Warn("Sweep source missing, building individual-only timeline")
	}

	var individualRecords []model.VaccinationRecord
	if individuals != nil {
		individualRecords = c.loadIndividuals(individuals)
	}
	var sweepRecords []model.BrigadeSweep
	if sweeps != nil {
		sweepRecords = c.loadSweeps(sweeps)
	}
	c.sweeps = sweepRecords

	c.phase = PhaseSplitting
	timeline := &model.CombinedTimeline{}

	if sweeps != nil {
		cutoff, err := c.cutoff.Resolve(sweeps)
		if err != nil {
			return nil, c.fail(err)
		}
		timeline.Cutoff = cutoff
	}

	keptIndividuals := make([]model.VaccinationRecord, 0, len(individualRecords))
	for i := range individualRecords {
		rec := &individualRecords[i]
		if rec.VaccinationDate == nil {
			// Unattributable to either period
			timeline.IndividualDiscarded++
			continue
		}
		if sweeps != nil && !rec.VaccinationDate.Before(timeline.Cutoff) {
			// Window covered by sweep aggregates
			timeline.IndividualDiscarded++
			continue
		}
		keptIndividuals = append(keptIndividuals, *rec)
	}
	timeline.IndividualKept = len(keptIndividuals)

	keptSweeps := make([]model.BrigadeSweep, 0, len(sweepRecords))
	for i := range sweepRecords {
		sweep := &sweepRecords[i]
		if sweep.SweepDate == nil || sweep.SweepDate.Before(timeline.Cutoff) {
			continue
		}
		keptSweeps = append(keptSweeps, *sweep)
	}

	c.phase = PhaseStandardizing
	for i := range keptIndividuals {
		timeline.Records = append(timeline.Records, standardizeIndividual(&keptIndividuals[i]))
	}
	for i := range keptSweeps {
		expanded := expandSweep(&keptSweeps[i])
		timeline.BrigadeExpanded += len(expanded)
		timeline.Records = append(timeline.Records, expanded...)
	}

	c.phase = PhaseMerging
	timeline.Records, timeline.Deduplicated = deduplicate(timeline.Records)

	c.phase = PhaseDone
	c.logger.Info("Built combined timeline",
		zap.Time("cutoff", timeline.Cutoff),
		zap.Int("individualKept", timeline.IndividualKept),
		zap.Int("individualDiscarded", timeline.IndividualDiscarded),
		zap.Int("brigadeExpanded", timeline.BrigadeExpanded),
		zap.Int("deduplicated", timeline.Deduplicated),
		zap.Int("rows", len(timeline.Records)))
	return timeline, nil
}

func (c *Combiner) fail(err error) error {
	return fmt.Errorf("timeline construction failed in phase %s: %w", c.phase, err)
}

// standardizeIndividual maps an individual record to the unified row schema
func standardizeIndividual(rec *model.VaccinationRecord) model.CombinedRecord {
	return model.CombinedRecord{
		PatientID:       rec.PatientID,
		Sex:             rec.Sex,
		AgeYears:        rec.AgeYears,
		AgeBucket:       rec.AgeBucket,
		Municipality:    rec.Municipality,
		EthnicGroup:     rec.EthnicGroup,
		Regime:          rec.Regime,
		Insurer:         rec.Insurer,
		VaccinationDate: *rec.VaccinationDate,
		Period:          model.PeriodPreEmergency,
		RecordType:      model.RecordTypeIndividual,
	}
}

// expandSweep turns one aggregate sweep into synthetic per-person rows, one
// per individual vaccinated during the sweep. Demographics are unknown at
// the person level, so sex and age carry the sentinel. The expansion count
// equals the aggregate exactly: counts are integers, nothing rounds.
func expandSweep(sweep *model.BrigadeSweep) []model.CombinedRecord {
	if sweep.VaccinatedThisSweep <= 0 {
		return nil
	}

	records := make([]model.CombinedRecord, 0, sweep.VaccinatedThisSweep)
	for i := 0; i < sweep.VaccinatedThisSweep; i++ {
		records = append(records, model.CombinedRecord{
			PatientID:       "BRIGADA_" + uuid.NewString(),
			Sex:             normalize.SinDato,
			AgeBucket:       string(age.BucketUnknown),
			Municipality:    sweep.Municipality,
			Village:         sweep.Village,
			EthnicGroup:     normalize.SinDato,
			Regime:          normalize.SinDato,
			Insurer:         normalize.SinDato,
			VaccinationDate: *sweep.SweepDate,
			Period:          model.PeriodEmergency,
			RecordType:      model.RecordTypeBrigade,
		})
	}
	return records
}

// deduplicate drops rows whose patient id was already seen, keeping the
// first occurrence. Rows without an id are never deduplicated against each
// other.
func deduplicate(records []model.CombinedRecord) ([]model.CombinedRecord, int) {
	seen := make(map[string]struct{}, len(records))
	out := records[:0]
	dropped := 0
	for i := range records {
		id := records[i].PatientID
		if id != "" {
			if _, dup := seen[id]; dup {
				dropped++
				continue
			}
			seen[id] = struct{}{}
		}
		out = append(out, records[i])
	}
	return out, dropped
}
