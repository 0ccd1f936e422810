// pkg/pipeline/pipeline.go
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tolimahealth/vaccination-ingress/pkg/age"
	"github.com/tolimahealth/vaccination-ingress/pkg/audit"
	"github.com/tolimahealth/vaccination-ingress/pkg/combine"
	"github.com/tolimahealth/vaccination-ingress/pkg/config"
	"github.com/tolimahealth/vaccination-ingress/pkg/coverage"
	"github.com/tolimahealth/vaccination-ingress/pkg/frame"
	"github.com/tolimahealth/vaccination-ingress/pkg/model"
	"github.com/tolimahealth/vaccination-ingress/pkg/normalize"
)

// Result is the immutable output of one pipeline run: everything the
// presentation layer consumes. Results are only published once the full run
// completes; a failed run yields no partial result.
type Result struct {
	Timeline *model.CombinedTimeline `json:"-"`
	Coverage []model.CoverageMetric  `json:"coverage"`
	Sweeps   []coverage.SweepMetrics `json:"sweep_metrics"`
	Report   *model.QualityReport    `json:"report"`
}

// Pipeline orchestrates one batch run: load sources, clean and combine,
// compute coverage, assemble the quality report. Each run builds fresh
// component instances; nothing is shared between runs except the cache,
// which is only written once per content key.
type Pipeline struct {
	cfg      *config.Config
	recorder *audit.Recorder
	cache    *Cache
	logger   *zap.Logger
}

// New creates a pipeline. The recorder may be nil to skip the audit trail;
// the cache may be nil to recompute every run.
func New(cfg *config.Config, recorder *audit.Recorder, cache *Cache, logger *zap.Logger) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.L().Named("pipeline")
	}
	return &Pipeline{cfg: cfg, recorder: recorder, cache: cache, logger: logger}, nil
}

// Run executes one batch run. Cancellation is best-effort: the context is
// checked between stages and the run is abandoned without publishing
// anything.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	metrics := NewRunMetrics(p.logger)

	key, err := p.contentKey()
	if err != nil {
		return nil, err
	}
	if p.cache != nil {
		if cached, ok := p.cache.Get(key); ok {
			metrics.RecordCacheHit(true)
			p.logger.Info("Serving cached result", zap.String("key", key[:12]))
			return cached, nil
		}
		metrics.RecordCacheHit(false)
	}

	warnings := model.NewWarningSet()

	individual, err := p.loadSource(metrics, p.cfg.IndividualPath, "")
	if err != nil {
		return nil, err
	}
	brigade, err := p.loadSource(metrics, p.cfg.BrigadePath, p.cfg.BrigadeSheet)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ages, err := age.NewCalculator(p.cfg.ReferenceDate, p.logger.Named("age"))
	if err != nil {
		return nil, err
	}
	insurers := normalize.NewEAPBNormalizer(p.logger.Named("eapb"))

	var recorder combine.OperationRecorder
	if p.recorder != nil {
		recorder = p.recorder
	}
	combiner, err := combine.NewCombiner(
		normalize.NewColumnNormalizer(), insurers, ages, recorder, warnings, p.logger.Named("combiner"))
	if err != nil {
		return nil, err
	}

	timeline, err := combiner.Combine(individual, brigade)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sweeps := combiner.Sweeps()
	sweepMetrics := make([]coverage.SweepMetrics, 0, len(sweeps))
	for i := range sweeps {
		rowID := "barridos#" + strconv.Itoa(i)
		coverage.VerifyBucketTotals(&sweeps[i], rowID, warnings)
		sweepMetrics = append(sweepMetrics, coverage.ComputeSweepMetrics(&sweeps[i]))
	}

	population, err := p.loadPopulation(metrics, insurers, warnings)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	calculator, err := coverage.NewCalculator(p.cfg.TargetPct, p.logger.Named("coverage"))
	if err != nil {
		return nil, err
	}
	vaccinated := timeline.VaccinatedByMunicipality()
	var allMetrics []model.CoverageMetric
	for _, source := range []model.PopulationSource{model.PopulationSourceDANE, model.PopulationSourceSISBEN} {
		if !hasSource(population, source) {
			continue
		}
		allMetrics = append(allMetrics, calculator.Compute(vaccinated, population, source)...)
	}

	report := p.buildReport(timeline, ages.Stats(), insurers, warnings, len(sweeps))

	cleaningOps := 0
	if p.recorder != nil {
		cleaningOps = p.recorder.Count()
		if err := p.recorder.Flush(ctx); err != nil {
			return nil, fmt.Errorf("failed to persist audit trail: %w", err)
		}
	}
	metrics.Complete(len(timeline.Records), len(allMetrics), cleaningOps, warnings.Total())

	result := &Result{
		Timeline: timeline,
		Coverage: allMetrics,
		Sweeps:   sweepMetrics,
		Report:   report,
	}
	if p.cache != nil {
		p.cache.Put(key, result)
	}
	return result, nil
}

func (p *Pipeline) buildReport(
	timeline *model.CombinedTimeline,
	ageStats model.AgeStats,
	insurers *normalize.EAPBNormalizer,
	warnings *model.WarningSet,
	sweepCount int,
) *model.QualityReport {
	report := &model.QualityReport{
		RunID:         uuid.NewString(),
		ReferenceDate: p.cfg.ReferenceDate,
		Warnings:      warnings.Summary(),
		Age:           ageStats,
		InsurerMerge:  insurers.Stats(),

		IndividualRows:      timeline.IndividualKept + timeline.IndividualDiscarded,
		IndividualKept:      timeline.IndividualKept,
		IndividualDiscarded: timeline.IndividualDiscarded,
		BrigadeSweeps:       sweepCount,
		BrigadeExpanded:     timeline.BrigadeExpanded,
		Deduplicated:        timeline.Deduplicated,
		CombinedRows:        len(timeline.Records),
	}
	if !timeline.Cutoff.IsZero() {
		cutoff := timeline.Cutoff
		report.Cutoff = &cutoff
	}
	return report
}

// loadSource reads one input file into a frame, dispatching on extension.
// An empty path is an absent source and loads as nil.
func (p *Pipeline) loadSource(metrics *RunMetrics, path, sheet string) (*frame.Frame, error) {
	if path == "" {
		return nil, nil
	}

	metrics.StartSource(path)
	var f *frame.Frame
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		f, err = frame.ReadXLSX(path, sheet)
	default:
		f, err = frame.ReadCSVFile(path)
	}
	if err != nil {
		return nil, err
	}
	metrics.EndSource(path, f.Len())
	return f, nil
}

func (p *Pipeline) loadPopulation(
	metrics *RunMetrics,
	insurers *normalize.EAPBNormalizer,
	warnings *model.WarningSet,
) ([]model.PopulationRecord, error) {
	processor, err := coverage.NewPopulationProcessor(insurers, warnings, p.logger.Named("population"))
	if err != nil {
		return nil, err
	}

	var records []model.PopulationRecord
	registries := []struct {
		path   string
		source model.PopulationSource
	}{
		{p.cfg.PopulationDANEPath, model.PopulationSourceDANE},
		{p.cfg.PopulationSISBENPath, model.PopulationSourceSISBEN},
	}
	for _, registry := range registries {
		if registry.path == "" {
			continue
		}
		f, err := p.loadSource(metrics, registry.path, p.cfg.PopulationSheet)
		if err != nil {
			return nil, err
		}
		records = append(records, processor.Process(f, registry.source)...)
	}
	return records, nil
}

// contentKey hashes the bytes of every configured input file
func (p *Pipeline) contentKey() (string, error) {
	paths := []string{
		p.cfg.IndividualPath,
		p.cfg.BrigadePath,
		p.cfg.PopulationDANEPath,
		p.cfg.PopulationSISBENPath,
	}
	var contents [][]byte
	for _, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}
		contents = append(contents, data)
	}
	return Key(contents...), nil
}

func hasSource(records []model.PopulationRecord, source model.PopulationSource) bool {
	for i := range records {
		if records[i].Source == source {
			return true
		}
	}
	return false
}
