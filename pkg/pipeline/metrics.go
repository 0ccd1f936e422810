// pkg/pipeline/metrics.go
package pipeline

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SourceMetrics tracks loading metrics for one input source
type SourceMetrics struct {
	SourceName string
	StartTime  time.Time
	EndTime    time.Time
	RowsRead   int
}

// Duration returns how long the source took to load
func (sm *SourceMetrics) Duration() time.Duration {
	if sm.EndTime.IsZero() {
		return time.Since(sm.StartTime)
	}
	return sm.EndTime.Sub(sm.StartTime)
}

// RunMetrics tracks metrics for one pipeline run. The lock keeps the
// collector safe when the pipeline is reused across sessions.
type RunMetrics struct {
	mu            sync.Mutex
	logger        *zap.Logger
	StartTime     time.Time
	EndTime       time.Time
	SourceMetrics map[string]*SourceMetrics
	CombinedRows  int
	Metrics       int
	CleaningOps   int
	Warnings      int
	CacheHits     int
	CacheMisses   int
}

// NewRunMetrics creates a new metrics collector
func NewRunMetrics(logger *zap.Logger) *RunMetrics {
	return &RunMetrics{
		StartTime:     time.Now(),
		SourceMetrics: make(map[string]*SourceMetrics),
		logger:        logger,
	}
}

// StartSource begins tracking one input source
func (rm *RunMetrics) StartSource(name string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.SourceMetrics[name] = &SourceMetrics{SourceName: name, StartTime: time.Now()}
}

// EndSource completes tracking one input source
func (rm *RunMetrics) EndSource(name string, rows int) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	sm, ok := rm.SourceMetrics[name]
	if !ok {
		return
	}
	sm.EndTime = time.Now()
	sm.RowsRead = rows

	if rm.logger != nil {
		rm.logger.Info("Loaded source",
			zap.String("source", name),
			zap.Int("rows", rows),
			zap.Duration("duration", sm.Duration()))
	}
}

// RecordCacheHit counts a cache hit or miss
func (rm *RunMetrics) RecordCacheHit(hit bool) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if hit {
		rm.CacheHits++
	} else {
		rm.CacheMisses++
	}
}

// Complete marks the run as finished and records final counters
func (rm *RunMetrics) Complete(combinedRows, metrics, cleaningOps, warnings int) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.EndTime = time.Now()
	rm.CombinedRows = combinedRows
	rm.Metrics = metrics
	rm.CleaningOps = cleaningOps
	rm.Warnings = warnings

	if rm.logger != nil {
		rm.logger.Info("Pipeline run completed",
			zap.Duration("duration", rm.Duration()),
			zap.Int("combinedRows", combinedRows),
			zap.Int("coverageMetrics", metrics),
			zap.Int("cleaningOps", cleaningOps),
			zap.Int("warnings", warnings))
	}
}

// Duration returns the total duration of the run
func (rm *RunMetrics) Duration() time.Duration {
	if rm.EndTime.IsZero() {
		return time.Since(rm.StartTime)
	}
	return rm.EndTime.Sub(rm.StartTime)
}

// ToJSON serializes run metrics to JSON
func (rm *RunMetrics) ToJSON() ([]byte, error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	sources := make(map[string]int, len(rm.SourceMetrics))
	for name, sm := range rm.SourceMetrics {
		sources[name] = sm.RowsRead
	}

	return json.Marshal(struct {
		Duration     string         `json:"duration"`
		Sources      map[string]int `json:"sources"`
		CombinedRows int            `json:"combinedRows"`
		Metrics      int            `json:"coverageMetrics"`
		CleaningOps  int            `json:"cleaningOps"`
		Warnings     int            `json:"warnings"`
		CacheHits    int            `json:"cacheHits"`
		CacheMisses  int            `json:"cacheMisses"`
	}{
		Duration:     fmt.Sprintf("%.2fs", rm.Duration().Seconds()),
		Sources:      sources,
		CombinedRows: rm.CombinedRows,
		Metrics:      rm.Metrics,
		CleaningOps:  rm.CleaningOps,
		Warnings:     rm.Warnings,
		CacheHits:    rm.CacheHits,
		CacheMisses:  rm.CacheMisses,
	})
}
