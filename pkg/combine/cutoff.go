// pkg/combine/cutoff.go
package combine

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tolimahealth/vaccination-ingress/pkg/frame"
	"github.com/tolimahealth/vaccination-ingress/pkg/normalize"
)

// ErrUnresolvableCutoff indicates the sweep source carried no parseable date
// in any date-like column
var ErrUnresolvableCutoff = errors.New("no parseable date found in sweep source")

// Keywords marking a column as date-carrying, compared against folded headers
var dateKeywords = []string{"FECHA", "DATE", "DIA"}

// CutoffResolver determines the temporal partition boundary between the
// historical individual records and the emergency sweep aggregates.
type CutoffResolver struct {
	logger *zap.Logger
}

// NewCutoffResolver creates a cutoff resolver
func NewCutoffResolver(logger *zap.Logger) *CutoffResolver {
	if logger == nil {
		logger = zap.L().Named("cutoff")
	}
	return &CutoffResolver{logger: logger}
}

// Resolve scans every date-like column of the sweep frame, parses each cell
// discarding malformed ones, and returns the earliest date found. The
// earliest sweep date is the boundary by policy: the emergency operation is
// assumed to start no later than its first recorded sweep.
func (r *CutoffResolver) Resolve(sweeps *frame.Frame) (time.Time, error) {
	if sweeps == nil || sweeps.Len() == 0 {
		return time.Time{}, ErrUnresolvableCutoff
	}

	var earliest time.Time
	found := false
	candidates := 0

	for col, header := range sweeps.Columns {
		if !isDateColumn(header) {
			continue
		}
		candidates++

		for row := 0; row < sweeps.Len(); row++ {
			cell := sweeps.Cell(row, col)
			date, ok := frame.ParseDate(cell)
			if !ok {
				continue
			}
			if !found || date.Before(earliest) {
				earliest = date
				found = true
			}
		}
	}

	if !found {
		r.logger.Warn("Cutoff unresolvable",
			zap.String("source", sweeps.Name),
			zap.Int("candidateColumns", candidates))
		return time.Time{}, ErrUnresolvableCutoff
	}

	r.logger.Info("Resolved cutoff date",
		zap.String("source", sweeps.Name),
		zap.Time("cutoff", earliest),
		zap.Int("candidateColumns", candidates))
	return earliest, nil
}

func isDateColumn(header string) bool {
	folded := normalize.Fold(header)
	for _, keyword := range dateKeywords {
		if strings.Contains(folded, keyword) {
			return true
		}
	}
	return false
}
