// pkg/coverage/population.go
package coverage

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/tolimahealth/vaccination-ingress/pkg/frame"
	"github.com/tolimahealth/vaccination-ingress/pkg/model"
	"github.com/tolimahealth/vaccination-ingress/pkg/normalize"
)

// Population registries arrive with free-form headers; columns are identified
// by keyword rather than through the fixed alias table.
type populationColumns struct {
	municipality int
	insurer      int
	total        int
	contributivo int
	subsidiado   int
	especial     int
	excepcion    int
	month        int
	year         int
}

// "73001 - IBAGUE" style composite municipality cells
var codeNamePattern = regexp.MustCompile(`^(\d+)\s*-\s*(.+)$`)

// PopulationProcessor parses insurer population registries into typed
// records, dropping rows that cannot participate in a coverage join.
type PopulationProcessor struct {
	insurers *normalize.EAPBNormalizer
	warnings *model.WarningSet
	logger   *zap.Logger
}

// NewPopulationProcessor creates a population processor
func NewPopulationProcessor(insurers *normalize.EAPBNormalizer, warnings *model.WarningSet, logger *zap.Logger) (*PopulationProcessor, error) {
	if insurers == nil {
		return nil, errNilInsurers
	}
	if warnings == nil {
		return nil, errNilWarnings
	}
	if logger == nil {
		logger = zap.L().Named("population")
	}
	return &PopulationProcessor{insurers: insurers, warnings: warnings, logger: logger}, nil
}

// Process parses one registry frame, tagging every record with the given
// population source. Rows lacking a municipality, an insurer, or a positive
// total are dropped with a counted warning; they cannot anchor a join.
func (p *PopulationProcessor) Process(f *frame.Frame, source model.PopulationSource) []model.PopulationRecord {
	cols := identifyColumns(f)
	if cols.municipality < 0 {
		p.warnings.Add(model.NewWarning(model.WarningColumnNotFound, f.Name, "municipio",
			"no header matched a municipality keyword"))
	}
	if cols.insurer < 0 {
		p.warnings.Add(model.NewWarning(model.WarningColumnNotFound, f.Name, "eapb",
			"no header matched an insurer keyword"))
	}
	if cols.total < 0 {
		p.warnings.Add(model.NewWarning(model.WarningColumnNotFound, f.Name, "total",
			"no header matched a total keyword"))
	}

	records := make([]model.PopulationRecord, 0, f.Len())
	dropped := 0
	for row := 0; row < f.Len(); row++ {
		rowID := f.Name + "#" + strconv.Itoa(row)

		var rec model.PopulationRecord
		rec.Source = source

		if cols.municipality >= 0 {
			rec.MunicipalityCode, rec.MunicipalityName = splitCodeName(f.Cell(row, cols.municipality))
		}
		if cols.insurer >= 0 {
			raw := f.Cell(row, cols.insurer)
			rec.InsurerRaw = raw
			rec.Insurer, _ = p.insurers.Normalize(raw)
		}

		rec.Total = p.count(f, row, cols.total, rowID)
		rec.Contributivo = p.count(f, row, cols.contributivo, rowID)
		rec.Subsidiado = p.count(f, row, cols.subsidiado, rowID)
		rec.Especial = p.count(f, row, cols.especial, rowID)
		rec.Excepcion = p.count(f, row, cols.excepcion, rowID)
		rec.Month = p.count(f, row, cols.month, rowID)
		rec.Year = p.count(f, row, cols.year, rowID)

		if rec.MunicipalityName == "" || rec.Insurer == "" || rec.Insurer == normalize.SinDato || rec.Total <= 0 {
			dropped++
			continue
		}

		// Soft invariant: regime counts sum to the declared total. Subtotal
		// and banner rows trip this too, which is exactly why it only warns.
		regimeSum := rec.Contributivo + rec.Subsidiado + rec.Especial + rec.Excepcion
		if regimeSum != 0 && regimeSum != rec.Total {
			p.warnings.Add(model.NewWarning(model.WarningInvariantViolation, f.Name, "total",
				"regime counts do not sum to total").WithRow(rowID).WithValue(rec.Total))
		}

		records = append(records, rec)
	}

	p.logger.Info("Processed population registry",
		zap.String("source", f.Name),
		zap.String("baseline", string(source)),
		zap.Int("records", len(records)),
		zap.Int("dropped", dropped))
	return records
}

// count parses an integer cell, coercing absent columns and malformed cells
// to zero
func (p *PopulationProcessor) count(f *frame.Frame, row, col int, rowID string) int {
	if col < 0 {
		return 0
	}
	cell := f.Cell(row, col)
	if frame.IsNull(cell) {
		return 0
	}
	value, ok := frame.ParseInt(cell)
	if !ok {
		p.warnings.Add(model.NewWarning(model.WarningMalformedValue, f.Name, f.Columns[col],
			"cell is not numeric").WithRow(rowID).WithValue(cell))
		return 0
	}
	return value
}

// splitCodeName splits a "code - name" composite on the first hyphen. Cells
// without a code pass through as a bare name.
func splitCodeName(raw string) (code, name string) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" || frame.IsNull(cleaned) {
		return "", ""
	}
	if m := codeNamePattern.FindStringSubmatch(cleaned); m != nil {
		return m[1], strings.TrimSpace(m[2])
	}
	return "", cleaned
}

func identifyColumns(f *frame.Frame) populationColumns {
	cols := populationColumns{
		municipality: -1, insurer: -1, total: -1,
		contributivo: -1, subsidiado: -1, especial: -1, excepcion: -1,
		month: -1, year: -1,
	}

	for i, header := range f.Columns {
		folded := normalize.Fold(header)
		switch {
		case cols.municipality < 0 && (strings.Contains(folded, "MUNICIPIO") || strings.Contains(folded, "MPIO")):
			cols.municipality = i
		case cols.insurer < 0 && (strings.Contains(folded, "EAPB") || strings.Contains(folded, "ASEGURADORA") ||
			strings.Contains(folded, "EPS") || strings.Contains(folded, "ENTIDAD")):
			cols.insurer = i
		case cols.contributivo < 0 && strings.Contains(folded, "CONTRIBUTIVO"):
			cols.contributivo = i
		case cols.subsidiado < 0 && strings.Contains(folded, "SUBSIDIADO"):
			cols.subsidiado = i
		case cols.excepcion < 0 && strings.Contains(folded, "EXCEPCION"):
			cols.excepcion = i
		case cols.especial < 0 && strings.Contains(folded, "ESPECIAL"):
			cols.especial = i
		case cols.total < 0 && strings.Contains(folded, "TOTAL"):
			cols.total = i
		case cols.month < 0 && folded == "MES":
			cols.month = i
		case cols.year < 0 && folded == "ANO":
			cols.year = i
		}
	}
	return cols
}
