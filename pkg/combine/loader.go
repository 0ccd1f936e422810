// pkg/combine/loader.go
package combine

import (
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/tolimahealth/vaccination-ingress/pkg/age"
	"github.com/tolimahealth/vaccination-ingress/pkg/frame"
	"github.com/tolimahealth/vaccination-ingress/pkg/model"
	"github.com/tolimahealth/vaccination-ingress/pkg/normalize"
)

// Fields the individual source is expected to carry. Absence is a warning,
// not an error: the affected field reads as "Sin dato" for every row.
var individualFields = []normalize.FieldKey{
	normalize.FieldPatientID,
	normalize.FieldSex,
	normalize.FieldBirthDate,
	normalize.FieldVaccinationDate,
	normalize.FieldMunicipality,
	normalize.FieldEthnicGroup,
	normalize.FieldDisplaced,
	normalize.FieldDisability,
	normalize.FieldRegime,
	normalize.FieldInsurer,
}

var sweepFields = []normalize.FieldKey{
	normalize.FieldSweepDate,
	normalize.FieldMunicipality,
	normalize.FieldVillage,
	normalize.FieldFound,
	normalize.FieldPrevVaccinated,
	normalize.FieldNotVaccinated,
	normalize.FieldSweepVaccinated,
}

// loadIndividuals parses the individual vaccination frame into typed records,
// normalizing every categorical field as it is read.
func (c *Combiner) loadIndividuals(f *frame.Frame) []model.VaccinationRecord {
	resolver := c.columns.Bind(f)
	c.warnMissing(f.Name, resolver, individualFields)

	records := make([]model.VaccinationRecord, 0, f.Len())
	for row := 0; row < f.Len(); row++ {
		rec := model.VaccinationRecord{
			PatientID:  c.fieldValue(resolver, row, normalize.FieldPatientID),
			DocumentID: c.fieldValue(resolver, row, normalize.FieldDocumentID),
			FirstName:  c.fieldValue(resolver, row, normalize.FieldFirstName),
			LastName:   c.fieldValue(resolver, row, normalize.FieldLastName),
			Extra:      resolver.ExtraValues(row),
		}

		rawSex, _ := resolver.Field(row, normalize.FieldSex)
		rec.Sex = normalize.NormalizeSex(rawSex)
		c.recordChange(f.Name, "sexo", rec.PatientID, rawSex, rec.Sex, "sex_normalization")

		rawMunicipality, _ := resolver.Field(row, normalize.FieldMunicipality)
		rec.Municipality = normalize.NormalizeMunicipality(rawMunicipality)
		c.recordChange(f.Name, "municipio", rec.PatientID, rawMunicipality, rec.Municipality, "municipality_aliasing")

		rawEthnic, _ := resolver.Field(row, normalize.FieldEthnicGroup)
		rec.EthnicGroup = normalize.NormalizeCategory(rawEthnic)

		rawRegime, _ := resolver.Field(row, normalize.FieldRegime)
		rec.Regime = normalize.NormalizeCategory(rawRegime)

		rawDisplaced, _ := resolver.Field(row, normalize.FieldDisplaced)
		rec.Displaced = normalize.NormalizeBoolean(rawDisplaced)

		rawDisability, _ := resolver.Field(row, normalize.FieldDisability)
		rec.Disability = normalize.NormalizeBoolean(rawDisability)

		rawInsurer, _ := resolver.Field(row, normalize.FieldInsurer)
		rec.InsurerRaw = rawInsurer
		insurer, mapped := c.insurers.Normalize(rawInsurer)
		rec.Insurer = insurer
		if mapped {
			c.recordChange(f.Name, "nombre_aseguradora", rec.PatientID, rawInsurer, insurer, "insurer_canonicalization")
		}

		rec.BirthDate = c.dateValue(f.Name, resolver, row, normalize.FieldBirthDate, rec.PatientID)
		rec.VaccinationDate = c.dateValue(f.Name, resolver, row, normalize.FieldVaccinationDate, rec.PatientID)

		years, bucket := c.ages.Bucket(rec.BirthDate)
		rec.AgeYears = years
		rec.AgeBucket = string(bucket)

		records = append(records, rec)
	}

	c.logger.Info("Loaded individual records",
		zap.String("source", f.Name),
		zap.Int("rows", len(records)))
	return records
}

// loadSweeps parses the brigade frame into typed sweep records. Age-bucket
// columns are resolved per header through the alias tables and accumulated
// by survey stage.
func (c *Combiner) loadSweeps(f *frame.Frame) []model.BrigadeSweep {
	resolver := c.columns.Bind(f)
	c.warnMissing(f.Name, resolver, sweepFields)

	// Resolve bucket columns once for the whole frame
	type bucketColumn struct {
		col    int
		bucket age.Bucket
		stage  normalize.Stage
	}
	var bucketColumns []bucketColumn
	for col, header := range f.Columns {
		if _, formal := c.columns.Canonical(header); formal {
			continue
		}
		bucket, stage, ok := age.FromColumnName(header)
		if ok {
			bucketColumns = append(bucketColumns, bucketColumn{col: col, bucket: bucket, stage: stage})
		}
	}

	sweeps := make([]model.BrigadeSweep, 0, f.Len())
	for row := 0; row < f.Len(); row++ {
		rowID := f.Name + "#" + strconv.Itoa(row)

		sweep := model.BrigadeSweep{
			Municipality: normalize.NormalizeMunicipality(c.fieldValue(resolver, row, normalize.FieldMunicipality)),
			Village:      normalize.NormalizeCategory(c.fieldValue(resolver, row, normalize.FieldVillage)),
			StageBuckets: make(map[int]map[string]int),
		}
		sweep.SweepDate = c.dateValue(f.Name, resolver, row, normalize.FieldSweepDate, rowID)

		sweep.EffectiveVisits = c.intValue(f.Name, resolver, row, normalize.FieldEffectiveVisits, rowID)
		sweep.IneffectiveVisits = c.intValue(f.Name, resolver, row, normalize.FieldIneffectiveVisits, rowID)
		sweep.FailedVisits = c.intValue(f.Name, resolver, row, normalize.FieldFailedVisits, rowID)
		sweep.RefusingHouseholds = c.intValue(f.Name, resolver, row, normalize.FieldRefusingHouseholds, rowID)
		sweep.Found = c.intValue(f.Name, resolver, row, normalize.FieldFound, rowID)
		sweep.PreviouslyVaccinated = c.intValue(f.Name, resolver, row, normalize.FieldPrevVaccinated, rowID)
		sweep.NotVaccinated = c.intValue(f.Name, resolver, row, normalize.FieldNotVaccinated, rowID)
		sweep.VaccinatedThisSweep = c.intValue(f.Name, resolver, row, normalize.FieldSweepVaccinated, rowID)

		for _, bc := range bucketColumns {
			cell := f.Cell(row, bc.col)
			if frame.IsNull(cell) {
				continue
			}
			count, ok := frame.ParseInt(cell)
			if !ok {
				c.warnings.Add(model.NewWarning(model.WarningMalformedValue, f.Name, string(bc.bucket),
					"age bucket cell is not numeric").WithRow(rowID).WithValue(cell))
				continue
			}
			stage := int(bc.stage)
			if sweep.StageBuckets[stage] == nil {
				sweep.StageBuckets[stage] = make(map[string]int)
			}
			sweep.StageBuckets[stage][string(bc.bucket)] += count
		}

		// Soft invariant: found population splits into the three outcomes
		if sweep.Found != sweep.PreviouslyVaccinated+sweep.NotVaccinated+sweep.VaccinatedThisSweep {
			c.warnings.Add(model.NewWarning(model.WarningInvariantViolation, f.Name, "tpe",
				"TPE does not equal TPVP+TPNVP+TPVB").WithRow(rowID).WithValue(sweep.Found))
		}

		sweeps = append(sweeps, sweep)
	}

	c.logger.Info("Loaded brigade sweeps",
		zap.String("source", f.Name),
		zap.Int("rows", len(sweeps)),
		zap.Int("bucketColumns", len(bucketColumns)))
	return sweeps
}

func (c *Combiner) warnMissing(source string, resolver *normalize.Resolver, expected []normalize.FieldKey) {
	for _, key := range resolver.Missing(expected...) {
		c.warnings.Add(model.NewWarning(model.WarningColumnNotFound, source, string(key),
			"no column matched any known alias"))
	}
}

func (c *Combiner) fieldValue(resolver *normalize.Resolver, row int, key normalize.FieldKey) string {
	value, _ := resolver.Field(row, key)
	return value
}

// dateValue parses an optional date field, counting malformed cells
func (c *Combiner) dateValue(source string, resolver *normalize.Resolver, row int, key normalize.FieldKey, rowID string) *time.Time {
	raw, ok := resolver.Field(row, key)
	if !ok || frame.IsNull(raw) {
		return nil
	}
	date, ok := frame.ParseDate(raw)
	if !ok {
		c.warnings.Add(model.NewWarning(model.WarningMalformedValue, source, string(key),
			"cell is not a parseable date").WithRow(rowID).WithValue(raw))
		return nil
	}
	return &date
}

// intValue parses an integer count field, coercing malformed cells to zero
func (c *Combiner) intValue(source string, resolver *normalize.Resolver, row int, key normalize.FieldKey, rowID string) int {
	raw, ok := resolver.Field(row, key)
	if !ok || frame.IsNull(raw) {
		return 0
	}
	value, ok := frame.ParseInt(raw)
	if !ok {
		c.warnings.Add(model.NewWarning(model.WarningMalformedValue, source, string(key),
			"cell is not numeric").WithRow(rowID).WithValue(raw))
		return 0
	}
	return value
}

// recordChange emits an audit operation when normalization rewrote a value
func (c *Combiner) recordChange(source, field, rowID, original, updated, operation string) {
	if c.recorder == nil || original == updated {
		return
	}
	c.recorder.Record(model.CleaningOperation{
		SourceName:        source,
		FieldName:         field,
		OriginalValue:     original,
		NewValue:          updated,
		RowIdentifier:     rowID,
		CleaningOperation: operation,
		CleaningReason:    "variant_encoding",
	})
}
