// pkg/model/record.go
package model

import (
	"time"
)

// Period tags which side of the cutoff date a combined row belongs to
type Period string

const (
	PeriodPreEmergency Period = "pre_emergencia"
	PeriodEmergency    Period = "emergencia"
)

// RecordType tags the source a combined row was derived from
type RecordType string

const (
	RecordTypeIndividual RecordType = "individual"
	RecordTypeBrigade    RecordType = "brigada"
)

// PopulationSource identifies which census baseline a population count comes from
type PopulationSource string

const (
	PopulationSourceDANE   PopulationSource = "DANE"
	PopulationSourceSISBEN PopulationSource = "SISBEN"
)

// VaccinationRecord is one row of the individual (historical) vaccination source
// after field-level normalization. Optional fields are pointers; categorical
// fields that were missing hold the "Sin dato" sentinel instead of being nil.
type VaccinationRecord struct {
	PatientID       string
	DocumentID      string
	FirstName       string
	LastName        string
	Sex             string
	BirthDate       *time.Time
	VaccinationDate *time.Time
	Municipality    string
	EthnicGroup     string
	Displaced       string
	Disability      string
	Regime          string
	Insurer         string
	InsurerRaw      string
	AgeYears        *int
	AgeBucket       string

	// Extra holds columns the alias table did not recognize, keyed by raw header.
	Extra map[string]string
}

// BrigadeSweep is one row of the brigade (emergency) aggregate source: a field
// visit to one village on one date, reporting outcome and population counts.
type BrigadeSweep struct {
	SweepDate    *time.Time
	Municipality string
	Village      string

	EffectiveVisits    int
	IneffectiveVisits  int
	FailedVisits       int
	RefusingHouseholds int

	Found                int // TPE
	PreviouslyVaccinated int // TPVP
	NotVaccinated        int // TPNVP
	VaccinatedThisSweep  int // TPVB

	// StageBuckets holds per-survey-stage age-bucket counts, keyed by stage
	// number (1 found, 2 previously vaccinated, 3 not vaccinated, 4 vaccinated
	// this sweep) and then by canonical bucket code.
	StageBuckets map[int]map[string]int
}

// PopulationRecord is one row of an insurer population registry. Multiple
// insurer rows may exist per municipality.
type PopulationRecord struct {
	MunicipalityCode string
	MunicipalityName string
	Insurer          string
	InsurerRaw       string

	Contributivo int
	Subsidiado   int
	Especial     int
	Excepcion    int
	Total        int

	Month  int
	Year   int
	Source PopulationSource
}

// CombinedRecord is one row of the unified timeline: either a real individual
// record or a synthetic row expanded from a brigade aggregate.
type CombinedRecord struct {
	PatientID       string
	Sex             string
	AgeYears        *int
	AgeBucket       string
	Municipality    string
	Village         string
	EthnicGroup     string
	Regime          string
	Insurer         string
	VaccinationDate time.Time
	Period          Period
	RecordType      RecordType
}

// CombinedTimeline is the output of temporal combination: the deduplicated
// union of pre-cutoff individual rows and post-cutoff brigade rows.
type CombinedTimeline struct {
	Cutoff  time.Time
	Records []CombinedRecord

	IndividualKept      int
	IndividualDiscarded int
	BrigadeExpanded     int
	Deduplicated        int
}

// CountByPeriod returns the number of rows tagged with the given period.
func (t *CombinedTimeline) CountByPeriod(p Period) int {
	n := 0
	for i := range t.Records {
		if t.Records[i].Period == p {
			n++
		}
	}
	return n
}

// VaccinatedByMunicipality aggregates timeline rows into per-municipality
// counts, keyed by the municipality value already present on each row.
func (t *CombinedTimeline) VaccinatedByMunicipality() map[string]int {
	counts := make(map[string]int)
	for i := range t.Records {
		counts[t.Records[i].Municipality]++
	}
	return counts
}

// CoverageStatus classifies progress toward the campaign goal
type CoverageStatus string

const (
	StatusCompleted CoverageStatus = "COMPLETADA"
	StatusHigh      CoverageStatus = "ALTA"
	StatusMedium    CoverageStatus = "MEDIA"
	StatusLow       CoverageStatus = "BAJA"
)

// CoverageMetric is the computed coverage for one territory against one
// population baseline. Coverage can exceed 100 when vaccinated > population;
// it is reported, not clipped.
type CoverageMetric struct {
	Territory       string           `json:"territory"`
	Source          PopulationSource `json:"population_source"`
	PopulationTotal int              `json:"population_total"`
	VaccinatedTotal int              `json:"vaccinated_total"`
	CoveragePct     float64          `json:"coverage_pct"`
	Pending         int              `json:"pending"`
	GoalPct         float64          `json:"goal_pct"`
	GoalProgressPct float64          `json:"goal_progress_pct"`
	Status          CoverageStatus   `json:"status"`
}
