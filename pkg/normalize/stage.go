// pkg/normalize/stage.go
package normalize

import (
	"fmt"
	"strconv"
	"strings"
)

// Stage identifies the survey round an age-bucket column belongs to. Brigade
// exports tag repeated visits to the same village by appending a numeric
// suffix to the bucket header.
type Stage int

const (
	StageFound           Stage = 1 // population found (TPE)
	StagePrevVaccinated  Stage = 2 // previously vaccinated (TPVP)
	StageNotVaccinated   Stage = 3 // not vaccinated when found (TPNVP)
	StageSweepVaccinated Stage = 4 // vaccinated during this sweep (TPVB)
)

// String returns the total column the stage rolls up into
func (s Stage) String() string {
	switch s {
	case StageFound:
		return "TPE"
	case StagePrevVaccinated:
		return "TPVP"
	case StageNotVaccinated:
		return "TPNVP"
	case StageSweepVaccinated:
		return "TPVB"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// Stages lists all survey stages in order
var Stages = []Stage{StageFound, StagePrevVaccinated, StageNotVaccinated, StageSweepVaccinated}

// Two-digit suffix blocks reserved for repeated rounds of stages 3 and 4
const (
	notVaccinatedSuffixLo   = 11
	notVaccinatedSuffixHi   = 17
	sweepVaccinatedSuffixLo = 21
	sweepVaccinatedSuffixHi = 26
)

// ClassifyStage determines the survey stage encoded in a column header
// suffix. Two-digit round markers (11-17, 21-26) take precedence over the
// single-digit markers 2, 3 and 4; anything else is stage 1.
func ClassifyStage(raw string) Stage {
	name := Fold(raw)
	if name == "" {
		return StageFound
	}

	if n, ok := trailingTwoDigits(name); ok {
		switch {
		case n >= notVaccinatedSuffixLo && n <= notVaccinatedSuffixHi:
			return StageNotVaccinated
		case n >= sweepVaccinatedSuffixLo && n <= sweepVaccinatedSuffixHi:
			return StageSweepVaccinated
		}
	}

	switch {
	case strings.HasSuffix(name, "2"):
		return StagePrevVaccinated
	case strings.HasSuffix(name, "3"):
		return StageNotVaccinated
	case strings.HasSuffix(name, "4"):
		return StageSweepVaccinated
	}
	return StageFound
}

// StripStageSuffix removes a recognized stage marker from a folded header,
// returning the bucket-name part. Headers without a marker fold unchanged.
func StripStageSuffix(raw string) string {
	name := Fold(raw)
	if name == "" {
		return name
	}

	if n, ok := trailingTwoDigits(name); ok {
		if (n >= notVaccinatedSuffixLo && n <= notVaccinatedSuffixHi) ||
			(n >= sweepVaccinatedSuffixLo && n <= sweepVaccinatedSuffixHi) {
			return strings.TrimRight(name[:len(name)-2], " ")
		}
	}

	if strings.HasSuffix(name, "2") || strings.HasSuffix(name, "3") || strings.HasSuffix(name, "4") {
		// A bare single digit is the whole header, not a marker
		if len(name) > 1 {
			return strings.TrimRight(name[:len(name)-1], " ")
		}
	}
	return name
}

// trailingTwoDigits extracts a two-digit numeric suffix. Headers whose name
// itself ends in digits (bucket ranges like 11-20) only count when exactly
// two digits trail a non-digit boundary.
func trailingTwoDigits(name string) (int, bool) {
	run := 0
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] < '0' || name[i] > '9' {
			break
		}
		run++
	}
	if run != 2 {
		return 0, false
	}
	n, err := strconv.Atoi(name[len(name)-2:])
	if err != nil {
		return 0, false
	}
	return n, true
}
