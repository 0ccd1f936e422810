// pkg/age/bucket.go
package age

import (
	"strings"

	"github.com/tolimahealth/vaccination-ingress/pkg/normalize"
)

// Bucket is a canonical age range. The nine ranges below are the system of
// record: they are the scheme the brigade column headers use. A second
// ten-label scheme exists as presentation text only, exposed through
// DisplayLabel; the two are never merged numerically because their
// boundaries differ.
type Bucket string

const (
	BucketUnder1  Bucket = "<1"
	Bucket1To5    Bucket = "1-5"
	Bucket6To10   Bucket = "6-10"
	Bucket11To20  Bucket = "11-20"
	Bucket21To30  Bucket = "21-30"
	Bucket31To40  Bucket = "31-40"
	Bucket41To50  Bucket = "41-50"
	Bucket51To59  Bucket = "51-59"
	Bucket60Plus  Bucket = "60+"
	BucketUnknown Bucket = "Sin dato"
)

// Buckets lists the canonical ranges in ascending order
var Buckets = []Bucket{
	BucketUnder1, Bucket1To5, Bucket6To10, Bucket11To20, Bucket21To30,
	Bucket31To40, Bucket41To50, Bucket51To59, Bucket60Plus,
}

// DisplayLabel returns the presentation text for a bucket
func (b Bucket) DisplayLabel() string {
	switch b {
	case BucketUnder1:
		return "Menor de 1 año"
	case Bucket60Plus:
		return "60 años o más"
	case BucketUnknown:
		return "Sin dato"
	default:
		return string(b) + " años"
	}
}

// Classify maps a whole-year age to its bucket. Negative ages are rejected
// upstream by the calculator and must not reach here; they classify as
// unknown rather than panicking.
func Classify(years int) Bucket {
	switch {
	case years < 0:
		return BucketUnknown
	case years < 1:
		return BucketUnder1
	case years <= 5:
		return Bucket1To5
	case years <= 10:
		return Bucket6To10
	case years <= 20:
		return Bucket11To20
	case years <= 30:
		return Bucket21To30
	case years <= 40:
		return Bucket31To40
	case years <= 50:
		return Bucket41To50
	case years <= 59:
		return Bucket51To59
	default:
		return Bucket60Plus
	}
}

// ClassifyPtr maps an optional age to its bucket, nil classifying as unknown
func ClassifyPtr(years *int) Bucket {
	if years == nil {
		return BucketUnknown
	}
	return Classify(*years)
}

type bucketAliases struct {
	bucket  Bucket
	aliases []string
}

// Known header variants per bucket, as seen in real brigade exports. The
// final two groups are consolidation ranges: sources that split the elderly
// into 60-69 and 70+ fold into the canonical 60+ bucket. Order matters, first
// match wins.
var bucketAliasTable = []bucketAliases{
	{BucketUnder1, []string{"<1", "< 1", "MENOR 1", "MENOR_1", "0-11M", "0-1", "LACTANTE", "0A11M", "< 1 AÑO"}},
	{Bucket1To5, []string{"1-5", "1 A 5", "1A5", "1_5", "PREESCOLAR", "1-5 AÑOS"}},
	{Bucket6To10, []string{"6-10", "6 A 10", "6A10", "6_10", "ESCOLAR_MENOR", "6-10 AÑOS"}},
	{Bucket11To20, []string{"11-20", "11 A 20", "11A20", "11_20", "ADOLESCENTE", "11-20 AÑOS"}},
	{Bucket21To30, []string{"21-30", "21 A 30", "21A30", "21_30", "ADULTO_JOVEN", "21-30 AÑOS"}},
	{Bucket31To40, []string{"31-40", "31 A 40", "31A40", "31_40", "ADULTO", "31-40 AÑOS"}},
	{Bucket41To50, []string{"41-50", "41 A 50", "41A50", "41_50", "ADULTO_MEDIO", "41-50 AÑOS"}},
	{Bucket51To59, []string{"51-59", "51 A 59", "51A59", "51_59", "ADULTO_MAYOR", "51-59 AÑOS"}},
	{Bucket60Plus, []string{"60+", "60 +", "60 Y MAS", "60 Y MÁS", "60MAS", "60_MAS", "MAYOR 60", ">60", "MAYOR_60"}},
	{Bucket60Plus, []string{"60-69", "60 A 69", "60A69", "60_69", "60-69 AÑOS"}},
	{Bucket60Plus, []string{"70+", "70 +", "70 Y MAS", "70 Y MÁS", "70MAS", "70_MAS", "MAYOR 70", ">70", "MAYOR_70", "70 AÑOS Y MAS"}},
}

var compiledBucketAliases = compileBucketAliases()

func compileBucketAliases() []bucketAliases {
	compiled := make([]bucketAliases, len(bucketAliasTable))
	for i, group := range bucketAliasTable {
		folded := make([]string, len(group.aliases))
		for j, alias := range group.aliases {
			folded[j] = normalize.Fold(alias)
		}
		compiled[i] = bucketAliases{bucket: group.bucket, aliases: folded}
	}
	return compiled
}

// FromColumnName resolves a raw brigade column header to its age bucket and
// survey stage. The third return is false for headers that are not
// age-bucket columns at all.
func FromColumnName(raw string) (Bucket, normalize.Stage, bool) {
	stage := normalize.ClassifyStage(raw)
	base := normalize.StripStageSuffix(raw)
	if base == "" {
		return BucketUnknown, stage, false
	}

	for _, group := range compiledBucketAliases {
		for _, alias := range group.aliases {
			if base == alias {
				return group.bucket, stage, true
			}
		}
	}

	// Containment pass for decorated headers ("RANGO 1-5 AÑOS"). The longest
	// matching alias wins, so "41-50 AÑOS" resolves to 41-50 even though it
	// textually contains "1-5".
	var best Bucket
	bestLen := 0
	for _, group := range compiledBucketAliases {
		for _, alias := range group.aliases {
			if len(alias) < 3 || len(alias) <= bestLen {
				continue
			}
			if strings.Contains(base, alias) {
				best = group.bucket
				bestLen = len(alias)
			}
		}
	}
	if bestLen > 0 {
		return best, stage, true
	}

	return BucketUnknown, stage, false
}
