// pkg/normalize/categorical.go
package normalize

import (
	"strings"

	"github.com/tolimahealth/vaccination-ingress/pkg/frame"
)

// Canonical categorical values
const (
	SinDato   = "Sin dato"
	Masculine = "Masculino"
	Feminine  = "Femenino"
	NonBinary = "No Binario"
	Yes       = "Sí"
	No        = "No"
)

var masculineTokens = map[string]struct{}{
	"masculino": {}, "m": {}, "masc": {}, "hombre": {}, "h": {}, "male": {}, "1": {},
}

var feminineTokens = map[string]struct{}{
	"femenino": {}, "f": {}, "fem": {}, "mujer": {}, "female": {}, "2": {},
}

// NormalizeSex canonicalizes a raw sex value. Non-empty values that match
// neither known encoding become "No Binario" rather than being dropped or
// guessed; missing values become "Sin dato".
func NormalizeSex(raw string) string {
	if frame.IsNull(raw) {
		return SinDato
	}
	token := strings.ToLower(strings.TrimSpace(Fold(raw)))
	if _, ok := masculineTokens[token]; ok {
		return Masculine
	}
	if _, ok := feminineTokens[token]; ok {
		return Feminine
	}
	return NonBinary
}

var affirmativeTokens = map[string]struct{}{
	"true": {}, "1": {}, "si": {}, "yes": {}, "y": {},
}

var negativeTokens = map[string]struct{}{
	"false": {}, "0": {}, "no": {}, "n": {},
}

// NormalizeBoolean canonicalizes yes/no-like values ("Sí", "No", "Sin dato")
func NormalizeBoolean(raw string) string {
	if frame.IsNull(raw) {
		return SinDato
	}
	token := strings.ToLower(strings.TrimSpace(Fold(raw)))
	if _, ok := affirmativeTokens[token]; ok {
		return Yes
	}
	if _, ok := negativeTokens[token]; ok {
		return No
	}
	return SinDato
}

// NormalizeCategory trims a generic categorical value, substituting the
// sentinel for any null token. The row is never dropped for a missing value.
func NormalizeCategory(raw string) string {
	if frame.IsNull(raw) {
		return SinDato
	}
	return strings.TrimSpace(raw)
}

// Municipality aliases: compound and legal name variants collapsing to the
// short canonical form. Keys are folded lowercase.
var municipalityAliases = map[string]string{
	"san sebastian de mariquita": "mariquita",
	"armero guayabal":            "armero",
	"armero - guayabal":          "armero",
}

var municipalityDisplay = map[string]string{
	"mariquita": "Mariquita",
	"armero":    "Armero",
}

// MunicipalityKey canonicalizes a municipality name into a join key:
// accent-folded, lowercased, alias table applied. Both sides of any
// territory join must pass through this.
func MunicipalityKey(raw string) string {
	if frame.IsNull(raw) {
		return ""
	}
	key := strings.ToLower(Fold(raw))
	if canonical, ok := municipalityAliases[key]; ok {
		return canonical
	}
	return key
}

// NormalizeMunicipality canonicalizes a municipality name for display:
// aliases collapse to their short form, everything else passes through
// trimmed.
func NormalizeMunicipality(raw string) string {
	if frame.IsNull(raw) {
		return SinDato
	}
	key := strings.ToLower(Fold(raw))
	if canonical, ok := municipalityAliases[key]; ok {
		if display, ok := municipalityDisplay[canonical]; ok {
			return display
		}
	}
	return strings.TrimSpace(raw)
}
