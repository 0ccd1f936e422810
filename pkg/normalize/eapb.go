// pkg/normalize/eapb.go
package normalize

import (
	"go.uber.org/zap"

	"github.com/tolimahealth/vaccination-ingress/pkg/frame"
	"github.com/tolimahealth/vaccination-ingress/pkg/model"
)

// Known raw insurer name variants and the canonical name each collapses to.
// This is a curated table built from manual review of the registries, not a
// fuzzy matcher; variants differ by punctuation, legal suffixes and trailing
// regime codes. Lookup keys are folded.
var insurerVariants = map[string]string{
	"LA NUEVA EPS S.A.-CM": "LA NUEVA EPS S.A.",

	"SALUD TOTAL S.A. E.P.S. CM":          "SALUD TOTAL S.A. E.P.S.",
	"SALUD TOTAL EPS-S S.A. Contributivo": "SALUD TOTAL S.A. E.P.S.",
	"SALUD TOTAL ENTIDAD PROMOTORA DE SALUD DEL REGIMEN CONTRIBUTIVO Y DEL REGIMEN SUBSIDIADO S.A. -CM": "SALUD TOTAL S.A. E.P.S.",

	"PIJAOS SALUD EPSI -CM": "PIJAOS SALUD EPSI",

	"MEDIMÁS EPS S.A.S. -CM": "MEDIMAS EPS S.A.S",

	"COOPERATIVA DE SALUD COMUNITARIA-COMPARTA-CM": "COMPARTA - COOPERATIVA DE SALUD COMUNITARIA COMPARTA EPS S",

	"SALUDVIDA S.A. EPS":       "SALUDVIDA S.A. EPS -CM",
	"SALUDVIDA S.A .E.P.S -CM": "SALUDVIDA S.A. EPS -CM",
	"SALUDVIDA EPS SA":         "SALUDVIDA S.A. EPS -CM",

	"EMPRESA MUTUAL PARA EL DESARROLLO INTEGRAL  DE LA SALUD E.S.S. EMDISALUD ESS-CM": "Empresa Mutual para el Desarrollo Integral de la salud E.S.S.",

	"CAJA DE COMPENSACIÓN FAMILIAR DEL HUILA - COMFAMILIAR HUILA CM": "CAJA DE COMPENSACIÓN FAMILIAR DEL HUILA - COMFAMILIAR HUILA",

	"Fuerzas Militares RES": "Fuerzas Militares",

	"SAVIA SALUD E.P.S. -CM": "SAVIA SALUD E.P.S.",
	"SAVIA SALUD E.P.S.":     "SAVIA SALUD EPS Subsidiado",

	"CAJA DE COMPENSACION FAMILIAR CAJACOPI ATLANTICO -CM": "CAJA DE COMPENSACION FAMILIAR CAJACOPI ATLANTICO",

	"ASOCIACION MUTUAL SER EPS Subsidiado":   "ASOCIACION MUTUAL SER EPS-S",
	"ASOCIACION MUTUAL SER EPS Contributivo": "ASOCIACION MUTUAL SER EPS-S",

	"Asociación Indígena Del Cauca": "Asociación Indígena del Cauca",

	"ALIANSALUD EPS": "ALIANSALUD EPS - CM",

	"HUMANA VIVIR SA EPS": "Humana Vivir",

	"Capresoca E.P.S.-CM": "Capresoca E.P.S.",

	"COOSALUD EPS S.A. Contributivo": "COOSALUD EPS S.A.Contributivo",
	"COOSALUD EPS S.A.Contributivo":  "COOSALUD ESS EPS-S",

	"UNIVERSIDAD NACIONAL DE COLOMBIA": "UNIVERSIDAD NACIONAL DE COLOMBIA -UNISALUD",

	"CAJA DE COMPENSACIÓN FAMILIAR DEL CHOCÓ - COMFACHOCO -CM": "CAJA DE COMPENSACIÓN FAMILIAR DEL CHOCÓ - COMFACHOCO",

	"ASOCIACIÓN DE CABILDOS INDÍGENAS DEL CESAR Y GUAJIRA-DUSAKAWI A.R.S.I. -CM": "ASOCIACIÓN DE CABILDOS INDÍGENAS DEL CESAR Y GUAJIRA-DUSAKAWI A.R.S.I.",

	"ASOCIACIÓN MUTUAL LA ESPERANZA ASMET  SALUD-CM": "ASMET - ASOCIACIÓN MUTUAL LA ESPERANZA DE EL TAMBO ASMET ESS",

	"CAFESALUD EPSS SA": "Cafesalud",

	"POLICIA NACIONAL SANIDAD": "Policia Nacional",

	"EPS CONVIDA -CM": "Convida",

	"Asociación Mutual SER Empresa Solidaria de Salud ESS-CM":                        "EMSSANAR - ASOCIACION MUTIAL EMPRESA SOLIDARIA DE SALUD EMSSANAR ESS",
	"ASOCIACIÓN MUTUAL EMPRESA SOLIDARIA DE SALUD DE NARIÑO E.S.S. EMSSANAR E.S.S.-CM": "EMSSANAR - ASOCIACION MUTIAL EMPRESA SOLIDARIA DE SALUD EMSSANAR ESS",

	"EPS SERVICIO OCCIDENTAL DE SALUD  S.A. - EPS S.O.S. S.A.-CM": "SERVICIO OCCIDENTAL DE SALUD SA SOS",

	"ENTIDAD COOPERATIVA SOL.DE SALUD DEL NORTE DE SOACHA ECOOPSOS-CM": "ECOOPSOS - ENTIDAD COOPERATIVA SOLIDADARIA DE SALUD ECOOPSOS ESS EPS-S",

	"COOMEVA   E.P.S.  S.A.-CM": "COOMEVA EPS S A",
	"Salud Coomeva":             "COOMEVA EPS SA",

	"FPS de Ferrocarriles Nacionales": "Fondo de Pasivo Social de Ferrocarriles Nacionales de Colombia",

	"CRUZ BLANCA  EPS S.A.-CM": "Cruz Blanca",

	"COMFENALCO VALLE E.P.S.-CM": "COMFENALCO VALLE EPS",

	"Colmédica": "Colmédica medicina prepagada",

	"EPS SURA": "Salud Sura",
	"EPS Y MEDICINA PREPAGADA SURAMERICANA S.A-CM": "Salud Sura",

	"SANITAS S.A. E.P.S.-CM": "SANITAS EPS",
}

// EAPBNormalizer canonicalizes insurer names via the curated variant table
// and tracks merge statistics for the data-quality report. Unmapped values
// pass through unchanged: they are either already canonical or genuinely
// novel, and forcing them to a sentinel would destroy information.
type EAPBNormalizer struct {
	logger   *zap.Logger
	variants map[string]string

	seenVariants map[string]map[string]struct{}
	rowsAffected int
}

// NewEAPBNormalizer creates an insurer normalizer with the compiled table
func NewEAPBNormalizer(logger *zap.Logger) *EAPBNormalizer {
	if logger == nil {
		logger = zap.L().Named("eapb")
	}

	compiled := make(map[string]string, len(insurerVariants))
	for raw, canonical := range insurerVariants {
		compiled[Fold(raw)] = canonical
	}

	return &EAPBNormalizer{
		logger:       logger,
		variants:     compiled,
		seenVariants: make(map[string]map[string]struct{}),
	}
}

// Normalize resolves a raw insurer name. The second return reports whether
// the value was rewritten; callers keep the raw value in a shadow field.
func (n *EAPBNormalizer) Normalize(raw string) (string, bool) {
	if frame.IsNull(raw) {
		return SinDato, false
	}

	canonical, ok := n.variants[Fold(raw)]
	if !ok {
		return raw, false
	}
	if canonical == raw {
		return canonical, false
	}

	if n.seenVariants[canonical] == nil {
		n.seenVariants[canonical] = make(map[string]struct{})
	}
	n.seenVariants[canonical][raw] = struct{}{}
	n.rowsAffected++

	return canonical, true
}

// Stats reports merge statistics accumulated since the last Reset
func (n *EAPBNormalizer) Stats() model.InsurerMergeStats {
	byCanonical := make(map[string]int, len(n.seenVariants))
	for canonical, raws := range n.seenVariants {
		byCanonical[canonical] = len(raws)
	}
	return model.InsurerMergeStats{
		VariantsByCanonical: byCanonical,
		RowsAffected:        n.rowsAffected,
	}
}

// Reset clears accumulated merge statistics for a new batch run
func (n *EAPBNormalizer) Reset() {
	n.seenVariants = make(map[string]map[string]struct{})
	n.rowsAffected = 0
}
