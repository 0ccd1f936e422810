// pkg/normalize/column.go
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/tolimahealth/vaccination-ingress/pkg/frame"
)

// stripMarks decomposes to NFD and removes combining marks, so accented
// characters compare equal to their base letters
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold canonicalizes a raw header or value for comparison: accents stripped,
// uppercased, internal whitespace collapsed to single spaces, and characters
// outside letters/digits/()-+_<>/ removed. Fold is idempotent.
func Fold(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}
	upper := strings.ToUpper(folded)

	var b strings.Builder
	b.Grow(len(upper))
	pendingSpace := false
	for _, r := range upper {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = b.Len() > 0
		case unicode.IsLetter(r) || unicode.IsDigit(r) ||
			r == '(' || r == ')' || r == '-' || r == '+' ||
			r == '_' || r == '<' || r == '>' || r == '/':
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteRune(r)
		default:
			// punctuation dropped; no space inserted so "S.A." folds to "SA"
		}
	}
	return b.String()
}

// FieldKey identifies a canonical field across all input sources
type FieldKey string

const (
	FieldPatientID       FieldKey = "id_paciente"
	FieldDocumentID      FieldKey = "documento"
	FieldFirstName       FieldKey = "primer_nombre"
	FieldLastName        FieldKey = "primer_apellido"
	FieldSex             FieldKey = "sexo"
	FieldBirthDate       FieldKey = "fecha_nacimiento"
	FieldMunicipality    FieldKey = "municipio"
	FieldEthnicGroup     FieldKey = "grupo_etnico"
	FieldDisplaced       FieldKey = "desplazado"
	FieldDisability      FieldKey = "discapacitado"
	FieldRegime          FieldKey = "regimen_afiliacion"
	FieldInsurer         FieldKey = "nombre_aseguradora"
	FieldVaccinationDate FieldKey = "fecha_vacunacion"

	FieldSweepDate          FieldKey = "fecha_barrido"
	FieldVillage            FieldKey = "vereda"
	FieldEffectiveVisits    FieldKey = "efectivas"
	FieldIneffectiveVisits  FieldKey = "no_efectivas"
	FieldFailedVisits       FieldKey = "fallidas"
	FieldRefusingHouseholds FieldKey = "casa_renuente"
	FieldFound              FieldKey = "tpe"
	FieldPrevVaccinated     FieldKey = "tpvp"
	FieldNotVaccinated      FieldKey = "tpnvp"
	FieldSweepVaccinated    FieldKey = "tpvb"
)

type aliasEntry struct {
	key     FieldKey
	aliases []string
}

// Alias table order matters: the first matching entry wins. Variants are
// written as they appear in real exports; they are folded at construction.
var aliasTable = []aliasEntry{
	{FieldPatientID, []string{"IdPaciente", "id_paciente", "ID PACIENTE", "PACIENTE ID"}},
	{FieldDocumentID, []string{"Documento", "documento", "NUMERO DOCUMENTO", "NUM DOCUMENTO", "DOC"}},
	{FieldFirstName, []string{"PrimerNombre", "primer_nombre", "PRIMER NOMBRE", "NOMBRE"}},
	{FieldLastName, []string{"PrimerApellido", "primer_apellido", "PRIMER APELLIDO", "APELLIDO"}},
	{FieldSex, []string{"Sexo", "sexo", "SEXO", "GENERO", "GÉNERO"}},
	{FieldBirthDate, []string{"FechaNacimiento", "fecha_nacimiento", "FECHA NACIMIENTO", "FECHA DE NACIMIENTO", "F NACIMIENTO"}},
	{FieldVaccinationDate, []string{"FA UNICA", "fecha_vacunacion", "FechaVacunacion", "FECHA VACUNACION", "FECHA DE VACUNACION", "FECHA APLICACION"}},
	{FieldMunicipality, []string{"NombreMunicipioResidencia", "MUNICIPIO", "municipio", "MPIO", "MUNICIPIO RESIDENCIA", "NOMBRE MUNICIPIO"}},
	{FieldEthnicGroup, []string{"GrupoEtnico", "grupo_etnico", "GRUPO ETNICO", "ETNIA"}},
	{FieldDisplaced, []string{"Desplazado", "desplazado", "DESPLAZADO"}},
	{FieldDisability, []string{"Discapacitado", "discapacitado", "DISCAPACITADO", "DISCAPACIDAD"}},
	{FieldRegime, []string{"RegimenAfiliacion", "regimen_afiliacion", "REGIMEN AFILIACION", "REGIMEN DE AFILIACION", "REGIMEN"}},
	{FieldInsurer, []string{"NombreAseguradora", "nombre_aseguradora", "ASEGURADORA", "EAPB", "EPS", "ENTIDAD"}},

	{FieldSweepDate, []string{"FECHA BARRIDO", "FECHA DEL BARRIDO", "FECHA", "fecha", "DIA"}},
	{FieldVillage, []string{"VEREDA", "vereda", "VEREDA/BARRIO", "BARRIO"}},
	{FieldEffectiveVisits, []string{"Efectivas (E)", "EFECTIVAS (E)", "EFECTIVAS", "E"}},
	{FieldIneffectiveVisits, []string{"No Efectivas (NE)", "NO EFECTIVAS (NE)", "NO EFECTIVAS", "NE"}},
	{FieldFailedVisits, []string{"Fallidas (F)", "FALLIDAS (F)", "FALLIDAS", "F"}},
	{FieldRefusingHouseholds, []string{"Casa renuente", "CASA RENUENTE", "CASAS RENUENTES", "RENUENTE"}},
	{FieldFound, []string{"TPE", "TOTAL POBLACION ENCONTRADA"}},
	{FieldPrevVaccinated, []string{"TPVP", "TOTAL POBLACION VACUNADA PREVIAMENTE"}},
	{FieldNotVaccinated, []string{"TPNVP", "TOTAL POBLACION NO VACUNADA"}},
	{FieldSweepVaccinated, []string{"TPVB", "TOTAL POBLACION VACUNADA BARRIDO"}},
}

// ColumnNormalizer maps dirty, variant column headers onto canonical field
// keys. Resolution is deterministic: exact match against the folded alias
// table first, then substring containment, first entry in table order winning.
type ColumnNormalizer struct {
	entries []aliasEntry
}

// NewColumnNormalizer builds a normalizer with the compiled alias table
func NewColumnNormalizer() *ColumnNormalizer {
	entries := make([]aliasEntry, len(aliasTable))
	for i, entry := range aliasTable {
		folded := make([]string, len(entry.aliases))
		for j, alias := range entry.aliases {
			folded[j] = Fold(alias)
		}
		entries[i] = aliasEntry{key: entry.key, aliases: folded}
	}
	return &ColumnNormalizer{entries: entries}
}

// Canonical resolves a raw column header to a field key. The second return is
// false when no alias matches; callers treat the column as absent data.
func (n *ColumnNormalizer) Canonical(raw string) (FieldKey, bool) {
	folded := Fold(raw)
	if folded == "" {
		return "", false
	}

	for _, entry := range n.entries {
		for _, alias := range entry.aliases {
			if folded == alias {
				return entry.key, true
			}
		}
	}

	// Containment pass, guarded so a survey-stage suffix on the raw header
	// never lets it match a different stage's alias
	rawStage := ClassifyStage(folded)
	for _, entry := range n.entries {
		for _, alias := range entry.aliases {
			if len(alias) < 3 {
				continue
			}
			if strings.Contains(folded, alias) && rawStage == ClassifyStage(alias) {
				return entry.key, true
			}
		}
	}

	return "", false
}

// Resolver binds a normalizer to one frame: every header is resolved once,
// and field access afterward is a map lookup, not a rescan.
type Resolver struct {
	frame  *frame.Frame
	fields map[FieldKey]int
	extra  []int
}

// Bind resolves all headers of a frame up front
func (n *ColumnNormalizer) Bind(f *frame.Frame) *Resolver {
	r := &Resolver{
		frame:  f,
		fields: make(map[FieldKey]int),
	}
	for i, col := range f.Columns {
		key, ok := n.Canonical(col)
		if !ok {
			r.extra = append(r.extra, i)
			continue
		}
		// First matching column wins for a duplicated field
		if _, exists := r.fields[key]; !exists {
			r.fields[key] = i
		} else {
			r.extra = append(r.extra, i)
		}
	}
	return r
}

// Has reports whether the bound frame carries the field
func (r *Resolver) Has(key FieldKey) bool {
	_, ok := r.fields[key]
	return ok
}

// Missing returns, of the given keys, those the bound frame does not carry
func (r *Resolver) Missing(keys ...FieldKey) []FieldKey {
	var missing []FieldKey
	for _, key := range keys {
		if !r.Has(key) {
			missing = append(missing, key)
		}
	}
	return missing
}

// Field returns the trimmed raw cell for a canonical field. The second return
// is false when the frame lacks the field entirely.
func (r *Resolver) Field(row int, key FieldKey) (string, bool) {
	col, ok := r.fields[key]
	if !ok {
		return "", false
	}
	return r.frame.Cell(row, col), true
}

// ExtraColumns returns the raw headers the alias table did not recognize
func (r *Resolver) ExtraColumns() []string {
	headers := make([]string, 0, len(r.extra))
	for _, i := range r.extra {
		headers = append(headers, r.frame.Columns[i])
	}
	return headers
}

// ExtraValues collects unrecognized columns of one row into a side map keyed
// by raw header
func (r *Resolver) ExtraValues(row int) map[string]string {
	if len(r.extra) == 0 {
		return nil
	}
	values := make(map[string]string, len(r.extra))
	for _, i := range r.extra {
		if cell := r.frame.Cell(row, i); cell != "" {
			values[r.frame.Columns[i]] = cell
		}
	}
	return values
}
