package normalize

import (
	"testing"

	"github.com/tolimahealth/vaccination-ingress/pkg/frame"
)

func TestFold(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"  FECHA NACIMIENTO  ", "FECHA NACIMIENTO"},
		{"Fecha   Nacimiento", "FECHA NACIMIENTO"},
		{"60 Y MÁS", "60 Y MAS"},
		{"AÑOS", "ANOS"},
		{"S.A. E.P.S.", "SA EPS"},
		{"Efectivas (E)", "EFECTIVAS (E)"},
		{"<1", "<1"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Fold(tc.raw); got != tc.want {
			t.Fatalf("Fold(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestFoldIdempotent(t *testing.T) {
	inputs := []string{"  Fecha   Nacimiento ", "60 Y MÁS", "S.A. E.P.S.", "MUNICIPIO"}
	for _, raw := range inputs {
		once := Fold(raw)
		if twice := Fold(once); twice != once {
			t.Fatalf("Fold not idempotent for %q: %q then %q", raw, once, twice)
		}
	}
}

func TestCanonicalVariants(t *testing.T) {
	n := NewColumnNormalizer()
	cases := []struct {
		raw  string
		want FieldKey
	}{
		{"IdPaciente", FieldPatientID},
		{"  FECHA DE NACIMIENTO ", FieldBirthDate},
		{"FA UNICA", FieldVaccinationDate},
		{"NombreMunicipioResidencia", FieldMunicipality},
		{"Sexo", FieldSex},
		{"GÉNERO", FieldSex},
		{"TPVB", FieldSweepVaccinated},
		{"Efectivas (E)", FieldEffectiveVisits},
		{"Casa renuente", FieldRefusingHouseholds},
	}
	for _, tc := range cases {
		got, ok := n.Canonical(tc.raw)
		if !ok {
			t.Fatalf("Canonical(%q): no match, want %q", tc.raw, tc.want)
		}
		if got != tc.want {
			t.Fatalf("Canonical(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestCanonicalUnmatched(t *testing.T) {
	n := NewColumnNormalizer()
	for _, raw := range []string{"", "COLUMNA RARA", "ZZZ"} {
		if key, ok := n.Canonical(raw); ok {
			t.Fatalf("Canonical(%q) matched %q, want no match", raw, key)
		}
	}
}

func TestResolverBind(t *testing.T) {
	f, err := frame.New("historico",
		[]string{"IdPaciente", "Sexo", "FA UNICA", "ColumnaExtra"},
		[][]string{{"P-1", "F", "2024-08-01", "x"}})
	if err != nil {
		t.Fatalf("new frame: %v", err)
	}

	r := NewColumnNormalizer().Bind(f)
	if !r.Has(FieldPatientID) || !r.Has(FieldSex) || !r.Has(FieldVaccinationDate) {
		t.Fatalf("resolver missing expected fields")
	}

	sex, ok := r.Field(0, FieldSex)
	if !ok || sex != "F" {
		t.Fatalf("Field sex = %q ok=%v, want F", sex, ok)
	}

	missing := r.Missing(FieldPatientID, FieldBirthDate)
	if len(missing) != 1 || missing[0] != FieldBirthDate {
		t.Fatalf("Missing = %v, want [fecha_nacimiento]", missing)
	}

	extra := r.ExtraColumns()
	if len(extra) != 1 || extra[0] != "ColumnaExtra" {
		t.Fatalf("ExtraColumns = %v", extra)
	}
	values := r.ExtraValues(0)
	if values["ColumnaExtra"] != "x" {
		t.Fatalf("ExtraValues = %v", values)
	}
}

func TestClassifyStage(t *testing.T) {
	cases := []struct {
		raw  string
		want Stage
	}{
		{"1-5", StageFound},
		{"11-20", StageFound},
		{"60+", StageFound},
		{"1-5 AÑOS", StageFound},
		{"1-5 AÑOS2", StagePrevVaccinated},
		{"<1 AÑO2", StagePrevVaccinated},
		{"60+3", StageNotVaccinated},
		{"1-5 AÑOS11", StageNotVaccinated},
		{"1-5 AÑOS17", StageNotVaccinated},
		{"60+4", StageSweepVaccinated},
		{"1-5 AÑOS21", StageSweepVaccinated},
		{"1-5 AÑOS26", StageSweepVaccinated},
		{"MUNICIPIO", StageFound},
	}
	for _, tc := range cases {
		if got := ClassifyStage(tc.raw); got != tc.want {
			t.Fatalf("ClassifyStage(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestStripStageSuffix(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"1-5 AÑOS2", "1-5 ANOS"},
		{"<1 AÑO2", "<1 ANO"},
		{"1-5 AÑOS11", "1-5 ANOS"},
		{"11-20", "11-20"},
		{"1-5", "1-5"},
		{"60+", "60+"},
	}
	for _, tc := range cases {
		if got := StripStageSuffix(tc.raw); got != tc.want {
			t.Fatalf("StripStageSuffix(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}
