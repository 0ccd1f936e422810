package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/tolimahealth/vaccination-ingress/pkg/config"
	"github.com/tolimahealth/vaccination-ingress/pkg/model"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	individual := writeFile(t, dir, "historico.csv",
		"IdPaciente,Sexo,Fecha Nacimiento,FA UNICA,MUNICIPIO,EAPB\n"+
			"P-1,F,1990-05-15,2024-08-01,Ibagué,EPS SURA\n"+
			"P-2,M,1985-01-01,2024-09-10,Honda,\n")
	brigade := writeFile(t, dir, "barridos.csv",
		"FECHA,MUNICIPIO,VEREDA,Efectivas (E),TPE,TPVP,TPNVP,TPVB,1-5 AÑOS\n"+
			"2024-09-01,Mariquita,El Rodeo,10,5,2,0,3,5\n")
	dane := writeFile(t, dir, "poblacion_dane.csv",
		"MUNICIPIO,EAPB,TOTAL\n"+
			"73001 - IBAGUE,EPS SURA,10\n"+
			"73443 - SAN SEBASTIAN DE MARIQUITA,EPS SURA,5\n")

	return &config.Config{
		IndividualPath:     individual,
		BrigadePath:        brigade,
		PopulationDANEPath: dane,
		ReferenceDate:      time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC),
		TargetPct:          80,
	}
}

func TestPipelineRun(t *testing.T) {
	cfg := testConfig(t)
	p, err := New(cfg, nil, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	report := result.Report
	if report.RunID == "" {
		t.Fatalf("report is missing a run id")
	}
	if report.IndividualRows != 2 || report.IndividualKept != 1 || report.IndividualDiscarded != 1 {
		t.Fatalf("individual counts = %d/%d/%d, want 2/1/1",
			report.IndividualRows, report.IndividualKept, report.IndividualDiscarded)
	}
	if report.BrigadeSweeps != 1 || report.BrigadeExpanded != 3 {
		t.Fatalf("brigade counts = %d/%d, want 1/3", report.BrigadeSweeps, report.BrigadeExpanded)
	}
	if report.CombinedRows != 4 {
		t.Fatalf("combined rows = %d, want 4", report.CombinedRows)
	}
	wantCutoff := time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC)
	if report.Cutoff == nil || !report.Cutoff.Equal(wantCutoff) {
		t.Fatalf("cutoff = %v, want %v", report.Cutoff, wantCutoff)
	}

	if len(result.Sweeps) != 1 {
		t.Fatalf("sweep metrics = %d, want 1", len(result.Sweeps))
	}

	byTerritory := make(map[string]model.CoverageMetric)
	for _, m := range result.Coverage {
		byTerritory[m.Territory] = m
	}
	// Display name comes from the population side of the join
	ibague, ok := byTerritory["IBAGUE"]
	if !ok {
		t.Fatalf("no coverage metric for IBAGUE: %+v", result.Coverage)
	}
	if ibague.PopulationTotal != 10 || ibague.VaccinatedTotal != 1 {
		t.Fatalf("ibague = %d/%d, want 10/1", ibague.PopulationTotal, ibague.VaccinatedTotal)
	}
	mariquita, ok := byTerritory["Mariquita"]
	if !ok {
		t.Fatalf("no coverage metric for Mariquita: %+v", result.Coverage)
	}
	if mariquita.PopulationTotal != 5 || mariquita.VaccinatedTotal != 3 {
		t.Fatalf("mariquita = %d/%d, want 5/3", mariquita.PopulationTotal, mariquita.VaccinatedTotal)
	}
}

func TestPipelineCachesByContent(t *testing.T) {
	cfg := testConfig(t)
	cache := NewCache()
	p, err := New(cfg, nil, cache, zap.NewNop())
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	first, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if first != second {
		t.Fatalf("expected the cached result on unchanged inputs")
	}

	// Touching an input changes the content key
	if err := os.WriteFile(cfg.IndividualPath, []byte(
		"IdPaciente,Sexo,Fecha Nacimiento,FA UNICA,MUNICIPIO,EAPB\n"+
			"P-9,F,1995-01-01,2024-08-15,Honda,\n"), 0o644); err != nil {
		t.Fatalf("rewrite input: %v", err)
	}
	third, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("third run: %v", err)
	}
	if third == first {
		t.Fatalf("expected a recompute after input change")
	}
	if third.Report.IndividualRows != 1 {
		t.Fatalf("recomputed individual rows = %d, want 1", third.Report.IndividualRows)
	}
}

func TestPipelineCancelled(t *testing.T) {
	cfg := testConfig(t)
	p, err := New(cfg, nil, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Run(ctx); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}

func TestNewPipelineValidatesConfig(t *testing.T) {
	if _, err := New(nil, nil, nil, zap.NewNop()); err == nil {
		t.Fatalf("expected error for nil config")
	}
	cfg := &config.Config{ReferenceDate: time.Now()}
	if _, err := New(cfg, nil, nil, zap.NewNop()); err == nil {
		t.Fatalf("expected error for config without input paths")
	}
}
