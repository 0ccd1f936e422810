package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("INDIVIDUAL_PATH", "/data/historico.csv")
	t.Setenv("BRIGADE_PATH", "")
	t.Setenv("COVERAGE_TARGET_PCT", "")
	t.Setenv("REFERENCE_DATE", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.TargetPct != 80 {
		t.Fatalf("target = %v, want default 80", cfg.TargetPct)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "json" {
		t.Fatalf("log defaults = %q/%q", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.ReferenceDate.IsZero() {
		t.Fatalf("reference date must default to today")
	}
	if h, m, s := cfg.ReferenceDate.Clock(); h != 0 || m != 0 || s != 0 {
		t.Fatalf("reference date not truncated to day: %v", cfg.ReferenceDate)
	}
}

func TestLoadConfigExplicitReferenceDate(t *testing.T) {
	t.Setenv("INDIVIDUAL_PATH", "/data/historico.csv")
	t.Setenv("REFERENCE_DATE", "2024-10-01")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	want := time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC)
	if !cfg.ReferenceDate.Equal(want) {
		t.Fatalf("reference date = %v, want %v", cfg.ReferenceDate, want)
	}
}

func TestLoadConfigBadReferenceDate(t *testing.T) {
	t.Setenv("INDIVIDUAL_PATH", "/data/historico.csv")
	t.Setenv("REFERENCE_DATE", "01/10/2024")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for malformed reference date")
	}
}

func TestValidate(t *testing.T) {
	ref := time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC)

	cfg := &Config{ReferenceDate: ref}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error when both input paths are empty")
	}

	cfg = &Config{IndividualPath: "/data/historico.csv", ReferenceDate: ref, TargetPct: -1}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for negative target")
	}

	cfg = &Config{BrigadePath: "/data/barridos.xlsx", ReferenceDate: ref}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}
