package age

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewCalculatorRejectsZeroReference(t *testing.T) {
	if _, err := NewCalculator(time.Time{}, zap.NewNop()); err == nil {
		t.Fatalf("expected error for zero reference date")
	}
}

func TestComputeBirthdayBoundary(t *testing.T) {
	cases := []struct {
		name      string
		reference time.Time
		birth     time.Time
		want      int
	}{
		{"before birthday", date(2024, time.March, 15), date(1990, time.May, 15), 33},
		{"after birthday", date(2024, time.June, 15), date(1990, time.May, 15), 34},
		{"on birthday", date(2024, time.May, 15), date(1990, time.May, 15), 34},
		{"day before birthday", date(2024, time.May, 14), date(1990, time.May, 15), 33},
		{"under one year", date(2024, time.March, 15), date(2023, time.June, 1), 0},
	}
	for _, tc := range cases {
		calc, err := NewCalculator(tc.reference, zap.NewNop())
		if err != nil {
			t.Fatalf("%s: new calculator: %v", tc.name, err)
		}
		years, flag := calc.Compute(&tc.birth)
		if years == nil {
			t.Fatalf("%s: expected age, got nil (flag %v)", tc.name, flag)
		}
		if *years != tc.want {
			t.Fatalf("%s: age = %d, want %d", tc.name, *years, tc.want)
		}
		if flag != FlagOK {
			t.Fatalf("%s: flag = %v, want FlagOK", tc.name, flag)
		}
	}
}

func TestComputeFutureBirthDate(t *testing.T) {
	calc, err := NewCalculator(date(2024, time.March, 15), zap.NewNop())
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}
	future := date(2025, time.January, 1)
	years, flag := calc.Compute(&future)
	if years != nil {
		t.Fatalf("expected nil age for future birth date, got %d", *years)
	}
	if flag != FlagFuture {
		t.Fatalf("flag = %v, want FlagFuture", flag)
	}
}

func TestComputeMissingBirthDate(t *testing.T) {
	calc, err := NewCalculator(date(2024, time.March, 15), zap.NewNop())
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}
	years, flag := calc.Compute(nil)
	if years != nil || flag != FlagMissing {
		t.Fatalf("Compute(nil) = (%v, %v), want (nil, FlagMissing)", years, flag)
	}
}

func TestComputeUnrealisticAgeKept(t *testing.T) {
	calc, err := NewCalculator(date(2024, time.March, 15), zap.NewNop())
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}
	birth := date(1880, time.January, 1)
	years, flag := calc.Compute(&birth)
	if years == nil {
		t.Fatalf("expected unrealistic age to be kept")
	}
	if *years != 144 {
		t.Fatalf("age = %d, want 144", *years)
	}
	if flag != FlagUnrealistic {
		t.Fatalf("flag = %v, want FlagUnrealistic", flag)
	}
}

func TestCalculatorStats(t *testing.T) {
	calc, err := NewCalculator(date(2024, time.March, 15), zap.NewNop())
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}

	ok := date(1990, time.May, 15)
	future := date(2030, time.January, 1)
	ancient := date(1800, time.January, 1)
	calc.Compute(&ok)
	calc.Compute(nil)
	calc.Compute(&future)
	calc.Compute(&ancient)

	stats := calc.Stats()
	if stats.TotalProcessed != 4 {
		t.Fatalf("total processed = %d, want 4", stats.TotalProcessed)
	}
	if stats.Successful != 2 {
		t.Fatalf("successful = %d, want 2", stats.Successful)
	}
	if stats.InvalidDates != 1 || stats.FutureDates != 1 || stats.UnrealisticAges != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	calc.Reset()
	if after := calc.Stats(); after.TotalProcessed != 0 {
		t.Fatalf("Reset did not clear stats: %+v", after)
	}
}

func TestBucketFromBirthDate(t *testing.T) {
	calc, err := NewCalculator(date(2024, time.June, 15), zap.NewNop())
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}

	birth := date(1990, time.May, 15)
	years, bucket := calc.Bucket(&birth)
	if years == nil || *years != 34 {
		t.Fatalf("expected age 34, got %v", years)
	}
	if bucket != Bucket31To40 {
		t.Fatalf("bucket = %q, want %q", bucket, Bucket31To40)
	}

	if _, bucket := calc.Bucket(nil); bucket != BucketUnknown {
		t.Fatalf("bucket for missing birth date = %q, want %q", bucket, BucketUnknown)
	}
}
