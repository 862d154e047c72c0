package main

import (
	"bytes"
	"errors"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/cashmachine/internal/storage"
)

func TestRunPrintsCombination(t *testing.T) {
	var out bytes.Buffer
	if err := run(options{amount: 1190, strategy: "optimal"}, &out); err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	var got report
	if err := yaml.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode output: %v\n%s", err, out.String())
	}
	if got.Amount != 1190 || got.TotalNotes != 6 || got.Strategy != "optimal" {
		t.Fatalf("unexpected report: %+v", got)
	}
	if len(got.Banknotes) == 0 || got.Banknotes[0].Nominal != 500 {
		t.Fatalf("expected largest nominal first, got %+v", got.Banknotes)
	}
}

func TestRunWithCustomBanknotes(t *testing.T) {
	var out bytes.Buffer
	if err := run(options{amount: 60, banknotes: "50:1,20:3", strategy: "greedy"}, &out); err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	var got report
	if err := yaml.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if got.TotalNotes != 3 || len(got.Banknotes) != 1 || got.Banknotes[0].Nominal != 20 {
		t.Fatalf("expected 3x20, got %+v", got)
	}
}

func TestRunReportsUnsatisfiable(t *testing.T) {
	var out bytes.Buffer
	err := run(options{amount: 111, strategy: "optimal"}, &out)
	if !errors.Is(err, errUnsatisfiable) {
		t.Fatalf("expected errUnsatisfiable, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	if err := run(options{amount: 100, strategy: "fastest"}, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
	if err := run(options{amount: 100, banknotes: "100", strategy: "optimal"}, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error for malformed banknotes")
	}
}

func TestRunRejectsOversizedCassettes(t *testing.T) {
	err := run(options{amount: 100, banknotes: "100:10000,100:1", strategy: "optimal"}, &bytes.Buffer{})
	if !errors.Is(err, storage.ErrInvalidBanknotes) {
		t.Fatalf("expected ErrInvalidBanknotes, got %v", err)
	}
}
