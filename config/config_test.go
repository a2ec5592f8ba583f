package config

import (
	"errors"
	"testing"
)

func TestLoadEmbeddedDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Grid.Topology != "rectangular" {
		t.Errorf("expected rectangular topology, got %q", cfg.Grid.Topology)
	}
	if cfg.Sweep.MaxFrames != 3600 {
		t.Errorf("expected default max_frames 3600, got %d", cfg.Sweep.MaxFrames)
	}
	if len(cfg.Sweep.AgentCounts) != 5 {
		t.Errorf("expected 5 default agent counts, got %d", len(cfg.Sweep.AgentCounts))
	}
	if cfg.Derived.DT != float32(1.0/60.0) {
		t.Errorf("expected derived DT 1/60, got %f", cfg.Derived.DT)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load("/nonexistent/path/config.yaml"); err == nil {
		t.Errorf("expected error for missing file")
	}
}

func TestCfgPanicsBeforeInit(t *testing.T) {
	global = nil
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic calling Cfg() before Init()")
		}
	}()
	Cfg()
}

func TestMustInitSetsGlobal(t *testing.T) {
	MustInit("")
	if Cfg().Grid.Width != 60 {
		t.Errorf("expected default grid width 60, got %d", Cfg().Grid.Width)
	}
}

func TestValidateRejectsNonPositiveGridDimensions(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.Grid.Width = 0
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for zero width, got %v", err)
	}
}

func TestValidateRejectsEmptyMethodsList(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.Sweep.Methods = nil
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for empty methods, got %v", err)
	}
}

func TestValidateRejectsNonPositiveAgentCount(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.Sweep.AgentCounts = []int{5, 0, 10}
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for a zero agent count, got %v", err)
	}
}

func TestValidateRejectsUnknownTopology(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.Grid.Topology = "triangular"
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for unknown topology, got %v", err)
	}
}

func TestLoadAcceptsValidDefaults(t *testing.T) {
	if _, err := Load(""); err != nil {
		t.Errorf("expected embedded defaults to validate cleanly, got %v", err)
	}
}
