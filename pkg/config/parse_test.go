package config

import (
	"errors"
	"testing"
)

const minimalYAML = `
material_count: 1
multipliers: [1000000, 1.0, 0.5, 1000, 0.01]
bot_dir: bot
output_dir: out
`

func TestParseConfigYAMLString(t *testing.T) {
	cfg, err := ParseConfigYAMLString(minimalYAML)
	if err != nil {
		t.Fatalf("ParseConfigYAMLString: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level, got %q", cfg.LogLevel)
	}
	if cfg.MutationFraction != DefaultMutationFraction {
		t.Errorf("expected default mutation fraction, got %g", cfg.MutationFraction)
	}
	if cfg.Simulator.Executable != DefaultExecutable || cfg.Simulator.Worker != DefaultWorker {
		t.Errorf("expected default executables, got %+v", cfg.Simulator)
	}
	if cfg.Retries.MaxAttempts != DefaultMaxAttempts {
		t.Errorf("expected default max attempts, got %d", cfg.Retries.MaxAttempts)
	}
	if cfg.Store.Kind != "memory" {
		t.Errorf("expected memory store by default, got %q", cfg.Store.Kind)
	}
	timeout, err := cfg.Simulator.GetAttemptTimeout()
	if err != nil || timeout != 0 {
		t.Errorf("expected zero timeout, got %v (%v)", timeout, err)
	}
}

func TestParseConfigYAMLMultiplierMismatch(t *testing.T) {
	yamlText := `
material_count: 2
multipliers: [1, 2, 3, 4, 5, 6, 7]
bot_dir: bot
output_dir: out
`
	_, err := ParseConfigYAMLString(yamlText)
	if err == nil {
		t.Fatal("expected error for multiplier length mismatch")
	}
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %T: %v", err, err)
	}
	if cfgErr.Field != "multipliers" {
		t.Errorf("expected multipliers field, got %q", cfgErr.Field)
	}
}

func TestParseConfigYAMLInvalid(t *testing.T) {
	_, err := ParseConfigYAML([]byte("multipliers: {"))
	if err == nil {
		t.Fatal("expected yaml error")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := Default("bot", "out")
	data, err := Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	back, err := ParseConfigYAML(data)
	if err != nil {
		t.Fatalf("ParseConfigYAML: %v", err)
	}
	if back.MaterialCount != cfg.MaterialCount || len(back.Multipliers) != len(cfg.Multipliers) {
		t.Errorf("round trip changed materials: %+v", back)
	}
}
