package config

import (
	"fmt"
	"os"

	"github.com/GoSim-25-26J-441/voxcraft-manager/pkg/models"
)

const (
	DefaultMutationFraction = 0.1
	DefaultExecutable       = "./voxcraft-sim"
	DefaultWorker           = "./vx3_node_worker"
	DefaultMaxAttempts      = 5
)

// LoadConfig loads and parses a configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := ParseConfigYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns a config for a two-material experiment rooted at the given
// bot and output directories.
func Default(botDir, outputDir string) *Config {
	cfg := &Config{
		MaterialCount: 2,
		Multipliers: []float64{
			1e7, 1.0, 0.8, 1000, 0.01,
			1e7, 1.0, 0.8, 1000, 0.01,
		},
		BotDir:    botDir,
		OutputDir: outputDir,
	}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.MutationFraction == 0 {
		cfg.MutationFraction = DefaultMutationFraction
	}
	if cfg.Simulator.Executable == "" {
		cfg.Simulator.Executable = DefaultExecutable
	}
	if cfg.Simulator.Worker == "" {
		cfg.Simulator.Worker = DefaultWorker
	}
	if cfg.Retries.MaxAttempts == 0 {
		cfg.Retries.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Retries.Backoff == "" {
		cfg.Retries.Backoff = "exponential"
	}
	if cfg.Retries.BaseMs == 0 {
		cfg.Retries.BaseMs = 100
	}
	if cfg.Retries.MaxMs == 0 {
		cfg.Retries.MaxMs = 5000
	}

	p := &cfg.Physics
	if p.LatticeDim == 0 {
		p.LatticeDim = 0.01
	}
	if p.DtFrac == 0 {
		p.DtFrac = 0.95
	}
	if p.StopTime == 0 {
		p.StopTime = 5
	}
	if p.RecordStep == 0 {
		p.RecordStep = 100
	}
	if p.Gravity == 0 {
		p.Gravity = -9.81
	}
	if p.TempAmplitude == 0 {
		p.TempAmplitude = 39
	}
	if p.TempPeriod == 0 {
		p.TempPeriod = 0.025
	}
	if p.PoissonsRatio == 0 {
		p.PoissonsRatio = 0.35
	}

	if cfg.Store.Kind == "" {
		cfg.Store.Kind = "memory"
	}
}

// validateConfig performs validation on the configuration
func validateConfig(cfg *Config) error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return Errorf("log_level", "invalid value %q (must be debug, info, warn, or error)", cfg.LogLevel)
	}

	if err := ValidateMaterials(cfg.MaterialCount, cfg.Multipliers); err != nil {
		return err
	}
	if cfg.MutationFraction <= 0 || cfg.MutationFraction >= 1 {
		return Errorf("mutation_fraction", "must be in (0, 1), got %g", cfg.MutationFraction)
	}

	if cfg.BotDir == "" {
		return Errorf("bot_dir", "cannot be empty")
	}
	if cfg.OutputDir == "" {
		return Errorf("output_dir", "cannot be empty")
	}

	if _, err := cfg.Simulator.GetAttemptTimeout(); err != nil {
		return Errorf("simulator.attempt_timeout", "%v", err)
	}

	if err := validateRetries(&cfg.Retries); err != nil {
		return err
	}
	if err := validatePhysics(&cfg.Physics); err != nil {
		return err
	}

	switch cfg.Store.Kind {
	case "none", "memory":
	case "sqlite":
		if cfg.Store.Path == "" {
			return Errorf("store.path", "required for sqlite store")
		}
	default:
		return Errorf("store.kind", "unsupported backend %q", cfg.Store.Kind)
	}

	return nil
}

// ValidateMaterials checks that multipliers split into materialCount chunks of
// models.ParamsPerMaterial values.
func ValidateMaterials(materialCount int, multipliers []float64) error {
	if materialCount <= 0 {
		return Errorf("material_count", "must be positive, got %d", materialCount)
	}
	if len(multipliers) == 0 {
		return Errorf("multipliers", "cannot be empty")
	}
	if len(multipliers)%materialCount != 0 {
		return Errorf("multipliers", "length %d is not a multiple of material_count %d", len(multipliers), materialCount)
	}
	if perMat := len(multipliers) / materialCount; perMat != models.ParamsPerMaterial {
		return Errorf("multipliers", "%d parameters per material, expected %d", perMat, models.ParamsPerMaterial)
	}
	return nil
}

func validateRetries(r *Retries) error {
	if r.MaxAttempts < 1 {
		return Errorf("retries.max_attempts", "must be at least 1, got %d", r.MaxAttempts)
	}
	validBackoffs := map[string]bool{
		"none":        true,
		"constant":    true,
		"linear":      true,
		"exponential": true,
	}
	if !validBackoffs[r.Backoff] {
		return Errorf("retries.backoff", "invalid value %q", r.Backoff)
	}
	if r.BaseMs < 0 || r.MaxMs < 0 {
		return Errorf("retries", "base_ms and max_ms cannot be negative")
	}
	return nil
}

func validatePhysics(p *Physics) error {
	if p.LatticeDim <= 0 {
		return Errorf("physics.lattice_dim", "must be positive")
	}
	if p.DtFrac <= 0 || p.DtFrac > 1 {
		return Errorf("physics.dt_frac", "must be in (0, 1]")
	}
	if p.StopTime <= 0 {
		return Errorf("physics.stop_time", "must be positive")
	}
	if p.RecordStep < 0 {
		return Errorf("physics.record_step", "cannot be negative")
	}
	if p.TempPeriod <= 0 {
		return Errorf("physics.temp_period", "must be positive")
	}
	return nil
}
