package config

import "time"

// Config represents a complete experiment configuration
type Config struct {
	LogLevel         string    `yaml:"log_level"`
	LogFile          string    `yaml:"log_file,omitempty"`
	Seed             int64     `yaml:"seed,omitempty"`
	MaterialCount    int       `yaml:"material_count"`
	MutationFraction float64   `yaml:"mutation_fraction"`
	Multipliers      []float64 `yaml:"multipliers"`
	BotDir           string    `yaml:"bot_dir"`
	OutputDir        string    `yaml:"output_dir"`
	Simulator        Simulator `yaml:"simulator"`
	Retries          Retries   `yaml:"retries"`
	Physics          Physics   `yaml:"physics"`
	Store            Store     `yaml:"store"`
}

// Simulator describes the external physics executables
type Simulator struct {
	Executable     string `yaml:"executable"`
	Worker         string `yaml:"worker"`
	AttemptTimeout string `yaml:"attempt_timeout,omitempty"` // e.g. "10m"; empty waits forever
}

// Retries configures the transient-failure retry loop around the simulator
type Retries struct {
	MaxAttempts int    `yaml:"max_attempts"`
	Backoff     string `yaml:"backoff"` // none, constant, linear, exponential
	BaseMs      int    `yaml:"base_ms"`
	MaxMs       int    `yaml:"max_ms"`
}

// Physics holds the simulator settings written into the scenario file
type Physics struct {
	LatticeDim    float64 `yaml:"lattice_dim"`
	DtFrac        float64 `yaml:"dt_frac"`
	StopTime      float64 `yaml:"stop_time"`
	RecordStep    int     `yaml:"record_step"`
	Gravity       float64 `yaml:"gravity"`
	TempAmplitude float64 `yaml:"temp_amplitude"`
	TempPeriod    float64 `yaml:"temp_period"`
	PoissonsRatio float64 `yaml:"poissons_ratio"`
}

// Store selects where evaluation history is kept
type Store struct {
	Kind string `yaml:"kind"` // none, memory, sqlite
	Path string `yaml:"path,omitempty"`
}

// GetAttemptTimeout parses the per-attempt timeout; zero means no timeout
func (s *Simulator) GetAttemptTimeout() (time.Duration, error) {
	if s.AttemptTimeout == "" {
		return 0, nil
	}
	return time.ParseDuration(s.AttemptTimeout)
}

// GetBaseDelay returns the base backoff delay
func (r *Retries) GetBaseDelay() time.Duration {
	return time.Duration(r.BaseMs) * time.Millisecond
}

// GetMaxDelay returns the backoff cap
func (r *Retries) GetMaxDelay() time.Duration {
	return time.Duration(r.MaxMs) * time.Millisecond
}
