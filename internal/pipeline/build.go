package pipeline

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/GoSim-25-26J-441/voxcraft-manager/internal/fitness"
	"github.com/GoSim-25-26J-441/voxcraft-manager/internal/materials"
	"github.com/GoSim-25-26J-441/voxcraft-manager/internal/metrics"
	"github.com/GoSim-25-26J-441/voxcraft-manager/internal/scenario"
	"github.com/GoSim-25-26J-441/voxcraft-manager/internal/simulator"
	"github.com/GoSim-25-26J-441/voxcraft-manager/internal/store"
	"github.com/GoSim-25-26J-441/voxcraft-manager/pkg/config"
	"github.com/GoSim-25-26J-441/voxcraft-manager/pkg/utils"
)

// FromConfig wires the process-backed pipeline described by cfg. Both
// simulator executables must exist before any evaluation runs.
func FromConfig(cfg *config.Config, st store.Store, log *slog.Logger) (*Pipeline, error) {
	if err := simulator.CheckExecutables(cfg.Simulator.Executable, cfg.Simulator.Worker); err != nil {
		return nil, err
	}
	timeout, err := cfg.Simulator.GetAttemptTimeout()
	if err != nil {
		return nil, config.Errorf("simulator.attempt_timeout", "%v", err)
	}
	runner := simulator.NewProcessRunner(cfg.Simulator.Executable, timeout)
	return FromConfigWithRunner(cfg, runner, st, log)
}

// FromConfigWithRunner is FromConfig with a caller-supplied simulator runner
// and no executable check.
func FromConfigWithRunner(cfg *config.Config, runner simulator.Runner, st store.Store, log *slog.Logger) (*Pipeline, error) {
	conv, err := materials.NewConverter(cfg.MaterialCount, cfg.Multipliers,
		materials.WithMutationFraction(cfg.MutationFraction),
		materials.WithColorSource(utils.NewRandSource(cfg.Seed)),
	)
	if err != nil {
		return nil, fmt.Errorf("build converter: %w", err)
	}

	var invOpts []simulator.InvokerOption
	if log != nil {
		invOpts = append(invOpts, simulator.WithLogger(log))
	}
	inv := simulator.NewInvoker(runner, simulator.NewRetryPolicyFromConfig(&cfg.Retries), invOpts...)

	ext := fitness.NewReportExtractor(filepath.Join(cfg.OutputDir, DataDir), "")

	return New(Options{
		BotDir:    cfg.BotDir,
		OutputDir: cfg.OutputDir,
		Store:     st,
		Metrics:   metrics.NewCollector(),
		Logger:    log,
	}, conv, scenario.NewWriter(cfg.Physics), inv, ext)
}
