// Package simulator drives the external voxel physics executable and retries
// transient failures with a bounded backoff loop.
package simulator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoSim-25-26J-441/voxcraft-manager/pkg/logger"
	"github.com/GoSim-25-26J-441/voxcraft-manager/pkg/utils"
)

// State is the invoker state for one run.
type State string

const (
	StateAttempting State = "attempting"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Report summarizes one Run call.
type Report struct {
	RunIndex int
	State    State
	Attempts int
	Retries  int
	Elapsed  time.Duration
}

// Invoker runs the simulator for one run index until it succeeds, fails
// outside the transient allow-list, or exhausts its retry policy.
type Invoker struct {
	runner Runner
	policy *RetryPolicy
	log    *slog.Logger
}

// InvokerOption configures an Invoker.
type InvokerOption func(*Invoker)

// WithLogger sets the logger used for run and retry events.
func WithLogger(l *slog.Logger) InvokerOption {
	return func(i *Invoker) { i.log = l }
}

// NewInvoker creates an invoker. A nil policy allows a single attempt.
func NewInvoker(runner Runner, policy *RetryPolicy, opts ...InvokerOption) *Invoker {
	if policy == nil {
		policy = NewRetryPolicy(1, nil)
	}
	inv := &Invoker{runner: runner, policy: policy, log: logger.Default}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Run simulates run runIndex reading botDir and writing sim_run{N}.xml and
// sim_run{N}.history into outputDir. Every attempt uses the same arguments.
func (i *Invoker) Run(ctx context.Context, runIndex int, botDir, outputDir string) (Report, error) {
	call := NewInvocation(runIndex, botDir, outputDir)
	rep := Report{RunIndex: runIndex, State: StateAttempting}
	start := time.Now()

	fail := func(err error) (Report, error) {
		rep.State = StateFailed
		rep.Elapsed = time.Since(start)
		i.log.Error("simulation failed", "run", runIndex, "attempts", rep.Attempts, "error", err)
		return rep, err
	}

	i.log.Info("running simulation", "run", runIndex)
	for {
		rep.Attempts++
		err := i.runner.Run(ctx, call)
		if err == nil {
			rep.State = StateDone
			rep.Elapsed = time.Since(start)
			i.log.Debug("simulation done", "run", runIndex, "attempts", rep.Attempts, "elapsed", rep.Elapsed)
			return rep, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fail(fmt.Errorf("simulation run %d cancelled: %w", runIndex, ctxErr))
		}

		class := Classify(err)
		if !class.Transient() {
			return fail(&UnclassifiedSimulationError{RunIndex: runIndex, Attempt: rep.Attempts, Err: err})
		}
		if !i.policy.ShouldRetry(rep.Attempts, err) {
			return fail(&RetriesExhaustedError{RunIndex: runIndex, Attempts: rep.Attempts, Last: err})
		}

		delay := i.policy.GetBackoffDuration(rep.Attempts)
		rep.Retries++
		i.log.Warn("transient simulator failure, resimulating",
			"run", runIndex,
			"attempt", rep.Attempts,
			"class", string(class),
			"delay", delay,
			"error", err,
		)
		if err := utils.Wait(ctx, delay); err != nil {
			return fail(fmt.Errorf("simulation run %d cancelled: %w", runIndex, err))
		}
	}
}
