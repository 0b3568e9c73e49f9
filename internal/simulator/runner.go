package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/GoSim-25-26J-441/voxcraft-manager/pkg/config"
)

// Invocation is the file contract of one simulator attempt.
type Invocation struct {
	RunIndex    int
	InputDir    string
	ReportPath  string
	HistoryPath string
}

// NewInvocation builds the paths for run runIndex writing into outputDir.
func NewInvocation(runIndex int, botDir, outputDir string) Invocation {
	return Invocation{
		RunIndex:    runIndex,
		InputDir:    botDir,
		ReportPath:  filepath.Join(outputDir, ReportName(runIndex)),
		HistoryPath: filepath.Join(outputDir, fmt.Sprintf("sim_run%d.history", runIndex)),
	}
}

// ReportName is the report file name for a run.
func ReportName(runIndex int) string {
	return fmt.Sprintf("sim_run%d.xml", runIndex)
}

// Args returns the simulator command line arguments.
func (inv Invocation) Args() []string {
	return []string{"-i", inv.InputDir, "-o", inv.ReportPath, "-f"}
}

// Runner executes one simulator attempt.
type Runner interface {
	Run(ctx context.Context, inv Invocation) error
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, inv Invocation) error

func (f RunnerFunc) Run(ctx context.Context, inv Invocation) error { return f(ctx, inv) }

// ProcessRunner runs the voxcraft-sim executable as a subprocess. Stdout goes
// to the history file. The exit status is not inspected; a missing or empty
// report after the process returns is an ErrOutputIndex failure.
type ProcessRunner struct {
	Executable     string
	AttemptTimeout time.Duration
	Stderr         io.Writer
}

// NewProcessRunner returns a runner for the executable at path.
func NewProcessRunner(path string, attemptTimeout time.Duration) *ProcessRunner {
	return &ProcessRunner{Executable: path, AttemptTimeout: attemptTimeout}
}

func (r *ProcessRunner) Run(ctx context.Context, inv Invocation) error {
	hist, err := os.Create(inv.HistoryPath)
	if err != nil {
		return fmt.Errorf("open history file: %w", err)
	}
	defer hist.Close()

	// A report left by an earlier run or attempt must not pass checkReport.
	if err := os.Remove(inv.ReportPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove stale report: %w", err)
	}

	attemptCtx := ctx
	if r.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, r.AttemptTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(attemptCtx, r.Executable, inv.Args()...)
	cmd.Stdout = hist
	cmd.Stderr = r.Stderr

	runErr := cmd.Run()
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := attemptCtx.Err(); err != nil {
		return fmt.Errorf("simulator attempt exceeded %v: %w", r.AttemptTimeout, err)
	}

	var exitErr *exec.ExitError
	if runErr != nil && !errors.As(runErr, &exitErr) {
		return fmt.Errorf("start simulator: %w", runErr)
	}
	return checkReport(inv.ReportPath, runErr)
}

func checkReport(path string, runErr error) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && info.Size() == 0) {
		if runErr != nil {
			return fmt.Errorf("%w: report %s missing or empty (%v)", ErrOutputIndex, path, runErr)
		}
		return fmt.Errorf("%w: report %s missing or empty", ErrOutputIndex, path)
	}
	if err != nil {
		return fmt.Errorf("stat report: %w", err)
	}
	return nil
}

// CheckExecutables returns a ConfigurationError naming the first path that is
// missing, a directory, or not executable.
func CheckExecutables(paths ...string) error {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return config.Errorf("simulator", "%s does not exist in the working directory", p)
		}
		if info.IsDir() {
			return config.Errorf("simulator", "%s is a directory", p)
		}
		if info.Mode().Perm()&0o111 == 0 {
			return config.Errorf("simulator", "%s is not executable", p)
		}
	}
	return nil
}
