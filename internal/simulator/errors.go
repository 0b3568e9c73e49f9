package simulator

import (
	"errors"
	"fmt"
	"syscall"
)

// FailureClass groups simulator failures by how the invoker reacts to them.
type FailureClass string

const (
	ClassNone         FailureClass = ""
	ClassTransientIO  FailureClass = "transient_io"
	ClassOutputIndex  FailureClass = "output_index"
	ClassUnclassified FailureClass = "unclassified"
)

// Transient reports whether the class is in the retry allow-list.
func (c FailureClass) Transient() bool {
	return c == ClassTransientIO || c == ClassOutputIndex
}

var (
	// ErrTransientIO marks resource-temporarily-unavailable style failures.
	ErrTransientIO = errors.New("transient simulator i/o failure")
	// ErrOutputIndex marks missing, truncated or out-of-range simulator output.
	ErrOutputIndex = errors.New("simulator output out of range")
)

// Classify maps an attempt error onto a FailureClass.
func Classify(err error) FailureClass {
	switch {
	case err == nil:
		return ClassNone
	case errors.Is(err, ErrOutputIndex):
		return ClassOutputIndex
	case errors.Is(err, ErrTransientIO),
		errors.Is(err, syscall.EAGAIN),
		errors.Is(err, syscall.EINTR),
		errors.Is(err, syscall.ETXTBSY):
		return ClassTransientIO
	default:
		return ClassUnclassified
	}
}

// UnclassifiedSimulationError is returned when an attempt fails outside the
// transient allow-list. The evaluation is aborted.
type UnclassifiedSimulationError struct {
	RunIndex int
	Attempt  int
	Err      error
}

func (e *UnclassifiedSimulationError) Error() string {
	return fmt.Sprintf("simulation run %d failed on attempt %d: %v", e.RunIndex, e.Attempt, e.Err)
}

func (e *UnclassifiedSimulationError) Unwrap() error { return e.Err }

// RetriesExhaustedError is returned when every allowed attempt failed with a
// transient error.
type RetriesExhaustedError struct {
	RunIndex int
	Attempts int
	Last     error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("simulation run %d failed after %d attempts: %v", e.RunIndex, e.Attempts, e.Last)
}

func (e *RetriesExhaustedError) Unwrap() error { return e.Last }
