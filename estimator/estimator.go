package estimator

import (
	"errors"
	"fmt"
)

var (
	ErrNoDepthSource = errors.New("estimator: no depth source configured")
)

// A ProgressFn receives percentages in the [0, 100] range at genuine
// estimation checkpoints. Callbacks are fired for UI feedback only and
// carry no control-flow meaning.
type ProgressFn func(percent int)

// An EstimationError indicates that the external depth service failed or
// returned a malformed tensor. Callers are expected to recover by falling
// back to a lower-fidelity estimator or retrying.
type EstimationError struct {
	Op  string
	Err error
}

func (e *EstimationError) Error() string {
	return fmt.Sprintf("estimator: %s: %v", e.Op, e.Err)
}

func (e *EstimationError) Unwrap() error {
	return e.Err
}

func estimationErrorf(op, format string, args ...interface{}) *EstimationError {
	return &EstimationError{Op: op, Err: fmt.Errorf(format, args...)}
}
