package executor

import "fmt"

// UnknownTaskError is recorded against a job when its current stage name has
// no registered handler.
type UnknownTaskError struct {
	Task string
}

func (e *UnknownTaskError) Error() string {
	return fmt.Sprintf("executor: no handler registered for task %q", e.Task)
}

// panicError wraps a recovered handler panic so it can travel through
// Job.RecordError like any other error. The original panic value is logged
// separately; it is intentionally not embedded in the message, which may be
// surfaced to callers that shouldn't see raw panic payloads.
type panicError struct{ val any }

func (e *panicError) Error() string { return "executor: handler panicked" }

func errFromRecover(v any) error { return &panicError{val: v} }
