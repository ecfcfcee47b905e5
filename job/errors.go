package job

import (
	"fmt"
	"time"
)

// TaskError wraps any error produced while a job was executing a given
// task. It is the error type recorded on Job.Errors and returned by
// Job.Await/Job.WaitForResult when a job ends FAILED.
type TaskError struct {
	Message  string
	Task     string
	Original error
	At       time.Time
}

func newTaskError(task string, err error) *TaskError {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &TaskError{
		Message:  msg,
		Task:     task,
		Original: err,
		At:       time.Now().UTC(),
	}
}

func (e *TaskError) Error() string {
	if e == nil {
		return ""
	}
	if e.Task == "" {
		return e.Message
	}
	return fmt.Sprintf("task %q: %s", e.Task, e.Message)
}

func (e *TaskError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Original
}

// BadTaskRef is returned when a caller looks up a task by an index or name
// that does not exist in the job's task list.
type BadTaskRef struct {
	Ref any
}

func (e *BadTaskRef) Error() string {
	return fmt.Sprintf("invalid task reference: %v", e.Ref)
}

// BadConfig is returned for malformed constructor arguments.
type BadConfig struct {
	Reason string
}

func (e *BadConfig) Error() string {
	return "bad job config: " + e.Reason
}

// CancelledError is the error surfaced by Await/WaitForResult for a job
// whose termination state is Cancelled.
type CancelledError struct {
	Name string
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("job %q was cancelled", e.Name)
}
