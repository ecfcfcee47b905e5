// Package polling adapts a single-attempt handler into an executor-compatible
// stage that keeps returning signal.Repeat until the wrapped handler
// succeeds or timeout expires.
package polling

import (
	"fmt"
	"reflect"
	"runtime"
	"time"

	"github.com/arborio/taskflow/job"
	"github.com/arborio/taskflow/signal"
)

// stateKey namespaces the polling wrapper's scratchpad entry so it never
// collides with a handler's own signal keys.
const stateKey = "_polling_state"

// Options configures a polling stage.
type Options struct {
	// Interval is the delay between polling attempts.
	Interval time.Duration
	// Timeout is the total wall-clock budget before giving up.
	Timeout time.Duration
	// Retryable, if set, lets a genuine handler error be treated as "poll
	// again" rather than an immediate failure, folding the retry-vs-fail
	// decision into the polling loop instead of a separate retry layer.
	Retryable func(error) bool
}

func (o Options) interval() time.Duration {
	if o.Interval <= 0 {
		return time.Second
	}
	return o.Interval
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return 300 * time.Second
	}
	return o.Timeout
}

// Error is raised when a polling stage exceeds its timeout. It is a
// specialization of job.TaskError: it carries everything a normal task
// failure does, plus the wrapped handler's package-qualified name, and
// unwraps to the last underlying error observed during polling, if any.
type Error struct {
	job.TaskError
	HandlerRef string
}

func newPollingError(task, ref string, last error) *Error {
	msg := "polling timed out"
	if ref != "" {
		msg = fmt.Sprintf("polling timed out in %s", ref)
	}
	return &Error{
		TaskError: job.TaskError{
			Message:  msg,
			Task:     task,
			Original: last,
			At:       time.Now().UTC(),
		},
		HandlerRef: ref,
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("task %q timed out: %s", e.Task, e.Message)
}

func (e *Error) Unwrap() error { return e.Original }

// state is the per-job, per-stage scratchpad the wrapper carries across
// invocations under stateKey.
type state struct {
	start    time.Time
	interval time.Duration
	timeout  time.Duration
	last     error
}

// Handler is a single polling attempt: perform one check and either return
// a final value, or signal.PollAgain to continue.
type Handler func(j *job.Job) (any, error)

// NoArgHandler adapts a zero-argument polling attempt into a Handler, for
// checks that never need the job.
func NoArgHandler(fn func() (any, error)) Handler {
	return func(_ *job.Job) (any, error) { return fn() }
}

// Task wraps handler into an executor.Handler-compatible function
// (func(*job.Job) (any, error)) that retries handler until it returns a
// non-PollAgain value or Options.Timeout elapses.
func Task(opts Options, handler Handler) func(*job.Job) (any, error) {
	ref := handlerRef(handler)
	return func(j *job.Job) (any, error) {
		st := loadOrInit(j, opts)

		value, err := handler(j)
		if err != nil {
			if opts.Retryable != nil && opts.Retryable(err) {
				st.last = err
				return checkTimeoutOrRepeat(j, st, ref)
			}
			return nil, err
		}

		if again, ok := value.(signal.PollAgain); ok {
			if again.Reason != "" {
				msg := again.Reason
				j.SetTaskProgress(nil, &msg)
			}
			return checkTimeoutOrRepeat(j, st, ref)
		}

		j.ClearSignal(stateKey)
		msg := "Polling completed"
		j.SetTaskProgress(nil, &msg)
		return value, nil
	}
}

// nowFunc is a seam over time.Now so tests can drive the timeout clock
// without sleeping in real time.
var nowFunc = time.Now

func loadOrInit(j *job.Job, opts Options) *state {
	if raw, ok := j.GetSignal(stateKey); ok {
		if st, ok := raw.(*state); ok {
			return st
		}
	}
	st := &state{
		start:    nowFunc(),
		interval: opts.interval(),
		timeout:  opts.timeout(),
	}
	j.SetSignal(stateKey, st)
	pct := 0.0
	msg := "Polling initiated"
	j.SetTaskProgress(&pct, &msg)
	return st
}

func checkTimeoutOrRepeat(j *job.Job, st *state, ref string) (any, error) {
	if nowFunc().Sub(st.start) > st.timeout {
		j.ClearSignal(stateKey)
		return nil, newPollingError(j.Task(), ref, st.last)
	}
	return signal.Repeat{Delay: st.interval}, nil
}

func handlerRef(h Handler) string {
	pc := reflect.ValueOf(h).Pointer()
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return ""
	}
	return fn.Name()
}
