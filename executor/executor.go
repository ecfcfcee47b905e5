package executor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/arborio/taskflow/internal/envconfig"
	"github.com/arborio/taskflow/internal/telemetry"
	"github.com/arborio/taskflow/job"
	"github.com/arborio/taskflow/signal"
)

// Stats is a read-only snapshot of an Executor's job counters.
type Stats struct {
	Submitted int64
	Running   int64
	Succeeded int64
	Failed    int64
	Cancelled int64
}

// Option configures an Executor at construction time.
type Option func(*Executor)

// WithLogger sets the executor's diagnostic logger. The default is a no-op
// logger.
func WithLogger(l *telemetry.Logger) Option {
	return func(e *Executor) { e.log = l }
}

// WithWorkerPoolSize bounds how many handler invocations may run
// concurrently across all in-flight jobs, so CPU-bound handlers can't
// starve the rest of the scheduler. n <= 0 means unbounded. The default is
// read from TASKFLOW_WORKER_POOL_SIZE, falling back to 64.
func WithWorkerPoolSize(n int) Option {
	return func(e *Executor) {
		if n <= 0 {
			e.sem = nil
			return
		}
		e.sem = semaphore.NewWeighted(int64(n))
	}
}

// WithOnTerminal registers a callback invoked once, from the job's own
// driver goroutine, the moment the job reaches a terminal state.
func WithOnTerminal(fn func(*job.Job)) Option {
	return func(e *Executor) { e.onTerminal = fn }
}

// Executor drives many jobs concurrently: one goroutine per in-flight job,
// each strictly serializing that job's own stages, dispatching to handlers
// registered in a shared Registry.
type Executor struct {
	registry *Registry
	log      *telemetry.Logger
	sem      *semaphore.Weighted

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	onTerminal func(*job.Job)

	mu     sync.Mutex
	closed bool

	submitted, running, succeeded, failed, cancelled atomic.Int64
}

// New constructs an Executor bound to registry. registry must not be
// modified concurrently with executor use beyond its own internal locking
// (Register is safe to call before or after Submit calls, since lookups
// take a read lock).
func New(registry *Registry, opts ...Option) *Executor {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Executor{
		registry: registry,
		log:      telemetry.Noop(),
		ctx:      ctx,
		cancel:   cancel,
	}
	WithWorkerPoolSize(envconfig.GetInt("TASKFLOW_WORKER_POOL_SIZE", 64))(e)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Submit accepts j for execution and returns immediately; j runs to
// completion on its own goroutine in the background. Submitting a job that
// is already terminal is a no-op; submitting to a shut-down executor
// cancels the job so awaiters are not left blocked on a job that will
// never run.
func (e *Executor) Submit(j *job.Job) *job.Job {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		j.Cancel()
		return j
	}
	if j.IsTerminal() {
		return j
	}

	e.submitted.Add(1)
	e.running.Add(1)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer e.running.Add(-1)
		e.driveLoop(j)
	}()
	return j
}

// Shutdown stops the executor. When wait is true, it blocks until every
// in-flight job drains to a terminal state on its own. When wait is false,
// it cancels all in-flight jobs (they transition to Cancelled) and then
// blocks until their driver goroutines have observed the cancellation and
// exited. Either way, Shutdown does not return until no driver goroutine
// remains.
func (e *Executor) Shutdown(wait bool) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()

	if !wait {
		e.cancel()
	}
	e.wg.Wait()
}

// Stats returns a snapshot of the executor's job counters.
func (e *Executor) Stats() Stats {
	return Stats{
		Submitted: e.submitted.Load(),
		Running:   e.running.Load(),
		Succeeded: e.succeeded.Load(),
		Failed:    e.failed.Load(),
		Cancelled: e.cancelled.Load(),
	}
}

// driveLoop is the per-job driver: advance, dispatch, interpret, repeat.
// No two stages of the same job ever run concurrently,
// since this goroutine is the only mutator of j while it is in flight.
func (e *Executor) driveLoop(j *job.Job) {
	log := e.log.With("job", j.Name())
	defer e.recordTerminal(j)

	for {
		if e.ctx.Err() != nil {
			j.Cancel()
			return
		}

		j.Advance()
		if j.IsTerminal() {
			return
		}

		for {
			task := j.Task()
			h, ok := e.registry.Get(task)
			if !ok {
				log.Warn("no handler registered", "task", task)
				j.RecordError(&UnknownTaskError{Task: task})
				return
			}

			value, err := e.invoke(h, j)
			if err != nil {
				log.Warn("task failed", "task", task, "error", err)
				j.RecordError(err)
				return
			}

			if rep, ok := value.(signal.Repeat); ok {
				if !e.sleep(rep.Delay) {
					j.Cancel()
					return
				}
				continue
			}

			if value != nil {
				j.SetTaskOutput(value)
			}
			break
		}
	}
}

// invoke runs h, bounding concurrent handler execution through the worker
// pool semaphore and converting a handler panic into an error the same way
// a returned error is handled, instead of crashing the executor.
func (e *Executor) invoke(h Handler, j *job.Job) (value any, err error) {
	if e.sem != nil {
		if acqErr := e.sem.Acquire(e.ctx, 1); acqErr != nil {
			return nil, acqErr
		}
		defer e.sem.Release(1)
	}

	defer func() {
		if r := recover(); r != nil {
			e.log.Error("handler panic", "job", j.Name(), "panic", r)
			err = errFromRecover(r)
		}
	}()

	return h(j)
}

// sleep waits for d or until the executor is shut down without waiting,
// returning false in the latter case.
func (e *Executor) sleep(d time.Duration) bool {
	if d <= 0 {
		return e.ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-e.ctx.Done():
		return false
	}
}

func (e *Executor) recordTerminal(j *job.Job) {
	switch j.TerminationState() {
	case job.Success:
		e.succeeded.Add(1)
	case job.Failed:
		e.failed.Add(1)
	case job.Cancelled:
		e.cancelled.Add(1)
	}
	if e.onTerminal != nil {
		e.onTerminal(j)
	}
}
