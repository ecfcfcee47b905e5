// Package executor drives many jobs concurrently over a shared pool of task
// handlers: it registers handlers by name, accepts jobs, dispatches each
// job's current stage, interprets the handler's return value, and advances
// or terminates the job accordingly.
package executor

import (
	"fmt"
	"sync"

	"github.com/arborio/taskflow/job"
)

// Handler is a task stage implementation. It receives the job so it can
// read input/prior output and report progress, and returns either a
// normal output value, a signal.Repeat, or an error.
type Handler func(j *job.Job) (any, error)

// NoArgHandler adapts a handler that does not need the job at all into a
// Handler. The kind of handler a task name is bound to is decided once,
// here, at registration time, rather than re-inspected on every dispatch.
func NoArgHandler(fn func() (any, error)) Handler {
	return func(_ *job.Job) (any, error) { return fn() }
}

// Registry is a concurrency-safe task_name -> Handler table. At most one
// handler may be registered per task name; registration is expected to
// happen once at startup, lookups happen continuously from every in-flight
// job's driver goroutine.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry constructs an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register binds name to h. It fails if h is nil, name is empty, or a
// handler is already registered for name — duplicate registration is almost
// always a wiring mistake, so it is rejected rather than silently resolved.
func (r *Registry) Register(name string, h Handler) error {
	if h == nil {
		return fmt.Errorf("executor: nil handler for task %q", name)
	}
	if name == "" {
		return fmt.Errorf("executor: empty task name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("executor: handler already registered for task %q", name)
	}
	r.handlers[name] = h
	return nil
}

// RegisterNoArg is Register for the no-argument handler signature.
func (r *Registry) RegisterNoArg(name string, fn func() (any, error)) error {
	return r.Register(name, NoArgHandler(fn))
}

// Get returns the handler bound to name, and whether one exists.
func (r *Registry) Get(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}
