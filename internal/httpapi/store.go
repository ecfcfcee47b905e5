package httpapi

import (
	"sync"

	"github.com/google/uuid"

	"github.com/arborio/taskflow/job"
)

// JobStore tracks every job submitted through the demo server so the
// introspection endpoints can list and look them up by id. The executor
// itself only tracks aggregate Stats; identity tracking is a concern of
// whatever submits jobs, not of the scheduler.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]*job.Job
	// order preserves submission order for List, independent of Go's
	// unspecified map iteration order.
	order []uuid.UUID
}

// NewJobStore constructs an empty JobStore.
func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[uuid.UUID]*job.Job)}
}

// Track records j for later lookup. It returns j so it composes with
// Executor.Submit: store.Track(executor.Submit(j)).
func (s *JobStore) Track(j *job.Job) *job.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[j.ID()]; !exists {
		s.order = append(s.order, j.ID())
	}
	s.jobs[j.ID()] = j
	return j
}

// Get returns the job registered under id, if any.
func (s *JobStore) Get(id uuid.UUID) (*job.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	return j, ok
}

// List returns every tracked job's snapshot, oldest submission first.
func (s *JobStore) List() []job.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]job.Snapshot, 0, len(s.order))
	for _, id := range s.order {
		if j, ok := s.jobs[id]; ok {
			out = append(out, j.Snapshot())
		}
	}
	return out
}
