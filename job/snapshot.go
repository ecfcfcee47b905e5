package job

import "time"

// StageSnapshot is a read-only copy of one stage's bookkeeping, safe to hold
// and inspect after the job has moved on.
type StageSnapshot struct {
	Index      int
	Name       string
	EnteredAt  time.Time
	LeftAt     *time.Time
	DurationMs float64
	Progress   *Progress
}

// Snapshot is a read-only, point-in-time copy of a job's introspectable
// state. It exists so callers (a status endpoint, a test assertion) can
// inspect a job without holding its lock or racing its driver.
type Snapshot struct {
	ID           string
	Name         string
	Tasks        []string
	CurrentIndex int
	CurrentTask  string
	Termination  TerminationState
	Progress     float64
	DurationMs   float64
	Errors       []*TaskError
	Stages       []StageSnapshot
}

// Snapshot captures the job's current state.
func (j *Job) Snapshot() Snapshot {
	j.mu.Lock()
	tasks := make([]string, len(j.tasks))
	copy(tasks, j.tasks)
	currentIndex := j.currentIndex
	currentTask := j.taskNameLocked(currentIndex)
	termination := j.termination
	errs := make([]*TaskError, len(j.errors))
	copy(errs, j.errors)

	now := time.Now().UTC()
	stages := make([]StageSnapshot, 0, len(tasks))
	for i, name := range tasks {
		meta, ok := j.taskMetadata[i]
		if !ok {
			continue
		}
		var progress *Progress
		if meta.Progress != nil {
			cp := *meta.Progress
			progress = &cp
		}
		stages = append(stages, StageSnapshot{
			Index:      i,
			Name:       name,
			EnteredAt:  meta.EnteredAt,
			LeftAt:     meta.LeftAt,
			DurationMs: meta.durationMs(now),
			Progress:   progress,
		})
	}
	j.mu.Unlock()

	return Snapshot{
		ID:           j.id.String(),
		Name:         j.Name(),
		Tasks:        tasks,
		CurrentIndex: currentIndex,
		CurrentTask:  currentTask,
		Termination:  termination,
		Progress:     j.Progress(),
		DurationMs:   j.TotalDurationMs(),
		Errors:       errs,
		Stages:       stages,
	}
}
