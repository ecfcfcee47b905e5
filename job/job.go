// Package job implements the per-job state machine: an ordered list of named
// task stages, per-stage data/output/progress/metadata, error capture,
// termination states, and the awaitable completion contract.
//
// A Job is created with a task list and input, handed to an executor, and
// awaited. The executor is the only owner of a Job while a stage is
// in-flight; callers elsewhere may safely read a Job's introspection methods
// (Progress, Result, Snapshot, ...) concurrently with that ownership, since
// every mutating method takes the job's own lock.
package job

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TerminationState is the closed set of terminal states a Job may reach.
// Unset means the job has not yet terminated.
type TerminationState int

const (
	Unset TerminationState = iota
	Success
	Failed
	Cancelled
)

func (s TerminationState) String() string {
	switch s {
	case Success:
		return "success"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	default:
		return "unset"
	}
}

// Progress is a stage's completion percentage (0..1) and an optional
// human-readable message.
type Progress struct {
	Percent float64
	Message string
}

// Meta is the per-stage timing and progress record. Index -1 holds the
// record for the job's input, entered at construction time.
type Meta struct {
	EnteredAt time.Time
	LeftAt    *time.Time
	Progress  *Progress
}

func (m *Meta) durationMs(now time.Time) float64 {
	end := now
	if m.LeftAt != nil {
		end = *m.LeftAt
	}
	return end.Sub(m.EnteredAt).Seconds() * 1000
}

// defaultTasks is used when New is called with a nil task list.
var defaultTasks = []string{"single_task"}

// Job is a workload instance progressing through a fixed, ordered list of
// named task stages.
type Job struct {
	mu sync.Mutex

	id   uuid.UUID
	name string

	tasks        []string
	currentIndex int

	taskData     map[int]any
	taskOutputs  map[int]any
	taskMetadata map[int]*Meta
	signals      map[string]any
	errors       []*TaskError

	termination TerminationState
	done        chan struct{}
	doneClosed  bool
}

// New constructs a Job. tasks defaults to ["single_task"] when nil; an
// explicitly empty, non-nil slice is rejected with BadConfig. name defaults
// to the generated id when empty.
func New(tasks []string, data any, name string) (*Job, error) {
	if tasks == nil {
		tasks = defaultTasks
	}
	if len(tasks) == 0 {
		return nil, &BadConfig{Reason: "tasks must be a non-empty list"}
	}
	cp := make([]string, len(tasks))
	copy(cp, tasks)

	now := time.Now().UTC()
	j := &Job{
		id:           uuid.New(),
		name:         name,
		tasks:        cp,
		currentIndex: -1,
		taskData:     map[int]any{-1: data},
		taskOutputs:  map[int]any{},
		taskMetadata: map[int]*Meta{-1: {EnteredAt: now}},
		signals:      map[string]any{},
		done:         make(chan struct{}),
	}
	return j, nil
}

// ID returns the job's unique, opaque identifier.
func (j *Job) ID() uuid.UUID { return j.id }

// Name returns the job's human name, or "job_<id>" when none was set.
func (j *Job) Name() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.name == "" {
		return "job_" + j.id.String()
	}
	return j.name
}

// Tasks returns a copy of the job's immutable task list.
func (j *Job) Tasks() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]string, len(j.tasks))
	copy(out, j.tasks)
	return out
}

// CurrentIndex returns the job's current stage index, -1 before the first
// advancement.
func (j *Job) CurrentIndex() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.currentIndex
}

// Task returns the name of the current stage, or "" before the first
// advancement. Once the job is terminal it still names the stage the job
// was on when it terminated.
func (j *Job) Task() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.taskNameLocked(j.currentIndex)
}

func (j *Job) taskNameLocked(idx int) string {
	if idx < 0 || idx >= len(j.tasks) {
		return ""
	}
	return j.tasks[idx]
}

// TerminationState returns the job's current termination state.
func (j *Job) TerminationState() TerminationState {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.termination
}

// IsTerminal reports whether the job has reached any terminal state.
func (j *Job) IsTerminal() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.termination != Unset
}

// Done returns a channel that is closed once the job reaches a terminal
// state. It is the completion signal the await contract is built on.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Advance moves the job to its next stage and returns the new current
// index. If a stage was running, its progress is stamped to 1.0 and its
// left_at recorded. If the job was already on its last stage, it
// transitions to Success. Advance is a no-op once the job is terminal.
func (j *Job) Advance() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.termination != Unset {
		return j.currentIndex
	}

	now := time.Now().UTC()
	if j.currentIndex >= 0 {
		j.setProgressLocked(j.currentIndex, ptrFloat(1.0), nil, true)
		j.stampLeftLocked(j.currentIndex, now)
	}

	if j.currentIndex+1 >= len(j.tasks) {
		j.termination = Success
		j.closeDoneLocked()
		return j.currentIndex
	}

	j.currentIndex++
	j.taskMetadata[j.currentIndex] = &Meta{EnteredAt: now}
	return j.currentIndex
}

// SetCurrentTask jumps the job directly to a stage, by index (int) or by
// name (string). It does not stamp left_at on the stage it leaves or reset
// progress the way Advance does; it only records entered_at for the target
// stage if that stage has never been entered. It is a direct cursor move for
// control-flow helpers that need to resume at a specific stage.
func (j *Job) SetCurrentTask(ref any) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	idx, err := j.resolveRefLocked(ref)
	if err != nil {
		return err
	}
	j.currentIndex = idx
	if _, ok := j.taskMetadata[idx]; !ok {
		j.taskMetadata[idx] = &Meta{EnteredAt: time.Now().UTC()}
	}
	return nil
}

func (j *Job) resolveRefLocked(ref any) (int, error) {
	switch v := ref.(type) {
	case nil:
		return j.currentIndex, nil
	case int:
		if v < -1 || v >= len(j.tasks) {
			return 0, &BadTaskRef{Ref: ref}
		}
		return v, nil
	case string:
		for i, t := range j.tasks {
			if t == v {
				return i, nil
			}
		}
		return 0, &BadTaskRef{Ref: ref}
	default:
		return 0, &BadTaskRef{Ref: ref}
	}
}

// SetTaskData writes task_data for the current stage (or -1 pre-start).
func (j *Job) SetTaskData(value any) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.taskData[j.currentIndex] = value
}

// GetTaskData reads task_data for ref: nil means the current stage; an int
// is an index; a string is resolved against the task list. An unresolvable
// string or out-of-range index returns BadTaskRef.
func (j *Job) GetTaskData(ref any) (any, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	idx, err := j.resolveRefLocked(ref)
	if err != nil {
		return nil, err
	}
	return j.taskData[idx], nil
}

// Input is a synonym for GetTaskData(-1).
func (j *Job) Input() any {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.taskData[-1]
}

// SetTaskOutput writes task_outputs for the current stage.
func (j *Job) SetTaskOutput(value any) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.taskOutputs[j.currentIndex] = value
}

// PrevOutput returns task_outputs[current_index-1], and whether it was
// present (it is unset when current_index <= 0).
func (j *Job) PrevOutput() (any, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.currentIndex <= 0 {
		return nil, false
	}
	v, ok := j.taskOutputs[j.currentIndex-1]
	return v, ok
}

// SetTaskProgress updates the current stage's progress. A nil percent
// preserves the prior value (default 0). Values above 1 are interpreted as
// a 0-100 scale and divided by 100; negative values are clamped to 0.
func (j *Job) SetTaskProgress(percent *float64, message *string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.setProgressLocked(j.currentIndex, percent, message, false)
}

func (j *Job) setProgressLocked(idx int, percent *float64, message *string, force bool) {
	meta, ok := j.taskMetadata[idx]
	if !ok {
		meta = &Meta{EnteredAt: time.Now().UTC()}
		j.taskMetadata[idx] = meta
	}
	var pct float64
	var msg string
	if meta.Progress != nil {
		pct = meta.Progress.Percent
		msg = meta.Progress.Message
	}
	if force {
		pct = 1.0
	} else if percent != nil {
		p := *percent
		if p > 1 {
			p = p / 100.0
		}
		if p < 0 {
			p = 0
		}
		pct = p
	}
	if message != nil {
		msg = *message
	}
	meta.Progress = &Progress{Percent: pct, Message: msg}
}

// TaskProgress returns the current stage's progress, or nil if unset.
func (j *Job) TaskProgress() *Progress {
	j.mu.Lock()
	defer j.mu.Unlock()
	meta, ok := j.taskMetadata[j.currentIndex]
	if !ok || meta.Progress == nil {
		return nil
	}
	cp := *meta.Progress
	return &cp
}

// GetSignal reads a scratchpad value written by a control-flow helper
// (e.g. the polling wrapper) under key, and whether it was present.
func (j *Job) GetSignal(key string) (any, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	v, ok := j.signals[key]
	return v, ok
}

// SetSignal writes a scratchpad value under key.
func (j *Job) SetSignal(key string, value any) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.signals[key] = value
}

// ClearSignal removes a scratchpad value. Clearing an absent key is a no-op.
func (j *Job) ClearSignal(key string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	delete(j.signals, key)
}

// RecordError wraps err as a TaskError bound to the current stage, appends
// it to the job's error list, and terminates the job FAILED. It always
// returns true: there is no subclass hook in Go to suppress termination: a
// caller that wants to recover from an error should not call RecordError in
// the first place.
func (j *Job) RecordError(err error) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.termination != Unset {
		return true
	}
	if err == nil {
		err = &BadConfig{Reason: "RecordError called with a nil error"}
	}
	te := newTaskError(j.taskNameLocked(j.currentIndex), err)
	j.errors = append(j.errors, te)
	j.termination = Failed
	j.stampLeftLocked(j.currentIndex, time.Now().UTC())
	j.closeDoneLocked()
	return true
}

// Cancel terminates the job CANCELLED. It is a no-op if the job is already
// terminal.
func (j *Job) Cancel() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.termination != Unset {
		return
	}
	j.termination = Cancelled
	j.stampLeftLocked(j.currentIndex, time.Now().UTC())
	j.closeDoneLocked()
}

func (j *Job) stampLeftLocked(idx int, at time.Time) {
	if idx < 0 {
		return
	}
	meta, ok := j.taskMetadata[idx]
	if !ok {
		meta = &Meta{EnteredAt: at}
		j.taskMetadata[idx] = meta
	}
	if meta.LeftAt == nil {
		t := at
		meta.LeftAt = &t
	}
}

func (j *Job) closeDoneLocked() {
	if !j.doneClosed {
		j.doneClosed = true
		close(j.done)
	}
}

// Errors returns a copy of the job's recorded errors, oldest first.
func (j *Job) Errors() []*TaskError {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]*TaskError, len(j.errors))
	copy(out, j.errors)
	return out
}

// Error returns the most recently recorded error, or nil if none occurred.
func (j *Job) Error() *TaskError {
	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.errors) == 0 {
		return nil
	}
	return j.errors[len(j.errors)-1]
}

// Result returns task_outputs for the last stage, and whether it was
// present.
func (j *Job) Result() (any, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	v, ok := j.taskOutputs[len(j.tasks)-1]
	return v, ok
}

// Progress returns the job's overall completion, averaged over completed
// stages only (the currently-running stage does not contribute). An unset
// stage's contribution counts as complete (1.0) once passed. On Success the
// final stage is completed too, so a successful job always reports 1.0.
func (j *Job) Progress() float64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	n := len(j.tasks)
	if n == 0 {
		return 0
	}
	limit := j.currentIndex
	if j.termination == Success {
		limit++
	}
	total := 0.0
	for i := 0; i < limit; i++ {
		pct := 1.0
		if meta, ok := j.taskMetadata[i]; ok && meta.Progress != nil {
			pct = meta.Progress.Percent
		}
		total += pct / float64(n)
	}
	return total
}

// TotalDurationMs returns wall-clock milliseconds from the job's creation to
// either its terminal stage's completion or now.
func (j *Job) TotalDurationMs() float64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	start, ok := j.taskMetadata[-1]
	if !ok {
		return 0
	}
	now := time.Now().UTC()
	if j.termination != Unset {
		if meta, ok := j.taskMetadata[j.currentIndex]; ok && meta.LeftAt != nil {
			return meta.LeftAt.Sub(start.EnteredAt).Seconds() * 1000
		}
	}
	return now.Sub(start.EnteredAt).Seconds() * 1000
}

// Await blocks until the job reaches a terminal state or ctx is done,
// returning the result on Success, the last recorded TaskError on Failed,
// or CancelledError on Cancelled.
func (j *Job) Await(ctx context.Context) (any, error) {
	select {
	case <-j.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return j.terminalResult()
}

// WaitForResult blocks until the job terminates or timeout elapses
// (timeout <= 0 means wait indefinitely). On timeout it returns def, nil.
// On Success it returns the result. On Failed/Cancelled it returns the
// terminal error.
func (j *Job) WaitForResult(timeout time.Duration, def any) (any, error) {
	if timeout <= 0 {
		<-j.done
	} else {
		select {
		case <-j.done:
		case <-time.After(timeout):
			return def, nil
		}
	}
	res, err := j.terminalResult()
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (j *Job) terminalResult() (any, error) {
	switch j.TerminationState() {
	case Success:
		res, _ := j.Result()
		return res, nil
	case Failed:
		if err := j.Error(); err != nil {
			return nil, err
		}
		return nil, &TaskError{Message: "job failed"}
	case Cancelled:
		return nil, &CancelledError{Name: j.Name()}
	default:
		return nil, nil
	}
}

func ptrFloat(f float64) *float64 { return &f }
