package executor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/arborio/taskflow/job"
	"github.com/arborio/taskflow/signal"
)

func TestRegistryRejectsDuplicateAndNil(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register("t", func(_ *job.Job) (any, error) { return nil, nil }); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := reg.Register("t", func(_ *job.Job) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected error on duplicate registration")
	}
	if err := reg.Register("t2", nil); err == nil {
		t.Fatalf("expected error on nil handler")
	}
	if err := reg.Register("", func(_ *job.Job) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected error on empty task name")
	}
}

func TestSubmitRunsLinearPipelineToSuccess(t *testing.T) {
	reg := NewRegistry()
	reg.Register("a", func(j *job.Job) (any, error) { return "a-out", nil })
	reg.Register("b", func(j *job.Job) (any, error) {
		prev, _ := j.PrevOutput()
		return prev.(string) + "+b", nil
	})

	exec := New(reg)
	defer exec.Shutdown(true)

	j, _ := job.New([]string{"a", "b"}, nil, "")
	exec.Submit(j)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	res, err := j.Await(ctx)
	if err != nil {
		t.Fatalf("Await: %v", err)
	}
	if res != "a-out+b" {
		t.Fatalf("expected a-out+b, got %v", res)
	}

	// Counters are updated by the driver goroutine after the job's done
	// channel closes; wait for it to exit before reading them.
	exec.Shutdown(true)
	stats := exec.Stats()
	if stats.Succeeded != 1 {
		t.Fatalf("expected 1 succeeded job, got %+v", stats)
	}
}

func TestSubmitUnknownTaskFails(t *testing.T) {
	reg := NewRegistry()
	exec := New(reg)
	defer exec.Shutdown(true)

	j, _ := job.New([]string{"missing"}, nil, "")
	exec.Submit(j)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := j.Await(ctx); err == nil {
		t.Fatalf("expected failure for unregistered task")
	}
	if j.TerminationState() != job.Failed {
		t.Fatalf("expected Failed, got %v", j.TerminationState())
	}
}

func TestSubmitHandlerErrorFailsJob(t *testing.T) {
	reg := NewRegistry()
	boom := errors.New("boom")
	reg.Register("only", func(_ *job.Job) (any, error) { return nil, boom })
	exec := New(reg)
	defer exec.Shutdown(true)

	j, _ := job.New([]string{"only"}, nil, "")
	exec.Submit(j)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := j.Await(ctx); err == nil {
		t.Fatalf("expected error from failing handler")
	}
	if j.TerminationState() != job.Failed {
		t.Fatalf("expected Failed, got %v", j.TerminationState())
	}

	te := j.Error()
	if te == nil {
		t.Fatalf("expected a recorded TaskError")
	}
	if te.Task != "only" {
		t.Fatalf("expected error bound to task only, got %q", te.Task)
	}
	if !errors.Is(te, boom) {
		t.Fatalf("expected recorded error to unwrap to the handler's error")
	}
	if _, ok := j.Result(); ok {
		t.Fatalf("expected no output recorded for a failed stage")
	}
}

func TestSubmitHandlerPanicFailsJobWithoutCrashingExecutor(t *testing.T) {
	reg := NewRegistry()
	reg.Register("boom", func(_ *job.Job) (any, error) { panic("kaboom") })
	exec := New(reg)
	defer exec.Shutdown(true)

	j, _ := job.New([]string{"boom"}, nil, "")
	exec.Submit(j)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := j.Await(ctx); err == nil {
		t.Fatalf("expected panic to surface as a job failure")
	}
	if j.TerminationState() != job.Failed {
		t.Fatalf("expected Failed, got %v", j.TerminationState())
	}
}

func TestRepeatSignalReDispatchesWithoutAdvancing(t *testing.T) {
	reg := NewRegistry()
	attempts := 0
	reg.Register("poll", func(_ *job.Job) (any, error) {
		attempts++
		if attempts < 3 {
			return signal.Repeat{Delay: time.Millisecond}, nil
		}
		return "done", nil
	})
	exec := New(reg)
	defer exec.Shutdown(true)

	j, _ := job.New([]string{"poll"}, nil, "")
	exec.Submit(j)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	res, err := j.Await(ctx)
	if err != nil {
		t.Fatalf("Await: %v", err)
	}
	if res != "done" {
		t.Fatalf("expected done, got %v", res)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestManyJobsCompleteConcurrently(t *testing.T) {
	reg := NewRegistry()
	reg.Register("only", func(_ *job.Job) (any, error) { return "ok", nil })
	exec := New(reg)
	defer exec.Shutdown(true)

	const n = 50
	jobs := make([]*job.Job, n)
	for i := range jobs {
		j, _ := job.New([]string{"only"}, nil, "")
		jobs[i] = j
		exec.Submit(j)
	}

	var wg sync.WaitGroup
	wg.Add(n)
	for _, j := range jobs {
		j := j
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if _, err := j.Await(ctx); err != nil {
				t.Errorf("job %s: %v", j.Name(), err)
			}
		}()
	}
	wg.Wait()

	exec.Shutdown(true)
	stats := exec.Stats()
	if stats.Succeeded != n {
		t.Fatalf("expected %d succeeded, got %+v", n, stats)
	}
}

func TestShutdownWithoutWaitCancelsInFlightJobs(t *testing.T) {
	reg := NewRegistry()
	started := make(chan struct{})
	reg.Register("slow", func(_ *job.Job) (any, error) {
		close(started)
		return signal.Repeat{Delay: time.Hour}, nil
	})
	exec := New(reg)

	j, _ := job.New([]string{"slow"}, nil, "")
	exec.Submit(j)
	<-started

	exec.Shutdown(false)

	if j.TerminationState() != job.Cancelled {
		t.Fatalf("expected Cancelled after non-waiting shutdown, got %v", j.TerminationState())
	}
}

func TestSubmitAfterShutdownCancelsJob(t *testing.T) {
	reg := NewRegistry()
	reg.Register("only", func(_ *job.Job) (any, error) { return "ok", nil })
	exec := New(reg)
	exec.Shutdown(true)

	j, _ := job.New([]string{"only"}, nil, "")
	exec.Submit(j)
	if j.TerminationState() != job.Cancelled {
		t.Fatalf("expected Cancelled when submitting to a shut-down executor, got %v", j.TerminationState())
	}
}
