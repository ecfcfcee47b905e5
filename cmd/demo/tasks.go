package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/arborio/taskflow/executor"
	"github.com/arborio/taskflow/job"
	"github.com/arborio/taskflow/polling"
	"github.com/arborio/taskflow/signal"
)

// registerDemoTasks wires a small pipeline onto reg: fetch -> wait_for_ready
// (a polling stage) -> publish. It exists to give the demo server something
// to submit and show in its introspection endpoints.
func registerDemoTasks(reg *executor.Registry) error {
	if err := reg.Register("fetch", fetchTask); err != nil {
		return err
	}
	if err := reg.Register("wait_for_ready", waitForReadyTask); err != nil {
		return err
	}
	if err := reg.Register("publish", publishTask); err != nil {
		return err
	}
	return nil
}

func fetchTask(j *job.Job) (any, error) {
	input := j.Input()
	msg := fmt.Sprintf("fetched %v", input)
	j.SetTaskProgress(nil, &msg)
	return input, nil
}

// waitForReadyTask pretends an upstream resource takes a few attempts to
// become ready, via the polling control-flow wrapper.
var waitForReadyTask = polling.Task(polling.Options{
	Interval: 50 * time.Millisecond,
	Timeout:  2 * time.Second,
}, func(j *job.Job) (any, error) {
	prev, _ := j.PrevOutput()
	if rand.Intn(3) == 0 {
		return prev, nil
	}
	return signal.PollAgain{Reason: "not ready yet"}, nil
})

func publishTask(j *job.Job) (any, error) {
	prev, _ := j.PrevOutput()
	return fmt.Sprintf("published:%v", prev), nil
}
