// Command demo runs a taskflow executor behind a small read-only HTTP
// introspection server: it submits a handful of sample jobs at startup and
// lets /jobs, /jobs/:id and /stats be polled to watch them progress.
package main

import (
	"fmt"
	"os"

	"github.com/arborio/taskflow/executor"
	"github.com/arborio/taskflow/internal/envconfig"
	"github.com/arborio/taskflow/internal/httpapi"
	"github.com/arborio/taskflow/internal/telemetry"
	"github.com/arborio/taskflow/job"
)

func main() {
	log, err := telemetry.New(envconfig.GetString("TASKFLOW_LOG_MODE", ""))
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	reg := executor.NewRegistry()
	if err := registerDemoTasks(reg); err != nil {
		log.Error("failed to register demo tasks", "error", err)
		os.Exit(1)
	}

	store := httpapi.NewJobStore()
	exec := executor.New(reg,
		executor.WithLogger(log),
		executor.WithWorkerPoolSize(envconfig.GetInt("TASKFLOW_WORKER_POOL_SIZE", 64)),
		executor.WithOnTerminal(func(j *job.Job) {
			log.Info("job terminal", "job", j.Name(), "state", j.TerminationState().String())
		}),
	)
	defer exec.Shutdown(true)

	seedJobs(exec, store)

	jobsHandler := httpapi.NewJobsHandler(store, exec)
	router := httpapi.NewRouter(jobsHandler)

	port := envconfig.GetString("TASKFLOW_DEMO_PORT", "8080")
	log.Info("demo server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("server failed", "error", err)
	}
}

// seedJobs submits a few sample jobs so the introspection endpoints have
// something to show immediately.
func seedJobs(exec *executor.Executor, store *httpapi.JobStore) {
	names := []string{"alpha", "bravo", "charlie"}
	for _, name := range names {
		j, err := job.New([]string{"fetch", "wait_for_ready", "publish"}, name, name)
		if err != nil {
			continue
		}
		store.Track(exec.Submit(j))
	}
}
