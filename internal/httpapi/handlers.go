package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/arborio/taskflow/executor"
)

// JobsHandler serves read-only job introspection over a JobStore.
type JobsHandler struct {
	jobs *JobStore
	exec *executor.Executor
}

// NewJobsHandler builds a JobsHandler over store and exec.
func NewJobsHandler(store *JobStore, exec *executor.Executor) *JobsHandler {
	return &JobsHandler{jobs: store, exec: exec}
}

// GET /jobs
func (h *JobsHandler) ListJobs(c *gin.Context) {
	RespondOK(c, gin.H{"jobs": h.jobs.List()})
}

// GET /jobs/:id
func (h *JobsHandler) GetJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_job_id", err)
		return
	}
	j, ok := h.jobs.Get(id)
	if !ok {
		RespondError(c, http.StatusNotFound, "job_not_found", nil)
		return
	}
	RespondOK(c, j.Snapshot())
}

// GET /stats
func (h *JobsHandler) GetStats(c *gin.Context) {
	RespondOK(c, h.exec.Stats())
}

// GET /healthcheck
func HealthCheck(c *gin.Context) {
	RespondOK(c, gin.H{"status": "ok"})
}
