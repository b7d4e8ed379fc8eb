package handlers

import (
	"net/http"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/scheduler"
)

// JobsHandler exposes scheduler statistics
type JobsHandler struct {
	scheduler *scheduler.Scheduler
}

// NewJobsHandler creates a new jobs handler. sched may be nil when refresh is disabled.
func NewJobsHandler(sched *scheduler.Scheduler) *JobsHandler {
	return &JobsHandler{scheduler: sched}
}

// Stats returns per-job run statistics
// GET /api/jobs
func (h *JobsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.scheduler == nil {
		respondJSON(w, http.StatusOK, map[string]scheduler.JobStats{})
		return
	}
	respondJSON(w, http.StatusOK, h.scheduler.GetJobStats())
}
