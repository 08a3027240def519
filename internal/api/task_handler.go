package api

import (
	"net/http"

	"github.com/taskdesk/taskdesk-api/internal/domain"
	"github.com/taskdesk/taskdesk-api/internal/pipeline"
)

// TaskHandler serves the /tasks routes.
type TaskHandler struct {
	runner Runner
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(runner Runner) *TaskHandler {
	return &TaskHandler{runner: runner}
}

// run executes op and writes the error response on failure. A nil result
// means the response has already been written.
func (h *TaskHandler) run(w http.ResponseWriter, r *http.Request, op pipeline.Op) *pipeline.Result {
	req, err := newRequest(w, r, op)
	if err != nil {
		handleError(w, r, nil, err)
		return nil
	}

	res, err := h.runner.Run(r.Context(), req)
	if err != nil {
		handleError(w, r, res, err)
		return nil
	}
	return res
}

// ListTasks handles GET /tasks with an optional ?status= filter.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	res := h.run(w, r, pipeline.ListTasks)
	if res == nil {
		return
	}

	tasks := res.Tasks
	if tasks == nil {
		tasks = []domain.Task{}
	}
	respondWithResult(w, r, res, http.StatusOK, tasks)
}

// GetTask handles GET /tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	if res := h.run(w, r, pipeline.GetTask); res != nil {
		respondWithResult(w, r, res, http.StatusOK, res.Task)
	}
}

// CreateTask handles POST /tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	if res := h.run(w, r, pipeline.CreateTask); res != nil {
		respondWithResult(w, r, res, http.StatusCreated, res.Task)
	}
}

// UpdateTask handles PATCH /tasks/{id}.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	if res := h.run(w, r, pipeline.UpdateTask); res != nil {
		respondWithResult(w, r, res, http.StatusOK, res.Task)
	}
}

// DeleteTask handles DELETE /tasks/{id}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if res := h.run(w, r, pipeline.DeleteTask); res != nil {
		respondWithResult(w, r, res, http.StatusOK, DeleteTaskResponse{
			Message: "Task deleted",
			ID:      res.DeletedID,
		})
	}
}
