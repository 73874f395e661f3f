package task

import (
	"net/http"

	"github.com/myki-jim/newssys-sub000/internal/repository"
	"github.com/myki-jim/newssys-sub000/internal/usecase/task"
)

// Register wires the task endpoints onto mux: create/run, inspect, list,
// cancel, and stream live progress over SSE.
func Register(mux *http.ServeMux, manager *task.Manager, tasks repository.TaskRepository) {
	mux.Handle("POST   /tasks", CreateHandler{Manager: manager})
	mux.Handle("GET    /tasks", ListHandler{Tasks: tasks})
	mux.Handle("GET    /tasks/{id}/stream", StreamHandler{Manager: manager})
	mux.Handle("POST   /tasks/{id}/cancel", CancelHandler{Manager: manager})
	mux.Handle("GET    /tasks/", GetHandler{Tasks: tasks})
}
