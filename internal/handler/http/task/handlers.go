package task

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/myki-jim/newssys-sub000/internal/domain/entity"
	"github.com/myki-jim/newssys-sub000/internal/handler/http/pathutil"
	"github.com/myki-jim/newssys-sub000/internal/handler/http/respond"
	"github.com/myki-jim/newssys-sub000/internal/repository"
	"github.com/myki-jim/newssys-sub000/internal/usecase/task"
)

// CreateHandler handles POST /tasks: creates a task row and runs it
// asynchronously, returning immediately with the pending task.
type CreateHandler struct{ Manager *task.Manager }

func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if strings.TrimSpace(req.TaskType) == "" {
		respond.SafeError(w, http.StatusBadRequest, fmt.Errorf("task_type is required"))
		return
	}

	t, err := h.Manager.Create(r.Context(), req.TaskType, req.Title, req.Params)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	h.Manager.RunAsync(r.Context(), t.ID)

	respond.JSON(w, http.StatusAccepted, toDTO(t))
}

// GetHandler handles GET /tasks/{id}.
type GetHandler struct{ Tasks repository.TaskRepository }

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/tasks/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	t, err := h.Tasks.Get(r.Context(), id)
	if err != nil {
		respond.SafeError(w, http.StatusNotFound, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(t))
}

// ListHandler handles GET /tasks?status=&type=&limit=.
type ListHandler struct{ Tasks repository.TaskRepository }

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	var (
		tasks []*entity.Task
		err   error
	)
	if status := r.URL.Query().Get("status"); status != "" {
		tasks, err = h.Tasks.ListByStatus(r.Context(), entity.TaskStatus(status), limit)
	} else {
		tasks, err = h.Tasks.ListRecent(r.Context(), r.URL.Query().Get("type"), limit)
	}
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	out := make([]DTO, len(tasks))
	for i, t := range tasks {
		out[i] = toDTO(t)
	}
	respond.JSON(w, http.StatusOK, out)
}

// CancelHandler handles POST /tasks/{id}/cancel.
type CancelHandler struct{ Manager *task.Manager }

func (h CancelHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(strings.TrimSuffix(r.URL.Path, "/cancel"), "/tasks/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	h.Manager.Cancel(id)
	respond.JSON(w, http.StatusAccepted, map[string]string{"status": "cancel_requested"})
}
