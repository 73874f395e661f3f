package task

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/myki-jim/newssys-sub000/internal/handler/http/pathutil"
	"github.com/myki-jim/newssys-sub000/internal/handler/http/respond"
	"github.com/myki-jim/newssys-sub000/internal/usecase/task"
)

// StreamHandler handles GET /tasks/{id}/stream: a Server-Sent Events feed
// of the task's event log as it runs. The connection closes when the task
// reaches a terminal state or the client disconnects.
type StreamHandler struct{ Manager *task.Manager }

func (h StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(strings.TrimSuffix(r.URL.Path, "/stream"), "/tasks/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respond.SafeError(w, http.StatusInternalServerError, fmt.Errorf("streaming unsupported"))
		return
	}

	ch, unsubscribe, exists := h.Manager.Subscribe(id)
	if !exists {
		respond.SafeError(w, http.StatusNotFound, fmt.Errorf("task not found"))
		return
	}
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.EventType, payload)
			flusher.Flush()
		}
	}
}
