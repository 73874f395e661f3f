package report

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/myki-jim/newssys-sub000/internal/handler/http/pathutil"
	"github.com/myki-jim/newssys-sub000/internal/handler/http/respond"
	"github.com/myki-jim/newssys-sub000/internal/usecase/report"
)

// StreamHandler handles GET /reports/{id}/stream: a Server-Sent Events feed
// of the Report Agent's stage progress (event: state) and, while a section
// is being written, its streamed text chunks (event: section_stream). The
// connection stays open until the agent reaches a terminal stage or the
// client disconnects; subscribing to a report with no in-flight generation
// yields a stream that closes immediately.
type StreamHandler struct{ Agent *report.Agent }

func (h StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(strings.TrimSuffix(r.URL.Path, "/stream"), "/reports/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respond.SafeError(w, http.StatusInternalServerError, fmt.Errorf("streaming unsupported"))
		return
	}

	ch, unsubscribe := h.Agent.Subscribe(id)
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
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, payload)
			flusher.Flush()
		}
	}
}
