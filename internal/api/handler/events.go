package handler

import (
	"net/http"

	"github.com/embercortex/embercortex/internal/api/response"
	"github.com/embercortex/embercortex/internal/service"
)

// EventsHandler streams history-changed notifications to clients so a
// sidebar can refresh its session list without polling.
type EventsHandler struct {
	notifier *service.Notifier
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(notifier *service.Notifier) *EventsHandler {
	return &EventsHandler{notifier: notifier}
}

// Stream emits one SSE event per notification until the client leaves
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalError(w, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	events, cancel := h.notifier.Subscribe()
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if _, err := w.Write([]byte("data: " + event + "\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
