package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/embercortex/embercortex/internal/api/response"
	"github.com/embercortex/embercortex/internal/service"
)

// SessionHandler handles session listing, history and deletion
type SessionHandler struct {
	chatService *service.ChatService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(chatService *service.ChatService) *SessionHandler {
	return &SessionHandler{chatService: chatService}
}

func queryLimit(r *http.Request, fallback int) int {
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			return v
		}
	}
	return fallback
}

// List returns recent sessions, most recently active first
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.chatService.RecentSessions(r.Context(), queryLimit(r, 20))
	if err != nil {
		response.InternalError(w, "failed to list sessions")
		return
	}

	response.OK(w, sessions)
}

// GetHistory returns the history of one session, oldest first
func (h *SessionHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		response.BadRequest(w, "missing session ID")
		return
	}

	history, err := h.chatService.History(r.Context(), sessionID, queryLimit(r, 50))
	if err != nil {
		response.InternalError(w, "failed to fetch session history")
		return
	}

	response.OK(w, history)
}

// Delete removes a session and its messages
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		response.BadRequest(w, "missing session ID")
		return
	}

	if err := h.chatService.DeleteSession(r.Context(), sessionID); err != nil {
		response.InternalError(w, "failed to delete session")
		return
	}

	response.OK(w, map[string]string{"message": "session deleted"})
}
