package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/embercortex/embercortex/internal/api/response"
	"github.com/embercortex/embercortex/internal/domain"
	"github.com/embercortex/embercortex/internal/service"
)

var validate = validator.New()

// ChatHandler handles turn submission
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

type chatRequest struct {
	SessionID  string `json:"session_id"`
	Message    string `json:"message" validate:"required"`
	Collection string `json:"collection"`
	Model      string `json:"model"`
	Stream     bool   `json:"stream"`
}

type chatResponse struct {
	SessionID string            `json:"session_id"`
	Turn      domain.TurnResult `json:"turn"`
}

// Submit handles one chat turn. A missing session id mints a fresh
// session; the id is echoed back so the client can keep the thread.
func (h *ChatHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	if req.SessionID == "" {
		req.SessionID = service.NewSessionID()
	}

	turnReq := domain.TurnRequest{
		SessionID:  req.SessionID,
		Message:    req.Message,
		Collection: req.Collection,
		Model:      req.Model,
	}

	if req.Stream {
		h.submitStreaming(w, r, turnReq)
		return
	}

	result, err := h.chatService.SubmitTurn(r.Context(), turnReq)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyMessage) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, err.Error())
		return
	}

	response.OK(w, chatResponse{SessionID: req.SessionID, Turn: *result})
}

type streamEvent struct {
	Delta string             `json:"delta,omitempty"`
	Done  bool               `json:"done,omitempty"`
	Turn  *domain.TurnResult `json:"turn,omitempty"`
	Error string             `json:"error,omitempty"`
}

func (h *ChatHandler) submitStreaming(w http.ResponseWriter, r *http.Request, req domain.TurnRequest) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalError(w, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Session-ID", req.SessionID)

	writeEvent := func(ev streamEvent) error {
		data, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		if _, err := w.Write(append(append([]byte("data: "), data...), '\n', '\n')); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	result, err := h.chatService.SubmitTurnStreaming(r.Context(), req, func(delta string) error {
		return writeEvent(streamEvent{Delta: delta})
	})
	if err != nil {
		_ = writeEvent(streamEvent{Done: true, Error: err.Error()})
		return
	}

	_ = writeEvent(streamEvent{Done: true, Turn: result})
}
