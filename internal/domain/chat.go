package domain

import "errors"

// ErrEmptyMessage is returned when a turn is submitted with no content.
// It is the only turn failure surfaced to the caller; every other failure
// is recorded as the assistant message's content.
var ErrEmptyMessage = errors.New("message must not be empty")

// TurnRequest carries one user turn into the orchestrator
type TurnRequest struct {
	SessionID  string `json:"session_id" validate:"required"`
	Message    string `json:"message" validate:"required"`
	Collection string `json:"collection"`
	Model      string `json:"model"`
}

// UseRAG reports whether this turn targets the retrieval-augmented path.
// An empty or "none" collection means direct completion.
func (r TurnRequest) UseRAG() bool {
	return r.Collection != "" && r.Collection != "none"
}

// TurnResult is the outcome of one completed turn: the persisted user
// message and the persisted assistant message (which may carry an error
// string as its content).
type TurnResult struct {
	UserMessage      Message `json:"user_message"`
	AssistantMessage Message `json:"assistant_message"`
}
