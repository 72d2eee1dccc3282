package upstream

import (
	"encoding/json"
	"fmt"
)

// UpstreamError means a service responded with status >= 400. Message is
// extracted from the response body ("detail" or "error" field) when
// possible, else "HTTP <code>".
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return e.Message
}

// TransportError means the network call itself failed before any HTTP
// status was available (connection refused, timeout).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ErrorFromResponse builds an UpstreamError from an error response body.
// Both upstream services report errors as {"detail": ...} or {"error": ...}.
func ErrorFromResponse(status int, body []byte) *UpstreamError {
	var parsed struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	_ = json.Unmarshal(body, &parsed)

	message := parsed.Detail
	if message == "" {
		message = parsed.Error
	}
	if message == "" {
		message = fmt.Sprintf("HTTP %d", status)
	}

	return &UpstreamError{Status: status, Message: message}
}
