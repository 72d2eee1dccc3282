// Package completion is the HTTP client for the OpenAI-compatible chat
// completion server (llama.cpp).
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/embercortex/embercortex/internal/upstream"
	"github.com/embercortex/embercortex/internal/upstream/sse"
)

// Client calls the chat completion endpoint. Generation is slow, so the
// total timeout is long; the connect timeout stays short so a dead server
// fails fast.
type Client struct {
	baseURL      string
	defaultModel string
	temperature  float64
	maxTokens    int
	client       *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithTimeouts overrides the connect and total timeouts
func WithTimeouts(connect, total time.Duration) Option {
	return func(c *Client) {
		c.client = newHTTPClient(connect, total)
	}
}

// NewClient creates a completion client with the given generation defaults
func NewClient(baseURL, defaultModel string, temperature float64, maxTokens int, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		defaultModel: defaultModel,
		temperature:  temperature,
		maxTokens:    maxTokens,
		client:       newHTTPClient(10*time.Second, 300*time.Second),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newHTTPClient(connect, total time.Duration) *http.Client {
	return &http.Client{
		Timeout: total,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{Timeout: connect}).DialContext,
		},
	}
}

type chatRequest struct {
	Model       string                 `json:"model"`
	Messages    []upstream.ChatMessage `json:"messages"`
	Temperature float64                `json:"temperature"`
	MaxTokens   int                    `json:"max_tokens"`
	Stream      bool                   `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// StreamChunk is one OpenAI-style delta event from the SSE stream
type StreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// DeltaContent returns the text carried by this chunk, if any
func (c *StreamChunk) DeltaContent() string {
	if len(c.Choices) == 0 {
		return ""
	}
	return c.Choices[0].Delta.Content
}

func (c *Client) buildRequest(history []upstream.ChatMessage, opts upstream.CompletionOptions, stream bool) chatRequest {
	model := opts.Model
	if model == "" {
		model = c.defaultModel
	}
	temperature := c.temperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}

	return chatRequest{
		Model:       model,
		Messages:    history,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Stream:      stream,
	}
}

func (c *Client) post(ctx context.Context, req chatRequest, accept string) (*http.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", accept)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &upstream.TransportError{Err: err}
	}

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, upstream.ErrorFromResponse(resp.StatusCode, respBody)
	}

	return resp, nil
}

// Complete sends the full conversational context and returns the first
// choice's message content. Network and upstream failures come back as
// typed errors, never panics.
func (c *Client) Complete(ctx context.Context, history []upstream.ChatMessage, opts upstream.CompletionOptions) (string, error) {
	resp, err := c.post(ctx, c.buildRequest(history, opts, false), "application/json")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in completion response")
	}

	return chatResp.Choices[0].Message.Content, nil
}

// CompleteStream starts a streaming completion. The returned stream must
// be closed; closing before exhaustion cancels the underlying connection.
func (c *Client) CompleteStream(ctx context.Context, history []upstream.ChatMessage, opts upstream.CompletionOptions) (*Stream, error) {
	resp, err := c.post(ctx, c.buildRequest(history, opts, true), "text/event-stream")
	if err != nil {
		return nil, err
	}

	return &Stream{
		body:    resp.Body,
		decoder: sse.NewDecoder(resp.Body),
	}, nil
}

// Stream is a finite, non-restartable sequence of completion deltas
type Stream struct {
	body    io.ReadCloser
	decoder *sse.Decoder
}

// Recv returns the next chunk, or io.EOF when the stream ends. Events
// that do not decode into a chunk are skipped.
func (s *Stream) Recv() (*StreamChunk, error) {
	for s.decoder.Next() {
		var chunk StreamChunk
		if err := json.Unmarshal(s.decoder.Event(), &chunk); err != nil {
			continue
		}
		return &chunk, nil
	}

	if err := s.decoder.Err(); err != nil {
		return nil, &upstream.TransportError{Err: err}
	}
	return nil, io.EOF
}

// Close releases the underlying connection
func (s *Stream) Close() error {
	return s.body.Close()
}
