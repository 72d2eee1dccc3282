package service

import (
	"context"

	"github.com/embercortex/embercortex/internal/upstream"
	"github.com/embercortex/embercortex/internal/upstream/completion"
	"github.com/embercortex/embercortex/internal/upstream/rag"
)

// CompletionClient is the completion half of the transport layer
type CompletionClient interface {
	Complete(ctx context.Context, history []upstream.ChatMessage, opts upstream.CompletionOptions) (string, error)
	CompleteStream(ctx context.Context, history []upstream.ChatMessage, opts upstream.CompletionOptions) (CompletionStream, error)
}

// CompletionStream is a finite sequence of completion deltas; Recv
// returns io.EOF at the end and Close abandons the stream early.
type CompletionStream interface {
	Recv() (*completion.StreamChunk, error)
	Close() error
}

// RAGClient is the retrieval half of the transport layer
type RAGClient interface {
	Query(ctx context.Context, query, collection string, topK int, includeSources bool) (*rag.QueryResult, error)
	ListCollections(ctx context.Context) ([]rag.CollectionInfo, error)
}

// completionClient adapts *completion.Client to the CompletionClient
// interface (its CompleteStream returns the concrete stream type).
type completionClient struct {
	client *completion.Client
}

// NewCompletionClient wraps the HTTP completion client for service use
func NewCompletionClient(client *completion.Client) CompletionClient {
	return &completionClient{client: client}
}

func (c *completionClient) Complete(ctx context.Context, history []upstream.ChatMessage, opts upstream.CompletionOptions) (string, error) {
	return c.client.Complete(ctx, history, opts)
}

func (c *completionClient) CompleteStream(ctx context.Context, history []upstream.ChatMessage, opts upstream.CompletionOptions) (CompletionStream, error) {
	return c.client.CompleteStream(ctx, history, opts)
}
