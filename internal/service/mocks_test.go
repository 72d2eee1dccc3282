package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/embercortex/embercortex/internal/domain"
	"github.com/embercortex/embercortex/internal/upstream"
	"github.com/embercortex/embercortex/internal/upstream/completion"
	"github.com/embercortex/embercortex/internal/upstream/rag"
)

// MockMessageRepository mocks the domain.MessageRepository interface
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Append(ctx context.Context, msg domain.AppendMessage) (int64, error) {
	args := m.Called(ctx, msg)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMessageRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	args := m.Called(ctx, sessionID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

func (m *MockMessageRepository) ListRecentSessions(ctx context.Context, limit int) ([]domain.SessionSummary, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SessionSummary), args.Error(1)
}

func (m *MockMessageRepository) DeleteSession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// MockCompletionClient mocks the CompletionClient interface
type MockCompletionClient struct {
	mock.Mock
}

func (m *MockCompletionClient) Complete(ctx context.Context, history []upstream.ChatMessage, opts upstream.CompletionOptions) (string, error) {
	args := m.Called(ctx, history, opts)
	return args.String(0), args.Error(1)
}

func (m *MockCompletionClient) CompleteStream(ctx context.Context, history []upstream.ChatMessage, opts upstream.CompletionOptions) (CompletionStream, error) {
	args := m.Called(ctx, history, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(CompletionStream), args.Error(1)
}

// MockCompletionStream mocks the CompletionStream interface
type MockCompletionStream struct {
	mock.Mock
}

func (m *MockCompletionStream) Recv() (*completion.StreamChunk, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*completion.StreamChunk), args.Error(1)
}

func (m *MockCompletionStream) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockRAGClient mocks the RAGClient interface
type MockRAGClient struct {
	mock.Mock
}

func (m *MockRAGClient) Query(ctx context.Context, query, collection string, topK int, includeSources bool) (*rag.QueryResult, error) {
	args := m.Called(ctx, query, collection, topK, includeSources)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rag.QueryResult), args.Error(1)
}

func (m *MockRAGClient) ListCollections(ctx context.Context) ([]rag.CollectionInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]rag.CollectionInfo), args.Error(1)
}

// MockCollectionRepository mocks the domain.CollectionRepository interface
type MockCollectionRepository struct {
	mock.Mock
}

func (m *MockCollectionRepository) UpsertAll(ctx context.Context, collections []domain.Collection) error {
	args := m.Called(ctx, collections)
	return args.Error(0)
}

func (m *MockCollectionRepository) List(ctx context.Context) ([]domain.Collection, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Collection), args.Error(1)
}

// streamFromChunks builds a mock stream yielding the given deltas then EOF
func streamFromChunks(deltas ...string) *MockCompletionStream {
	stream := new(MockCompletionStream)
	for _, delta := range deltas {
		payload := fmt.Sprintf(`{"choices":[{"delta":{"content":%q}}]}`, delta)
		var chunk completion.StreamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			panic(err)
		}
		stream.On("Recv").Return(&chunk, nil).Once()
	}
	stream.On("Recv").Return(nil, io.EOF)
	stream.On("Close").Return(nil)
	return stream
}
