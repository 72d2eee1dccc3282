package service

import (
	"context"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/embercortex/embercortex/internal/config"
	"github.com/embercortex/embercortex/internal/domain"
	"github.com/embercortex/embercortex/internal/upstream"
)

// noResponse is stored when a turn succeeded upstream but carried no text
const noResponse = "No response"

// ChatService orchestrates one turn: persist the user message, assemble
// context from history, dispatch to the completion or RAG service, and
// persist the assistant message. Upstream failures become the assistant
// message's content, so the conversation log records them.
type ChatService struct {
	cfg         config.ChatConfig
	messageRepo domain.MessageRepository
	llm         CompletionClient
	rag         RAGClient
	notifier    *Notifier

	// serializes turns per session so a pair of concurrent submissions
	// cannot interleave their user/assistant rows
	locks sync.Map
}

// NewChatService creates a new chat service
func NewChatService(cfg config.ChatConfig, messageRepo domain.MessageRepository, llm CompletionClient, rag RAGClient, notifier *Notifier) *ChatService {
	return &ChatService{
		cfg:         cfg,
		messageRepo: messageRepo,
		llm:         llm,
		rag:         rag,
		notifier:    notifier,
	}
}

// NewSessionID mints an opaque, unguessable session identifier
func NewSessionID() string {
	return uuid.NewString()
}

func (s *ChatService) sessionLock(sessionID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// SubmitTurn runs one turn to completion. Only an empty message is
// rejected as an error; every dispatched turn produces exactly one stored
// assistant entry.
func (s *ChatService) SubmitTurn(ctx context.Context, req domain.TurnRequest) (*domain.TurnResult, error) {
	return s.submit(ctx, req, nil)
}

// SubmitTurnStreaming behaves like SubmitTurn but emits partial assistant
// text through onDelta as it arrives. An error returned from onDelta
// abandons the upstream stream; the text received so far is still
// persisted.
func (s *ChatService) SubmitTurnStreaming(ctx context.Context, req domain.TurnRequest, onDelta func(delta string) error) (*domain.TurnResult, error) {
	return s.submit(ctx, req, onDelta)
}

func (s *ChatService) submit(ctx context.Context, req domain.TurnRequest, onDelta func(string) error) (*domain.TurnResult, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, domain.ErrEmptyMessage
	}

	// Normalize "none"/empty to direct mode before dispatch
	collection := req.Collection
	if !req.UseRAG() {
		collection = ""
	}

	mu := s.sessionLock(req.SessionID)
	mu.Lock()
	defer mu.Unlock()

	// Persist the user message before any upstream call so the input
	// survives a failed or interrupted generation
	userID, err := s.messageRepo.Append(ctx, domain.AppendMessage{
		SessionID:  req.SessionID,
		Role:       domain.RoleUser,
		Content:    message,
		Collection: collection,
	})
	if err != nil {
		return nil, err
	}

	history, err := s.messageRepo.ListBySession(ctx, req.SessionID, s.cfg.HistoryWindow)
	if err != nil {
		log.Error().Err(err).Str("session_id", req.SessionID).Msg("failed to read history")
		history = nil
	}

	start := time.Now()

	var content, model string
	if collection != "" {
		content = s.dispatchRAG(ctx, message, collection, onDelta)
	} else {
		content, model = s.dispatchDirect(ctx, req.Model, history, onDelta)
	}

	responseTime := math.Round(time.Since(start).Seconds()*100) / 100

	assistantCollection := ""
	if collection != "" {
		// records that retrieval augmentation was intended for this turn
		assistantCollection = collection
	}

	assistantID, err := s.messageRepo.Append(ctx, domain.AppendMessage{
		SessionID:    req.SessionID,
		Role:         domain.RoleAssistant,
		Content:      content,
		Collection:   assistantCollection,
		Model:        model,
		ResponseTime: &responseTime,
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Publish(EventSessionsChanged)
	}

	now := time.Now().UTC()
	return &domain.TurnResult{
		UserMessage: domain.Message{
			ID:         userID,
			SessionID:  req.SessionID,
			Role:       domain.RoleUser,
			Content:    message,
			Collection: collection,
			CreatedAt:  now,
		},
		AssistantMessage: domain.Message{
			ID:           assistantID,
			SessionID:    req.SessionID,
			Role:         domain.RoleAssistant,
			Content:      content,
			Collection:   assistantCollection,
			Model:        model,
			ResponseTime: &responseTime,
			CreatedAt:    now,
		},
	}, nil
}

// dispatchDirect sends the conversational context to the completion
// service. Returns the assistant content and the model that produced it
// (empty on failure).
func (s *ChatService) dispatchDirect(ctx context.Context, model string, history []domain.Message, onDelta func(string) error) (string, string) {
	if model == "" {
		model = s.cfg.DefaultModel
	}
	opts := upstream.CompletionOptions{Model: model}
	msgs := toChatMessages(history)

	if onDelta == nil {
		content, err := s.llm.Complete(ctx, msgs, opts)
		if err != nil {
			log.Warn().Err(err).Msg("completion failed")
			return "Error: " + err.Error(), ""
		}
		if content == "" {
			content = noResponse
		}
		return content, model
	}

	stream, err := s.llm.CompleteStream(ctx, msgs, opts)
	if err != nil {
		log.Warn().Err(err).Msg("completion stream failed")
		return "Error: " + err.Error(), ""
	}
	defer stream.Close()

	var sb strings.Builder
	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Warn().Err(err).Msg("completion stream interrupted")
			if sb.Len() == 0 {
				return "Error: " + err.Error(), ""
			}
			break
		}

		delta := chunk.DeltaContent()
		if delta == "" {
			continue
		}
		sb.WriteString(delta)
		if err := onDelta(delta); err != nil {
			// consumer abandoned; keep what was generated so far
			break
		}
	}

	if sb.Len() == 0 {
		return noResponse, model
	}
	return sb.String(), model
}

// dispatchRAG delegates the bare query to the RAG service; history stays
// local because the RAG server builds context from retrieved documents.
func (s *ChatService) dispatchRAG(ctx context.Context, message, collection string, onDelta func(string) error) string {
	result, err := s.rag.Query(ctx, message, collection, s.cfg.TopK, true)
	if err != nil {
		log.Warn().Err(err).Str("collection", collection).Msg("rag query failed")
		return "RAG Error: " + err.Error()
	}

	answer := result.Answer
	if answer == "" {
		answer = noResponse
	}

	// the RAG service does not stream; emit the answer as one delta
	if onDelta != nil {
		_ = onDelta(answer)
	}
	return answer
}

func toChatMessages(history []domain.Message) []upstream.ChatMessage {
	messages := make([]upstream.ChatMessage, 0, len(history))
	for _, m := range history {
		messages = append(messages, upstream.ChatMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	return messages
}

// History returns the most recent limit messages in chronological order
func (s *ChatService) History(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	return s.messageRepo.ListBySession(ctx, sessionID, limit)
}

// RecentSessions lists sessions by most recent activity
func (s *ChatService) RecentSessions(ctx context.Context, limit int) ([]domain.SessionSummary, error) {
	return s.messageRepo.ListRecentSessions(ctx, limit)
}

// DeleteSession removes a session and all its messages; idempotent
func (s *ChatService) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.messageRepo.DeleteSession(ctx, sessionID); err != nil {
		return err
	}
	if s.notifier != nil {
		s.notifier.Publish(EventSessionsChanged)
	}
	return nil
}
