package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"chatd/internal/ai"
	"chatd/internal/model"
	"chatd/internal/pkg/cache"
	"chatd/internal/pkg/id"
	"chatd/internal/repository"
)

// welcomeContent greets the user on every new thread. It is a plain stored
// message, not an AI reply.
const welcomeContent = "Hello! I am your AI assistant. I can answer questions, " +
	"explain concepts, and help you with many different topics. What can I do for you?"

// ChatService orchestrates the conversation flow: thread creation with its
// welcome message, and the send-message turn.
type ChatService struct {
	aiClient    *ai.Client
	threadRepo  repository.ThreadRepository
	messageRepo repository.MessageRepository
	cache       *cache.RedisCache // optional, nil when Redis is absent
	maxHistory  int64
}

// NewChatService creates the orchestrator.
func NewChatService(
	aiClient *ai.Client,
	threadRepo repository.ThreadRepository,
	messageRepo repository.MessageRepository,
	redisCache *cache.RedisCache,
	maxHistoryMessages int,
) *ChatService {
	return &ChatService{
		aiClient:    aiClient,
		threadRepo:  threadRepo,
		messageRepo: messageRepo,
		cache:       redisCache,
		maxHistory:  int64(maxHistoryMessages),
	}
}

// CreateThread creates a thread plus one assistant welcome message
// (metadata.type = "welcome", no AI call).
func (s *ChatService) CreateThread(ctx context.Context, title string) (*model.ThreadCreateResponse, error) {
	thread := &model.Thread{
		ID:    id.NewThread(),
		Title: title,
	}
	if err := s.threadRepo.Create(ctx, thread); err != nil {
		return nil, err
	}

	welcome := &model.Message{
		ID:        id.NewMessage(model.RoleAssistant),
		ThreadID:  thread.ID,
		Role:      model.RoleAssistant,
		Content:   welcomeContent,
		CreatedAt: time.Now().UTC(),
		Metadata:  map[string]any{"type": "welcome"},
	}
	if err := s.messageRepo.Create(ctx, welcome); err != nil {
		return nil, err
	}

	log.Info().Str("thread_id", thread.ID).Msg("thread created")

	return &model.ThreadCreateResponse{ID: thread.ID}, nil
}

// SendMessage runs one conversation turn:
//
//  1. fetch the history window
//  2. generate fresh user/assistant message IDs
//  3. call the AI responder (absorbs its own failures)
//  4. persist the user message, then the assistant message
//  5. touch the thread's updatedAt
//
// The sequence is best-effort, not atomic: if a write fails after the AI
// call, the reply is lost and never retried; if the final touch fails, the
// thread's recency goes stale but both messages remain valid. Thread
// existence is the caller's job (handler boundary).
//
// The assistant message is stamped one millisecond after the user message so
// the pair keeps its order under the store's millisecond time granularity.
func (s *ChatService) SendMessage(ctx context.Context, threadID, content string, metadata map[string]any) (*model.SendMessageResponse, error) {
	logger := log.With().Str("thread_id", threadID).Logger()

	history, err := s.messageRepo.History(ctx, threadID, s.maxHistory)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	userMessageID := id.NewMessage(model.RoleUser)
	assistantMessageID := id.NewMessage(model.RoleAssistant)

	reply := s.aiClient.Chat(ctx, content, history)

	// Stamp the turn after the newest stored message so rapid sequential
	// sends keep their order under millisecond time granularity.
	now := time.Now().UTC()
	if n := len(history); n > 0 {
		if floor := history[n-1].CreatedAt.Add(time.Millisecond); now.Before(floor) {
			now = floor
		}
	}
	userMsg := &model.Message{
		ID:        userMessageID,
		ThreadID:  threadID,
		Role:      model.RoleUser,
		Content:   content,
		CreatedAt: now,
		Metadata:  metadata,
	}
	if err := s.messageRepo.Create(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("save user message: %w", err)
	}

	assistantMsg := &model.Message{
		ID:        assistantMessageID,
		ThreadID:  threadID,
		Role:      model.RoleAssistant,
		Content:   reply.Content,
		CreatedAt: now.Add(time.Millisecond),
		Metadata: map[string]any{
			"model": reply.Model,
			"usage": map[string]any{
				"prompt_tokens":     reply.Usage.PromptTokens,
				"completion_tokens": reply.Usage.CompletionTokens,
				"total_tokens":      reply.Usage.TotalTokens,
			},
			"latency_ms": reply.LatencyMS,
		},
	}
	if err := s.messageRepo.Create(ctx, assistantMsg); err != nil {
		return nil, fmt.Errorf("save assistant message: %w", err)
	}

	if _, err := s.threadRepo.Touch(ctx, threadID, assistantMsg.CreatedAt); err != nil {
		return nil, fmt.Errorf("touch thread: %w", err)
	}
	s.invalidateThread(ctx, threadID)

	logger.Info().
		Str("model", reply.Model).
		Int("prompt_tokens", reply.Usage.PromptTokens).
		Int("completion_tokens", reply.Usage.CompletionTokens).
		Int64("latency_ms", reply.LatencyMS).
		Msg("chat turn completed")

	return &model.SendMessageResponse{
		ThreadID:           threadID,
		UserMessageID:      userMessageID,
		AssistantMessageID: assistantMessageID,
		Assistant: model.AssistantPayload{
			Content:   reply.Content,
			Model:     reply.Model,
			Usage:     reply.Usage,
			LatencyMS: reply.LatencyMS,
		},
	}, nil
}

func (s *ChatService) invalidateThread(ctx context.Context, threadID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.ThreadCacheKey(threadID)); err != nil {
		log.Warn().Err(err).Str("thread_id", threadID).Msg("failed to invalidate thread cache")
	}
}
