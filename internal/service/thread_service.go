package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"chatd/internal/model"
	"chatd/internal/pkg/cache"
	"chatd/internal/repository"
)

// ThreadService owns thread queries and lifecycle beyond creation: listing
// with derived message counts, title updates and cascade deletion.
type ThreadService struct {
	threadRepo  repository.ThreadRepository
	messageRepo repository.MessageRepository
	cache       *cache.RedisCache // optional
}

// NewThreadService creates a thread service.
func NewThreadService(
	threadRepo repository.ThreadRepository,
	messageRepo repository.MessageRepository,
	redisCache *cache.RedisCache,
) *ThreadService {
	return &ThreadService{
		threadRepo:  threadRepo,
		messageRepo: messageRepo,
		cache:       redisCache,
	}
}

// List returns threads newest-updated first, each with its message count.
func (s *ThreadService) List(ctx context.Context, skip, limit int64) ([]*model.ThreadOut, error) {
	threads, err := s.threadRepo.List(ctx, skip, limit)
	if err != nil {
		return nil, err
	}

	out := make([]*model.ThreadOut, 0, len(threads))
	for _, t := range threads {
		count, err := s.messageRepo.Count(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, threadOut(t, count))
	}
	return out, nil
}

// Get returns one thread with its message count, or ErrThreadNotFound.
func (s *ThreadService) Get(ctx context.Context, threadID string) (*model.ThreadOut, error) {
	thread, err := s.findThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if thread == nil {
		return nil, ErrThreadNotFound
	}

	count, err := s.messageRepo.Count(ctx, threadID)
	if err != nil {
		return nil, err
	}
	return threadOut(thread, count), nil
}

// Exists reports whether the thread is present. Used as the boundary check
// before message operations.
func (s *ThreadService) Exists(ctx context.Context, threadID string) (bool, error) {
	thread, err := s.findThread(ctx, threadID)
	if err != nil {
		return false, err
	}
	return thread != nil, nil
}

// Update renames a thread and refreshes its updatedAt.
func (s *ThreadService) Update(ctx context.Context, threadID, title string) (*model.SuccessResponse, error) {
	matched, err := s.threadRepo.Update(ctx, threadID, &title)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, ErrThreadNotFound
	}
	s.invalidate(ctx, threadID)

	return &model.SuccessResponse{OK: true, Message: "Thread updated successfully"}, nil
}

// Delete removes a thread's messages first, then the thread itself. There is
// no transaction across the two collections: a crash in between leaves a
// message-less thread, never orphaned messages.
func (s *ThreadService) Delete(ctx context.Context, threadID string) (*model.SuccessResponse, error) {
	deleted, err := s.messageRepo.DeleteAll(ctx, threadID)
	if err != nil {
		return nil, err
	}

	matched, err := s.threadRepo.Delete(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, ErrThreadNotFound
	}
	s.invalidate(ctx, threadID)

	log.Info().Str("thread_id", threadID).Int64("deleted_messages", deleted).Msg("thread deleted")

	return &model.SuccessResponse{
		OK:      true,
		Message: fmt.Sprintf("Thread and %d messages deleted successfully", deleted),
	}, nil
}

// findThread consults the cache before the repository.
func (s *ThreadService) findThread(ctx context.Context, threadID string) (*model.Thread, error) {
	if s.cache != nil {
		var cached model.Thread
		if err := s.cache.Get(ctx, cache.ThreadCacheKey(threadID), &cached); err == nil {
			return &cached, nil
		}
	}

	thread, err := s.threadRepo.FindByID(ctx, threadID)
	if err != nil || thread == nil {
		return thread, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.ThreadCacheKey(threadID), thread, cache.ThreadCacheTTL); err != nil {
			log.Warn().Err(err).Str("thread_id", threadID).Msg("failed to cache thread")
		}
	}
	return thread, nil
}

func (s *ThreadService) invalidate(ctx context.Context, threadID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.ThreadCacheKey(threadID)); err != nil {
		log.Warn().Err(err).Str("thread_id", threadID).Msg("failed to invalidate thread cache")
	}
}

func threadOut(t *model.Thread, messagesCount int64) *model.ThreadOut {
	return &model.ThreadOut{
		ID:            t.ID,
		Title:         t.Title,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		MessagesCount: messagesCount,
	}
}
