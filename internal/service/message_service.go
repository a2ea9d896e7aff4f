package service

import (
	"context"

	"chatd/internal/model"
	"chatd/internal/repository"
)

// MessageService serves the user-facing message views. Both queries verify
// the thread exists at this boundary; the repository does not.
type MessageService struct {
	messageRepo repository.MessageRepository
	threadRepo  repository.ThreadRepository
}

// NewMessageService creates a message service.
func NewMessageService(
	messageRepo repository.MessageRepository,
	threadRepo repository.ThreadRepository,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		threadRepo:  threadRepo,
	}
}

// List returns a chronological page of a thread's messages.
func (s *MessageService) List(ctx context.Context, threadID string, skip, limit int64) ([]*model.MessageOut, error) {
	if err := s.requireThread(ctx, threadID); err != nil {
		return nil, err
	}

	msgs, err := s.messageRepo.List(ctx, threadID, skip, limit)
	if err != nil {
		return nil, err
	}
	return messageOuts(msgs), nil
}

// History returns the most recent limit messages in chronological order.
func (s *MessageService) History(ctx context.Context, threadID string, limit int64) ([]*model.MessageOut, error) {
	if err := s.requireThread(ctx, threadID); err != nil {
		return nil, err
	}

	msgs, err := s.messageRepo.History(ctx, threadID, limit)
	if err != nil {
		return nil, err
	}
	return messageOuts(msgs), nil
}

func (s *MessageService) requireThread(ctx context.Context, threadID string) error {
	thread, err := s.threadRepo.FindByID(ctx, threadID)
	if err != nil {
		return err
	}
	if thread == nil {
		return ErrThreadNotFound
	}
	return nil
}

func messageOuts(msgs []*model.Message) []*model.MessageOut {
	out := make([]*model.MessageOut, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, &model.MessageOut{
			ID:        m.ID,
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}
	return out
}
