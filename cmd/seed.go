package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"chatd/internal/model"
	"chatd/internal/pkg/id"
	"chatd/internal/pkg/mongodb"
	"chatd/internal/repository"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert sample threads and messages",
	Long:  `Insert a sample conversation into MongoDB for local development and testing.`,
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	client, err := mongodb.New(&cfg.Mongo)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	defer func() {
		_ = client.Close(context.Background())
	}()

	if err := mongodb.EnsureIndexes(client.Database()); err != nil {
		log.Warn().Err(err).Msg("failed to ensure indexes")
	}

	ctx := context.Background()
	threadRepo := repository.NewThreadRepo(client.Database())
	messageRepo := repository.NewMessageRepo(client.Database())

	thread := &model.Thread{
		ID:    id.NewThread(),
		Title: "Sample Chat",
	}
	if err := threadRepo.Create(ctx, thread); err != nil {
		return fmt.Errorf("failed to create sample thread: %w", err)
	}

	turns := []struct {
		role    string
		content string
	}{
		{model.RoleAssistant, "Hello! I am your AI assistant. What can I do for you?"},
		{model.RoleUser, "Hi! Can you explain what this service does?"},
		{model.RoleAssistant, "This service stores conversation threads and messages, and generates assistant replies through a configurable LLM provider."},
		{model.RoleUser, "What happens when no API key is configured?"},
		{model.RoleAssistant, "The responder falls back to a deterministic mock reply, so the chat flow keeps working end to end."},
	}

	base := time.Now().UTC()
	for i, turn := range turns {
		msg := &model.Message{
			ID:        id.NewMessage(turn.role),
			ThreadID:  thread.ID,
			Role:      turn.role,
			Content:   turn.content,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if i == 0 {
			msg.Metadata = map[string]any{"type": "welcome"}
		}
		if err := messageRepo.Create(ctx, msg); err != nil {
			return fmt.Errorf("failed to create sample message: %w", err)
		}
	}

	log.Info().
		Str("thread_id", thread.ID).
		Int("messages", len(turns)).
		Msg("sample data inserted")

	return nil
}
