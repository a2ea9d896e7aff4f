package ai

import (
	"context"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"chatd/internal/ai/component"
	"chatd/internal/config"
	"chatd/internal/model"
)

// ChatChain wraps the Eino chain: system prompt + history placeholder +
// user message, piped into the provider's ChatModel.
type ChatChain struct {
	runnable compose.Runnable[map[string]any, *schema.Message]
}

// NewChatChain builds and compiles the chain for the configured provider.
func NewChatChain(ctx context.Context, cfg *config.AIConfig, systemPrompt string) (*ChatChain, error) {
	chatModel, err := component.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}

	template := prompt.FromMessages(schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{content}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(template).AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, err
	}

	return &ChatChain{runnable: runnable}, nil
}

// Run executes one turn with the bounded history window.
func (c *ChatChain) Run(ctx context.Context, content string, history []*model.Message) (*schema.Message, error) {
	return c.runnable.Invoke(ctx, map[string]any{
		"history": toSchemaMessages(history),
		"content": content,
	})
}

func toSchemaMessages(history []*model.Message) []*schema.Message {
	msgs := make([]*schema.Message, 0, len(history))
	for _, m := range history {
		switch m.Role {
		case model.RoleAssistant:
			msgs = append(msgs, schema.AssistantMessage(m.Content, nil))
		case model.RoleSystem:
			msgs = append(msgs, schema.SystemMessage(m.Content))
		default:
			msgs = append(msgs, schema.UserMessage(m.Content))
		}
	}
	return msgs
}
