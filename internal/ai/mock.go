package ai

import (
	"fmt"
	"time"

	"chatd/internal/model"
)

// Sentinel model names for degraded replies.
const (
	ModelMock  = "mock"
	ModelError = "error"
)

// mockReply builds the degraded synthetic response used when no provider is
// configured or the provider call failed. It is the reason a send-message
// turn never hard-fails on AI unavailability.
func (c *Client) mockReply(content string, start time.Time, cause error) *Reply {
	var text, modelName string
	if cause != nil {
		modelName = ModelError
		text = fmt.Sprintf(
			"Sorry, I hit an error while processing your request: %v. (mock mode - configure an AI API key)",
			cause)
	} else {
		modelName = ModelMock
		text = fmt.Sprintf(
			"I received your message: %q. This is a reply from the AI assistant. (mock mode - configure an AI API key)",
			content)
	}

	promptTokens := c.estimator.Estimate(content)
	completionTokens := c.estimator.Estimate(text)

	return &Reply{
		Content: text,
		Model:   modelName,
		Usage: model.TokenUsage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      promptTokens + completionTokens,
		},
		LatencyMS: time.Since(start).Milliseconds(),
	}
}
