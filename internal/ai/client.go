package ai

import (
	"context"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	"chatd/internal/ai/component"
	"chatd/internal/config"
	"chatd/internal/model"
	"chatd/internal/pkg/tokencount"
)

// Client is the AI responder: it turns (content, bounded history) into an
// assistant reply. It is stateless per call and safe for concurrent use.
//
// Failure policy: Chat never returns an error. A missing credential,
// transport failure, non-success status, malformed response or timeout is
// absorbed into a degraded synthetic reply with a sentinel model name, so a
// send-message turn always completes.
type Client struct {
	cfg       *config.AIConfig
	modelName string
	chain     *ChatChain // nil in mock mode
	estimator *tokencount.Estimator
	timeout   time.Duration
}

// Reply is the responder output for one turn.
type Reply struct {
	Content   string
	Model     string
	Usage     model.TokenUsage
	LatencyMS int64
}

// NewClient creates the responder. Initialization never fails the process:
// with no provider, no API key, or a broken provider config it falls back to
// mock mode.
func NewClient(cfg *config.AIConfig, systemPrompt string) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = component.DefaultModel(cfg.Provider)
	}

	c := &Client{
		cfg:       cfg,
		modelName: modelName,
		estimator: tokencount.NewEstimator(),
		timeout:   timeout,
	}

	if cfg.Provider == "" || cfg.APIKey == "" {
		log.Warn().Msg("AI provider or API key not configured, using mock mode")
		return c
	}

	chain, err := NewChatChain(context.Background(), cfg, systemPrompt)
	if err != nil {
		log.Warn().Err(err).Str("provider", cfg.Provider).
			Msg("failed to initialize AI provider, using mock mode")
		return c
	}

	log.Info().Str("provider", cfg.Provider).Str("model", modelName).
		Msg("initialized AI provider")
	c.chain = chain
	return c
}

// Chat produces an assistant reply for content given the history window.
func (c *Client) Chat(ctx context.Context, content string, history []*model.Message) *Reply {
	start := time.Now()

	if c.chain == nil {
		return c.mockReply(content, start, nil)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.chain.Run(ctx, content, history)
	if err != nil {
		log.Warn().Err(err).Msg("AI call failed, returning degraded reply")
		return c.mockReply(content, start, err)
	}

	return &Reply{
		Content:   out.Content,
		Model:     c.modelName,
		Usage:     c.extractUsage(out, content),
		LatencyMS: time.Since(start).Milliseconds(),
	}
}

// MockMode reports whether the client runs without a real provider.
func (c *Client) MockMode() bool {
	return c.chain == nil
}

// extractUsage reads provider-reported usage, or estimates from word counts
// when the provider reports none.
func (c *Client) extractUsage(out *schema.Message, content string) model.TokenUsage {
	if out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
		u := out.ResponseMeta.Usage
		return model.TokenUsage{
			PromptTokens:     u.PromptTokens,
			CompletionTokens: u.CompletionTokens,
			TotalTokens:      u.TotalTokens,
		}
	}

	promptTokens := c.estimator.Estimate(content)
	completionTokens := c.estimator.Estimate(out.Content)

	return model.TokenUsage{
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
	}
}
