package model

import "time"

// ThreadOut is a thread as served to clients, with the derived message count.
type ThreadOut struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	MessagesCount int64     `json:"messagesCount"`
}

// ThreadCreateResponse is returned by POST /threads.
type ThreadCreateResponse struct {
	ID string `json:"id"`
}

// MessageOut is a message as served to clients.
type MessageOut struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// TokenUsage reports token consumption for one AI turn.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// AssistantPayload carries the assistant reply inside SendMessageResponse.
type AssistantPayload struct {
	Content   string     `json:"content"`
	Model     string     `json:"model"`
	Usage     TokenUsage `json:"usage"`
	LatencyMS int64      `json:"latency_ms"`
}

// SendMessageResponse is returned by POST /threads/:id/messages.
type SendMessageResponse struct {
	ThreadID           string           `json:"thread_id"`
	UserMessageID      string           `json:"user_message_id"`
	AssistantMessageID string           `json:"assistant_message_id"`
	Assistant          AssistantPayload `json:"assistant"`
}

// SuccessResponse acknowledges an update or delete.
type SuccessResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// ErrorResponse is the error body for every non-2xx status.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	OK        bool   `json:"ok"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}
