package model

// CreateThreadRequest creates a new thread.
type CreateThreadRequest struct {
	Title string `json:"title" binding:"required,min=1,max=200"`
}

// UpdateThreadRequest renames a thread.
type UpdateThreadRequest struct {
	Title string `json:"title" binding:"required,min=1,max=200"`
}

// SendMessageRequest posts a user message to a thread.
type SendMessageRequest struct {
	Content  string         `json:"content" binding:"required,min=1,max=10000"`
	Metadata map[string]any `json:"metadata,omitempty"`
}
