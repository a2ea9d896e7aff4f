package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chatd/internal/model"
	"chatd/internal/service"
)

// MessageHandler serves the per-thread message endpoints.
type MessageHandler struct {
	chatSvc    *service.ChatService
	threadSvc  *service.ThreadService
	messageSvc *service.MessageService
}

// NewMessageHandler creates a message handler.
func NewMessageHandler(
	chatSvc *service.ChatService,
	threadSvc *service.ThreadService,
	messageSvc *service.MessageService,
) *MessageHandler {
	return &MessageHandler{
		chatSvc:    chatSvc,
		threadSvc:  threadSvc,
		messageSvc: messageSvc,
	}
}

// Send posts a user message and returns the assistant reply.
// @Summary      Send message
// @Description  Persists the user message, generates an assistant reply and persists it too.
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        id    path      string                    true  "thread ID"
// @Param        body  body      model.SendMessageRequest  true  "message content"
// @Success      200   {object}  model.SendMessageResponse
// @Failure      404   {object}  model.ErrorResponse
// @Failure      422   {object}  model.ErrorResponse
// @Failure      500   {object}  model.ErrorResponse
// @Router       /threads/{id}/messages [post]
func (h *MessageHandler) Send(c *gin.Context) {
	var req model.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	threadID := c.Param("id")

	// Thread existence is checked here at the boundary, not inside the
	// orchestrator.
	exists, err := h.threadSvc.Exists(c.Request.Context(), threadID)
	if err != nil {
		failf(c, http.StatusInternalServerError, "send message", err)
		return
	}
	if !exists {
		fail(c, http.StatusNotFound, "Thread not found")
		return
	}

	resp, err := h.chatSvc.SendMessage(c.Request.Context(), threadID, req.Content, req.Metadata)
	if err != nil {
		failf(c, http.StatusInternalServerError, "send message", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// List returns a chronological page of a thread's messages.
// @Summary      List messages
// @Tags         messages
// @Produce      json
// @Param        id     path      string  true   "thread ID"
// @Param        skip   query     int     false  "messages to skip"
// @Param        limit  query     int     false  "maximum messages to return"
// @Success      200    {array}   model.MessageOut
// @Failure      404    {object}  model.ErrorResponse
// @Failure      500    {object}  model.ErrorResponse
// @Router       /threads/{id}/messages [get]
func (h *MessageHandler) List(c *gin.Context) {
	skip, limit, err := pagination(c, 50)
	if err != nil {
		fail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	msgs, err := h.messageSvc.List(c.Request.Context(), c.Param("id"), skip, limit)
	if errors.Is(err, service.ErrThreadNotFound) {
		fail(c, http.StatusNotFound, "Thread not found")
		return
	}
	if err != nil {
		failf(c, http.StatusInternalServerError, "get messages", err)
		return
	}

	c.JSON(http.StatusOK, msgs)
}

// History returns the most recent N messages in chronological order.
// @Summary      Conversation history
// @Tags         messages
// @Produce      json
// @Param        id     path      string  true   "thread ID"
// @Param        limit  query     int     false  "maximum messages to return"
// @Success      200    {array}   model.MessageOut
// @Failure      404    {object}  model.ErrorResponse
// @Failure      500    {object}  model.ErrorResponse
// @Router       /threads/{id}/history [get]
func (h *MessageHandler) History(c *gin.Context) {
	_, limit, err := pagination(c, 50)
	if err != nil {
		fail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	msgs, err := h.messageSvc.History(c.Request.Context(), c.Param("id"), limit)
	if errors.Is(err, service.ErrThreadNotFound) {
		fail(c, http.StatusNotFound, "Thread not found")
		return
	}
	if err != nil {
		failf(c, http.StatusInternalServerError, "get conversation history", err)
		return
	}

	c.JSON(http.StatusOK, msgs)
}
