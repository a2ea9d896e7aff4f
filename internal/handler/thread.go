package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chatd/internal/model"
	"chatd/internal/service"
)

// ThreadHandler serves the thread CRUD endpoints.
type ThreadHandler struct {
	chatSvc   *service.ChatService
	threadSvc *service.ThreadService
}

// NewThreadHandler creates a thread handler.
func NewThreadHandler(chatSvc *service.ChatService, threadSvc *service.ThreadService) *ThreadHandler {
	return &ThreadHandler{
		chatSvc:   chatSvc,
		threadSvc: threadSvc,
	}
}

// Create creates a thread and its welcome message.
// @Summary      Create thread
// @Tags         threads
// @Accept       json
// @Produce      json
// @Param        body  body      model.CreateThreadRequest  true  "thread title"
// @Success      200   {object}  model.ThreadCreateResponse
// @Failure      422   {object}  model.ErrorResponse
// @Failure      500   {object}  model.ErrorResponse
// @Router       /threads [post]
func (h *ThreadHandler) Create(c *gin.Context) {
	var req model.CreateThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	resp, err := h.chatSvc.CreateThread(c.Request.Context(), req.Title)
	if err != nil {
		failf(c, http.StatusInternalServerError, "create thread", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// List returns threads newest-updated first, with message counts.
// @Summary      List threads
// @Tags         threads
// @Produce      json
// @Param        skip   query     int  false  "threads to skip"
// @Param        limit  query     int  false  "maximum threads to return"
// @Success      200    {array}   model.ThreadOut
// @Failure      500    {object}  model.ErrorResponse
// @Router       /threads [get]
func (h *ThreadHandler) List(c *gin.Context) {
	skip, limit, err := pagination(c, 50)
	if err != nil {
		fail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	threads, err := h.threadSvc.List(c.Request.Context(), skip, limit)
	if err != nil {
		failf(c, http.StatusInternalServerError, "get threads", err)
		return
	}

	c.JSON(http.StatusOK, threads)
}

// Get returns one thread.
// @Summary      Get thread
// @Tags         threads
// @Produce      json
// @Param        id   path      string  true  "thread ID"
// @Success      200  {object}  model.ThreadOut
// @Failure      404  {object}  model.ErrorResponse
// @Failure      500  {object}  model.ErrorResponse
// @Router       /threads/{id} [get]
func (h *ThreadHandler) Get(c *gin.Context) {
	thread, err := h.threadSvc.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, service.ErrThreadNotFound) {
		fail(c, http.StatusNotFound, "Thread not found")
		return
	}
	if err != nil {
		failf(c, http.StatusInternalServerError, "get thread", err)
		return
	}

	c.JSON(http.StatusOK, thread)
}

// Update renames a thread.
// @Summary      Update thread title
// @Tags         threads
// @Accept       json
// @Produce      json
// @Param        id    path      string                     true  "thread ID"
// @Param        body  body      model.UpdateThreadRequest  true  "new title"
// @Success      200   {object}  model.SuccessResponse
// @Failure      404   {object}  model.ErrorResponse
// @Failure      422   {object}  model.ErrorResponse
// @Failure      500   {object}  model.ErrorResponse
// @Router       /threads/{id} [put]
func (h *ThreadHandler) Update(c *gin.Context) {
	var req model.UpdateThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	resp, err := h.threadSvc.Update(c.Request.Context(), c.Param("id"), req.Title)
	if errors.Is(err, service.ErrThreadNotFound) {
		fail(c, http.StatusNotFound, "Thread not found")
		return
	}
	if err != nil {
		failf(c, http.StatusInternalServerError, "update thread", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Delete removes a thread and all of its messages.
// @Summary      Delete thread
// @Tags         threads
// @Produce      json
// @Param        id   path      string  true  "thread ID"
// @Success      200  {object}  model.SuccessResponse
// @Failure      404  {object}  model.ErrorResponse
// @Failure      500  {object}  model.ErrorResponse
// @Router       /threads/{id} [delete]
func (h *ThreadHandler) Delete(c *gin.Context) {
	resp, err := h.threadSvc.Delete(c.Request.Context(), c.Param("id"))
	if errors.Is(err, service.ErrThreadNotFound) {
		fail(c, http.StatusNotFound, "Thread not found")
		return
	}
	if err != nil {
		failf(c, http.StatusInternalServerError, "delete thread", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
