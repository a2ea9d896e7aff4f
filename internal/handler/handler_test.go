package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/smartystreets/goconvey/convey"

	"chatd/internal/ai"
	"chatd/internal/config"
	"chatd/internal/model"
	"chatd/internal/service"
)

// In-memory repositories backing the full handler → service stack. These
// mirror the Mongo sort semantics so route tests observe real ordering.

type memThreadRepo struct {
	threads map[string]*model.Thread
}

func (r *memThreadRepo) Create(_ context.Context, t *model.Thread) error {
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	cp := *t
	r.threads[t.ID] = &cp
	return nil
}

func (r *memThreadRepo) FindByID(_ context.Context, id string) (*model.Thread, error) {
	t, ok := r.threads[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *memThreadRepo) List(_ context.Context, skip, limit int64) ([]*model.Thread, error) {
	all := make([]*model.Thread, 0, len(r.threads))
	for _, t := range r.threads {
		cp := *t
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].UpdatedAt.Equal(all[j].UpdatedAt) {
			return all[i].UpdatedAt.After(all[j].UpdatedAt)
		}
		return all[i].ID < all[j].ID
	})
	if skip >= int64(len(all)) {
		return nil, nil
	}
	all = all[skip:]
	if limit < int64(len(all)) {
		all = all[:limit]
	}
	return all, nil
}

func (r *memThreadRepo) Update(_ context.Context, id string, title *string) (bool, error) {
	t, ok := r.threads[id]
	if !ok {
		return false, nil
	}
	if title != nil {
		t.Title = *title
	}
	t.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *memThreadRepo) Touch(_ context.Context, id string, at time.Time) (bool, error) {
	t, ok := r.threads[id]
	if !ok {
		return false, nil
	}
	if at.After(t.UpdatedAt) {
		t.UpdatedAt = at
	}
	return true, nil
}

func (r *memThreadRepo) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := r.threads[id]; !ok {
		return false, nil
	}
	delete(r.threads, id)
	return true, nil
}

func (r *memThreadRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.threads)), nil
}

type memMessageRepo struct {
	msgs []*model.Message
}

func (r *memMessageRepo) Create(_ context.Context, m *model.Message) error {
	cp := *m
	r.msgs = append(r.msgs, &cp)
	return nil
}

func (r *memMessageRepo) FindByID(_ context.Context, id string) (*model.Message, error) {
	for _, m := range r.msgs {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memMessageRepo) byThread(threadID string) []*model.Message {
	var out []*model.Message
	for _, m := range r.msgs {
		if m.ThreadID == threadID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *memMessageRepo) List(_ context.Context, threadID string, skip, limit int64) ([]*model.Message, error) {
	all := r.byThread(threadID)
	if skip >= int64(len(all)) {
		return nil, nil
	}
	all = all[skip:]
	if limit < int64(len(all)) {
		all = all[:limit]
	}
	return all, nil
}

func (r *memMessageRepo) History(_ context.Context, threadID string, limit int64) ([]*model.Message, error) {
	all := r.byThread(threadID)
	if int64(len(all)) > limit {
		all = all[int64(len(all))-limit:]
	}
	return all, nil
}

func (r *memMessageRepo) Count(_ context.Context, threadID string) (int64, error) {
	return int64(len(r.byThread(threadID))), nil
}

func (r *memMessageRepo) DeleteAll(_ context.Context, threadID string) (int64, error) {
	var kept []*model.Message
	var deleted int64
	for _, m := range r.msgs {
		if m.ThreadID == threadID {
			deleted++
			continue
		}
		kept = append(kept, m)
	}
	r.msgs = kept
	return deleted, nil
}

// newTestRouter wires the routes the way the server does, over in-memory
// stores and a mock-mode AI client.
func newTestRouter() (*gin.Engine, *memMessageRepo) {
	gin.SetMode(gin.TestMode)

	threadRepo := &memThreadRepo{threads: map[string]*model.Thread{}}
	messageRepo := &memMessageRepo{}

	aiClient := ai.NewClient(&config.AIConfig{}, "You are a helpful assistant.")
	chatSvc := service.NewChatService(aiClient, threadRepo, messageRepo, nil, 15)
	threadSvc := service.NewThreadService(threadRepo, messageRepo, nil)
	messageSvc := service.NewMessageService(messageRepo, threadRepo)

	threadHandler := NewThreadHandler(chatSvc, threadSvc)
	messageHandler := NewMessageHandler(chatSvc, threadSvc, messageSvc)
	healthHandler := NewHealthHandler()

	r := gin.New()
	r.GET("/health", healthHandler.Health)
	threads := r.Group("/threads")
	{
		threads.POST("", threadHandler.Create)
		threads.GET("", threadHandler.List)
		threads.GET("/:id", threadHandler.Get)
		threads.PUT("/:id", threadHandler.Update)
		threads.DELETE("/:id", threadHandler.Delete)
		threads.POST("/:id/messages", messageHandler.Send)
		threads.GET("/:id/messages", messageHandler.List)
		threads.GET("/:id/history", messageHandler.History)
	}
	return r, messageRepo
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](w *httptest.ResponseRecorder) T {
	var v T
	_ = json.Unmarshal(w.Body.Bytes(), &v)
	return v
}

func TestThreadRoutes(t *testing.T) {
	Convey("Given the API router", t, func() {
		r, _ := newTestRouter()

		Convey("GET /health reports liveness", func() {
			w := doJSON(r, http.MethodGet, "/health", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			resp := decode[model.HealthResponse](w)
			So(resp.OK, ShouldBeTrue)
			So(resp.Message, ShouldEqual, "Backend is running")
		})

		Convey("POST /threads creates a thread", func() {
			w := doJSON(r, http.MethodPost, "/threads", gin.H{"title": "My chat"})
			So(w.Code, ShouldEqual, http.StatusOK)
			created := decode[model.ThreadCreateResponse](w)
			So(created.ID, ShouldStartWith, "thread_")

			Convey("GET /threads/:id returns it with the welcome count", func() {
				w := doJSON(r, http.MethodGet, "/threads/"+created.ID, nil)
				So(w.Code, ShouldEqual, http.StatusOK)
				out := decode[model.ThreadOut](w)
				So(out.Title, ShouldEqual, "My chat")
				So(out.MessagesCount, ShouldEqual, 1)
			})

			Convey("PUT /threads/:id renames it", func() {
				w := doJSON(r, http.MethodPut, "/threads/"+created.ID, gin.H{"title": "Renamed"})
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode[model.SuccessResponse](w).OK, ShouldBeTrue)

				w = doJSON(r, http.MethodGet, "/threads/"+created.ID, nil)
				So(decode[model.ThreadOut](w).Title, ShouldEqual, "Renamed")
			})

			Convey("DELETE /threads/:id removes it and its messages", func() {
				w := doJSON(r, http.MethodDelete, "/threads/"+created.ID, nil)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode[model.SuccessResponse](w).Message,
					ShouldEqual, "Thread and 1 messages deleted successfully")

				w = doJSON(r, http.MethodGet, "/threads/"+created.ID, nil)
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("POST /threads without a title is a validation error", func() {
			w := doJSON(r, http.MethodPost, "/threads", gin.H{})
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			So(decode[model.ErrorResponse](w).Detail, ShouldNotBeBlank)
		})

		Convey("Non-integer pagination params are a validation error", func() {
			w := doJSON(r, http.MethodGet, "/threads?skip=abc", nil)
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			So(decode[model.ErrorResponse](w).Detail, ShouldContainSubstring, "skip")

			w = doJSON(r, http.MethodGet, "/threads?limit=ten", nil)
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			So(decode[model.ErrorResponse](w).Detail, ShouldContainSubstring, "limit")
		})

		Convey("Unknown thread IDs map to 404 with the detail body", func() {
			for _, tc := range []struct{ method, path string }{
				{http.MethodGet, "/threads/thread_missing"},
				{http.MethodDelete, "/threads/thread_missing"},
				{http.MethodGet, "/threads/thread_missing/messages"},
				{http.MethodGet, "/threads/thread_missing/history"},
			} {
				w := doJSON(r, tc.method, tc.path, nil)
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(decode[model.ErrorResponse](w).Detail, ShouldEqual, "Thread not found")
			}

			w := doJSON(r, http.MethodPut, "/threads/thread_missing", gin.H{"title": "x"})
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestMessageRoutes(t *testing.T) {
	Convey("Given a created thread", t, func() {
		r, messageRepo := newTestRouter()

		w := doJSON(r, http.MethodPost, "/threads", gin.H{"title": "Chat"})
		So(w.Code, ShouldEqual, http.StatusOK)
		threadID := decode[model.ThreadCreateResponse](w).ID

		Convey("POST messages returns the full turn envelope", func() {
			w := doJSON(r, http.MethodPost, "/threads/"+threadID+"/messages",
				gin.H{"content": "Hello!"})
			So(w.Code, ShouldEqual, http.StatusOK)

			resp := decode[model.SendMessageResponse](w)
			So(resp.ThreadID, ShouldEqual, threadID)
			So(resp.UserMessageID, ShouldStartWith, "msg_user_")
			So(resp.AssistantMessageID, ShouldStartWith, "msg_assistant_")
			So(resp.Assistant.Model, ShouldEqual, ai.ModelMock)
			So(resp.Assistant.Content, ShouldContainSubstring, "Hello!")
			So(resp.Assistant.Usage.TotalTokens, ShouldBeGreaterThan, 0)

			Convey("GET messages lists welcome, user, assistant in order", func() {
				w := doJSON(r, http.MethodGet, "/threads/"+threadID+"/messages", nil)
				So(w.Code, ShouldEqual, http.StatusOK)

				msgs := decode[[]model.MessageOut](w)
				So(msgs, ShouldHaveLength, 3)
				So(msgs[0].Role, ShouldEqual, model.RoleAssistant)
				So(msgs[1].ID, ShouldEqual, resp.UserMessageID)
				So(msgs[2].ID, ShouldEqual, resp.AssistantMessageID)
			})

			Convey("GET history honors the limit, newest kept", func() {
				w := doJSON(r, http.MethodGet, "/threads/"+threadID+"/history?limit=2", nil)
				So(w.Code, ShouldEqual, http.StatusOK)

				msgs := decode[[]model.MessageOut](w)
				So(msgs, ShouldHaveLength, 2)
				So(msgs[0].ID, ShouldEqual, resp.UserMessageID)
				So(msgs[1].ID, ShouldEqual, resp.AssistantMessageID)
			})
		})

		Convey("Non-integer limit on message queries is a validation error", func() {
			w := doJSON(r, http.MethodGet, "/threads/"+threadID+"/messages?skip=x", nil)
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)

			w = doJSON(r, http.MethodGet, "/threads/"+threadID+"/history?limit=x", nil)
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
		})

		Convey("POST messages with empty content is a validation error", func() {
			w := doJSON(r, http.MethodPost, "/threads/"+threadID+"/messages",
				gin.H{"content": ""})
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
		})

		Convey("POST messages to a missing thread writes nothing", func() {
			before := len(messageRepo.msgs)

			w := doJSON(r, http.MethodPost, "/threads/thread_missing/messages",
				gin.H{"content": "lost"})
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decode[model.ErrorResponse](w).Detail, ShouldEqual, "Thread not found")
			So(len(messageRepo.msgs), ShouldEqual, before)
		})
	})
}
