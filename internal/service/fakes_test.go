package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"chatd/internal/model"
)

// memThreadRepo is an in-memory ThreadRepository for service tests.
// failTouch, when set, makes Touch fail once.
type memThreadRepo struct {
	mu        sync.Mutex
	threads   map[string]*model.Thread
	failTouch error
}

func newMemThreadRepo() *memThreadRepo {
	return &memThreadRepo{threads: map[string]*model.Thread{}}
}

func (r *memThreadRepo) Create(_ context.Context, thread *model.Thread) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	thread.CreatedAt = now
	thread.UpdatedAt = now
	cp := *thread
	r.threads[thread.ID] = &cp
	return nil
}

func (r *memThreadRepo) FindByID(_ context.Context, id string) (*model.Thread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.threads[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *memThreadRepo) List(_ context.Context, skip, limit int64) ([]*model.Thread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
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
	r.mu.Lock()
	defer r.mu.Unlock()
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
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failTouch != nil {
		err := r.failTouch
		r.failTouch = nil
		return false, err
	}
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
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.threads[id]; !ok {
		return false, nil
	}
	delete(r.threads, id)
	return true, nil
}

func (r *memThreadRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.threads)), nil
}

// memMessageRepo is an in-memory MessageRepository. failCreate, when set,
// makes Create fail once so tests can pin the non-atomic send sequence.
type memMessageRepo struct {
	mu         sync.Mutex
	msgs       []*model.Message
	failCreate error
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{}
}

func (r *memMessageRepo) Create(_ context.Context, msg *model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate != nil {
		err := r.failCreate
		r.failCreate = nil
		return err
	}
	cp := *msg
	r.msgs = append(r.msgs, &cp)
	return nil
}

func (r *memMessageRepo) FindByID(_ context.Context, id string) (*model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
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
	r.mu.Lock()
	defer r.mu.Unlock()
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
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.byThread(threadID)
	if int64(len(all)) > limit {
		all = all[int64(len(all))-limit:]
	}
	return all, nil
}

func (r *memMessageRepo) Count(_ context.Context, threadID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byThread(threadID))), nil
}

func (r *memMessageRepo) DeleteAll(_ context.Context, threadID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
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

var errStoreDown = errors.New("store unavailable")
