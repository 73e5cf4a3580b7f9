package schedule

import (
	"sync"

	"github.com/bryan-buckman/syndicate/internal/model"
)

// Registry is the process-lifetime list of every scheduled post. It is
// appended to by batch confirmation and read by listing while dispatch
// goroutines mutate post state, so all access goes through the mutex.
type Registry struct {
	mu    sync.Mutex
	posts []*model.Post
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add records posts in confirmation order.
func (r *Registry) Add(posts ...*model.Post) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts = append(r.posts, posts...)
}

// UpdateStatus moves a post to a new lifecycle state. detail carries
// the publish error for failed posts.
func (r *Registry) UpdateStatus(post *model.Post, status model.PostStatus, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post.Status = status
	post.StatusError = detail
}

// List returns value copies of registered posts, in registration
// order, optionally filtered by platform and/or status. Empty filter
// values match everything.
func (r *Registry) List(platform model.Platform, status model.PostStatus) []model.Post {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Post, 0, len(r.posts))
	for _, p := range r.posts {
		if platform != "" && p.Platform != platform {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		out = append(out, *p)
	}
	return out
}

// BatchRegistry holds unconfirmed batches keyed by id.
type BatchRegistry struct {
	mu      sync.Mutex
	batches map[string]*model.Batch
}

// NewBatchRegistry creates an empty batch registry.
func NewBatchRegistry() *BatchRegistry {
	return &BatchRegistry{batches: make(map[string]*model.Batch)}
}

// Put stores a batch awaiting confirmation.
func (b *BatchRegistry) Put(batch *model.Batch) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.batches[batch.ID] = batch
}

// Get returns a batch without consuming it.
func (b *BatchRegistry) Get(id string) (*model.Batch, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	batch, ok := b.batches[id]
	return batch, ok
}

// Take removes and returns a batch. The removal is atomic, so two
// concurrent confirmations of the same id cannot both succeed and
// double-schedule the batch.
func (b *BatchRegistry) Take(id string) (*model.Batch, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	batch, ok := b.batches[id]
	if ok {
		delete(b.batches, id)
	}
	return batch, ok
}
