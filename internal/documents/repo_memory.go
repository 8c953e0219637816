package documents

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory Repo used in dev without DATABASE_URL, by the CLI
// and in tests. It is safe for concurrent use.
type MemoryRepo struct {
	mu      sync.RWMutex
	byOwner map[string][]Document
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byOwner: make(map[string][]Document)}
}

func (r *MemoryRepo) Store(ctx context.Context, doc Document) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	if doc.OwnerID == "" {
		return Document{}, ErrInvalidInput
	}
	doc = withDefaults(doc)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byOwner[doc.OwnerID] = append(r.byOwner[doc.OwnerID], doc)
	return doc, nil
}

// ListByOwner returns documents newest first. limit <= 0 returns all.
func (r *MemoryRepo) ListByOwner(ctx context.Context, ownerID string, limit int) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	docs := make([]Document, len(r.byOwner[ownerID]))
	copy(docs, r.byOwner[ownerID])
	r.mu.RUnlock()

	// Later inserts win ties on CreatedAt.
	for i, j := 0, len(docs)-1; i < j; i, j = i+1, j-1 {
		docs[i], docs[j] = docs[j], docs[i]
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})

	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id, ownerID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, doc := range r.byOwner[ownerID] {
		if doc.ID == id {
			return doc, nil
		}
	}
	return Document{}, ErrNotFound
}

func (r *MemoryRepo) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	docs := r.byOwner[ownerID]
	for i := range docs {
		if docs[i].ID == id {
			r.byOwner[ownerID] = append(docs[:i:i], docs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

var _ Repo = (*MemoryRepo)(nil)
