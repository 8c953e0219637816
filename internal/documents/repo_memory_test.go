package documents

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestMemoryRepoStoreAssignsDefaults(t *testing.T) {
	repo := NewMemoryRepo()
	doc, err := repo.Store(context.Background(), Document{OwnerID: "u1", FileName: "a.pdf"})
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if doc.ID == "" || doc.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp, got %+v", doc)
	}
	if doc.OriginalName != "a.pdf" {
		t.Fatalf("original name should default to file name, got %q", doc.OriginalName)
	}
	if _, err := repo.Store(context.Background(), Document{FileName: "b.pdf"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without owner, got %v", err)
	}
}

func TestMemoryRepoListNewestFirstScopedByOwner(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"old", "mid", "new"} {
		if _, err := repo.Store(ctx, Document{OwnerID: "u1", FileName: name, CreatedAt: base.Add(time.Duration(i) * time.Hour)}); err != nil {
			t.Fatalf("Store: %v", err)
		}
	}
	if _, err := repo.Store(ctx, Document{OwnerID: "u2", FileName: "other"}); err != nil {
		t.Fatalf("Store: %v", err)
	}

	docs, err := repo.ListByOwner(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(docs) != 2 || docs[0].FileName != "new" || docs[1].FileName != "mid" {
		t.Fatalf("unexpected order %+v", docs)
	}

	all, _ := repo.ListByOwner(ctx, "u1", 0)
	if len(all) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(all))
	}
	none, _ := repo.ListByOwner(ctx, "nobody", 10)
	if none == nil || len(none) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", none)
	}
}

func TestMemoryRepoGetAndDeleteAreOwnerScoped(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	doc, _ := repo.Store(ctx, Document{OwnerID: "u1", FileName: "a.pdf"})

	if _, err := repo.GetByID(ctx, doc.ID, "u2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other owner, got %v", err)
	}
	if ok, _ := repo.Delete(ctx, doc.ID, "u2"); ok {
		t.Fatalf("other owner must not delete")
	}
	got, err := repo.GetByID(ctx, doc.ID, "u1")
	if err != nil || got.ID != doc.ID {
		t.Fatalf("GetByID: %v %+v", err, got)
	}
	if ok, err := repo.Delete(ctx, doc.ID, "u1"); !ok || err != nil {
		t.Fatalf("Delete: %v %v", ok, err)
	}
	if _, err := repo.GetByID(ctx, doc.ID, "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if ok, _ := repo.Delete(ctx, doc.ID, "u1"); ok {
		t.Fatalf("second delete should report false")
	}
}

func TestMemoryRepoConcurrentStores(t *testing.T) {
	repo := NewMemoryRepo()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.Store(context.Background(), Document{OwnerID: "u1", FileName: "x.pdf"})
		}()
	}
	wg.Wait()

	docs, _ := repo.ListByOwner(context.Background(), "u1", 0)
	if len(docs) != 50 {
		t.Fatalf("expected 50 documents, got %d", len(docs))
	}
}
