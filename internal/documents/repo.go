package documents

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repo defines persistence operations for documents. Reads and deletes are
// always scoped by owner.
type Repo interface {
	// Store persists doc, assigning ID and CreatedAt when absent.
	Store(ctx context.Context, doc Document) (Document, error)
	// ListByOwner returns up to limit documents, newest first.
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]Document, error)
	GetByID(ctx context.Context, id, ownerID string) (Document, error)
	// Delete reports whether a document was removed.
	Delete(ctx context.Context, id, ownerID string) (bool, error)
}

func withDefaults(doc Document) Document {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	if doc.OriginalName == "" {
		doc.OriginalName = doc.FileName
	}
	return doc
}
