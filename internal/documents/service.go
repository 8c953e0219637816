package documents

import (
	"context"
	"strings"
)

// DefaultHistoryLimit caps history listings when no limit is configured.
const DefaultHistoryLimit = 50

// Service contains read and delete logic for stored documents.
type Service struct {
	Repo         Repo
	HistoryLimit int
}

// History returns the owner's newest documents. limit is clamped to
// HistoryLimit; limit <= 0 selects HistoryLimit.
func (s *Service) History(ctx context.Context, ownerID string, limit int) ([]Document, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrInvalidInput
	}
	max := s.HistoryLimit
	if max <= 0 {
		max = DefaultHistoryLimit
	}
	if limit <= 0 || limit > max {
		limit = max
	}
	return s.Repo.ListByOwner(ctx, ownerID, limit)
}

func (s *Service) Get(ctx context.Context, id, ownerID string) (Document, error) {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(ownerID) == "" {
		return Document{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, id, ownerID)
}

// Delete removes the owner's document or returns ErrNotFound.
func (s *Service) Delete(ctx context.Context, id, ownerID string) error {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(ownerID) == "" {
		return ErrInvalidInput
	}
	ok, err := s.Repo.Delete(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
