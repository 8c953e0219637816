package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, owner_id, file_name, original_name, text_extract, analysis, size_bytes, created_at`

func (r *PGRepo) Store(ctx context.Context, doc Document) (Document, error) {
	if doc.OwnerID == "" {
		return Document{}, ErrInvalidInput
	}
	doc = withDefaults(doc)

	payload, err := json.Marshal(doc.Analysis)
	if err != nil {
		return Document{}, fmt.Errorf("marshal analysis: %w", err)
	}

	const query = `
INSERT INTO documents (
    id,
    owner_id,
    file_name,
    original_name,
    text_extract,
    analysis,
    size_bytes,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8)`

	_, err = r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.OwnerID,
		doc.FileName,
		doc.OriginalName,
		doc.TextExtract,
		string(payload),
		doc.SizeBytes,
		doc.CreatedAt,
	)
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string, limit int) ([]Document, error) {
	const query = `
SELECT ` + selectColumns + `
FROM documents
WHERE owner_id = $1
ORDER BY created_at DESC
LIMIT $2`

	if limit <= 0 {
		limit = 50
	}
	rows, err := r.DB.QueryContext(ctx, query, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (r *PGRepo) GetByID(ctx context.Context, id, ownerID string) (Document, error) {
	const query = `
SELECT ` + selectColumns + `
FROM documents
WHERE id = $1 AND owner_id = $2
LIMIT 1`

	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

func (r *PGRepo) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	const query = `DELETE FROM documents WHERE id = $1 AND owner_id = $2`
	res, err := r.DB.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var payload []byte
	if err := row.Scan(
		&doc.ID,
		&doc.OwnerID,
		&doc.FileName,
		&doc.OriginalName,
		&doc.TextExtract,
		&payload,
		&doc.SizeBytes,
		&doc.CreatedAt,
	); err != nil {
		return Document{}, err
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &doc.Analysis); err != nil {
			return Document{}, fmt.Errorf("decode analysis for %s: %w", doc.ID, err)
		}
	}
	if doc.Analysis.KeyPoints == nil {
		doc.Analysis.KeyPoints = []string{}
	}
	if doc.Analysis.Keywords == nil {
		doc.Analysis.Keywords = []string{}
	}
	return doc, nil
}

var _ Repo = (*PGRepo)(nil)
