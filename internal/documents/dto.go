package documents

import (
	"time"

	"doc-analyzer/internal/analysis"
)

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	ID           string          `json:"id"`
	FileName     string          `json:"filename"`
	OriginalName string          `json:"originalName"`
	TextExtract  string          `json:"textExtract"`
	Analysis     analysis.Record `json:"analysis"`
	SizeBytes    int64           `json:"sizeBytes"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// ToResponse converts a stored document for JSON output.
func ToResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		ID:           doc.ID,
		FileName:     doc.FileName,
		OriginalName: doc.OriginalName,
		TextExtract:  doc.TextExtract,
		Analysis:     doc.Analysis,
		SizeBytes:    doc.SizeBytes,
		CreatedAt:    doc.CreatedAt,
	}
}

func toResponses(docs []Document) []DocumentResponse {
	out := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, ToResponse(doc))
	}
	return out
}
