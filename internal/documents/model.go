package documents

import (
	"time"

	"doc-analyzer/internal/analysis"
)

// Document is an analyzed upload owned by a user. It is created once at the
// end of a successful pipeline run and never mutated.
type Document struct {
	ID           string
	OwnerID      string
	FileName     string
	OriginalName string
	TextExtract  string
	Analysis     analysis.Record
	SizeBytes    int64
	CreatedAt    time.Time
}
