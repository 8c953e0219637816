// Package extract turns PDF bytes into plain text through an ordered set of
// independent strategies.
package extract

import (
	"context"
	"errors"
)

// Strategy names, also used in EXTRACTORS configuration.
const (
	StructuralName = "structural"
	HeuristicName  = "heuristic"
)

var (
	// ErrNoExtractorAvailable means no strategy is enabled in this deployment.
	ErrNoExtractorAvailable = errors.New("no text extractor available")
	// ErrExtractionFailed means every available strategy failed to read the document.
	ErrExtractionFailed = errors.New("text extraction failed")
	// ErrEmptyExtraction means a strategy read the document but found no text.
	ErrEmptyExtraction = errors.New("no text extracted")
)

// Extractor is a single text-recovery strategy.
type Extractor interface {
	Name() string
	// Available reports whether the strategy may be invoked. It is fixed at construction.
	Available() bool
	Extract(ctx context.Context, data []byte) (string, error)
}

// Result is the text produced by the winning strategy.
type Result struct {
	Text     string
	Strategy string
	// Fallback is true when a higher-priority available strategy was tried first.
	Fallback bool
}
