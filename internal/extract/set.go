package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"doc-analyzer/internal/shared/telemetry"
	"doc-analyzer/internal/shared/util"
)

// Set tries strategies in priority order and returns the first usable text.
type Set struct {
	strategies []Extractor
}

// NewSet builds a set; order is priority order.
func NewSet(strategies ...Extractor) *Set {
	out := make([]Extractor, 0, len(strategies))
	for _, s := range strategies {
		if s != nil {
			out = append(out, s)
		}
	}
	return &Set{strategies: out}
}

// Available lists the names of strategies that can be invoked.
func (s *Set) Available() []string {
	names := []string{}
	if s == nil {
		return names
	}
	for _, st := range s.strategies {
		if st.Available() {
			names = append(names, st.Name())
		}
	}
	return names
}

// Extract runs available strategies in order. A strategy that errors or yields
// only whitespace hands over to the next one. Returned text carries no NUL
// bytes and is valid UTF-8.
func (s *Set) Extract(ctx context.Context, data []byte) (Result, error) {
	var (
		attempted int
		succeeded int
		errs      []error
	)
	if s != nil {
		for _, st := range s.strategies {
			if !st.Available() {
				continue
			}
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
			attempted++

			text, err := st.Extract(ctx, data)
			if err != nil {
				telemetry.Warn("extract.strategy_failed", map[string]any{
					"strategy": st.Name(),
					"err":      err,
				})
				errs = append(errs, fmt.Errorf("%s: %w", st.Name(), err))
				continue
			}
			succeeded++
			text = util.CleanText(text)
			if strings.TrimSpace(text) == "" {
				telemetry.Info("extract.strategy_empty", map[string]any{"strategy": st.Name()})
				continue
			}
			return Result{Text: text, Strategy: st.Name(), Fallback: attempted > 1}, nil
		}
	}

	switch {
	case attempted == 0:
		return Result{}, ErrNoExtractorAvailable
	case succeeded > 0:
		return Result{}, ErrEmptyExtraction
	default:
		return Result{}, fmt.Errorf("%w: %w", ErrExtractionFailed, errors.Join(errs...))
	}
}
