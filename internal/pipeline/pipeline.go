// Package pipeline runs one uploaded document through extraction, analysis
// and persistence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"doc-analyzer/internal/analysis"
	"doc-analyzer/internal/documents"
	"doc-analyzer/internal/extract"
	"doc-analyzer/internal/llm"
	"doc-analyzer/internal/shared/metrics"
	"doc-analyzer/internal/shared/telemetry"
	"doc-analyzer/internal/shared/util"
)

// DefaultStoredTextMaxChars bounds the extracted text kept with a document.
const DefaultStoredTextMaxChars = 1_000_000

// Upload is one submitted file. It is never persisted as-is.
type Upload struct {
	Data         []byte
	MediaType    string
	FileName     string
	OriginalName string
	Size         int64
	OwnerID      string
	Structured   bool
	// RequestID correlates pipeline logs with the HTTP request.
	RequestID string
}

// Outcome is a successful run together with how the text was obtained.
type Outcome struct {
	Document documents.Document
	Strategy string
	Fallback bool
}

// Pipeline holds only shared, read-only collaborators and is safe for
// concurrent use.
type Pipeline struct {
	Extractors         *extract.Set
	Gateway            *llm.Gateway
	Repo               documents.Repo
	Model              string
	PromptMaxChars     int
	StoredTextMaxChars int
	// Now defaults to time.Now.
	Now func() time.Time
}

// Submit runs the upload through every stage and returns the stored document.
func (p *Pipeline) Submit(ctx context.Context, up Upload) (documents.Document, error) {
	out, err := p.Run(ctx, up)
	return out.Document, err
}

// Run is Submit plus extraction details. Nothing is stored unless every stage
// succeeds.
func (p *Pipeline) Run(ctx context.Context, up Upload) (Outcome, error) {
	start := time.Now()
	metrics.IncPipelineStarted()
	fields := map[string]any{
		"request_id": up.RequestID,
		"user_id":    up.OwnerID,
		"file_name":  up.FileName,
		"size_bytes": len(up.Data),
		"structured": up.Structured,
	}

	out, err := p.run(ctx, up, fields)
	fields["duration_ms"] = time.Since(start).Milliseconds()
	if err != nil {
		code := Code(err)
		metrics.IncPipelineFailed(code)
		fields["error_code"] = code
		fields["err"] = err
		if code == CodeInternal || code == CodeStorage || code == CodeNoExtractorAvailable {
			telemetry.Error("pipeline.failed", fields)
		} else {
			telemetry.Warn("pipeline.failed", fields)
		}
		return Outcome{}, err
	}

	metrics.IncPipelineCompleted()
	metrics.ObservePipelineDurationMs(float64(time.Since(start).Milliseconds()))
	telemetry.Info("pipeline.completed", fields)
	return out, nil
}

func (p *Pipeline) run(ctx context.Context, up Upload, fields map[string]any) (Outcome, error) {
	if len(up.Data) == 0 {
		return Outcome{}, ErrMissingFile
	}

	stage := time.Now()
	res, err := p.Extractors.Extract(ctx, up.Data)
	if err != nil {
		return Outcome{}, extractionError(err)
	}
	fields["strategy"] = res.Strategy
	fields["fallback"] = res.Fallback
	if res.Fallback {
		metrics.IncExtractionFallback()
	}
	telemetry.Info("pipeline.extracted", map[string]any{
		"request_id":  up.RequestID,
		"user_id":     up.OwnerID,
		"strategy":    res.Strategy,
		"fallback":    res.Fallback,
		"chars":       len([]rune(res.Text)),
		"duration_ms": time.Since(stage).Milliseconds(),
	})

	prompt := llm.BuildPrompt(res.Text, up.Structured, p.PromptMaxChars)

	if !p.Gateway.Ready() {
		return Outcome{}, ErrGatewayNotConfigured
	}
	stage = time.Now()
	raw, err := p.Gateway.Complete(ctx, p.Model, prompt)
	if err != nil {
		return Outcome{}, gatewayError(err)
	}
	telemetry.Info("pipeline.analyzed", map[string]any{
		"request_id":   up.RequestID,
		"user_id":      up.OwnerID,
		"provider":     p.Gateway.ProviderName(),
		"model":        p.Model,
		"prompt_chars": len(prompt),
		"duration_ms":  time.Since(stage).Milliseconds(),
	})

	record := analysis.Normalize(raw, up.Structured)
	if record.IsFallback() {
		telemetry.Warn("pipeline.normalize_fallback", map[string]any{
			"request_id": up.RequestID,
			"user_id":    up.OwnerID,
		})
	}

	now := p.now().UTC()
	record.CreatedAt = now
	maxStored := p.StoredTextMaxChars
	if maxStored <= 0 {
		maxStored = DefaultStoredTextMaxChars
	}
	size := up.Size
	if size <= 0 {
		size = int64(len(up.Data))
	}
	doc := documents.Document{
		ID:           uuid.NewString(),
		OwnerID:      up.OwnerID,
		FileName:     util.CleanText(up.FileName),
		OriginalName: util.CleanText(up.OriginalName),
		TextExtract:  util.TruncateRunes(res.Text, maxStored),
		Analysis:     record,
		SizeBytes:    size,
		CreatedAt:    now,
	}

	stored, err := p.Repo.Store(ctx, doc)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	fields["document_id"] = stored.ID
	fields["sentiment"] = string(stored.Analysis.Sentiment)

	return Outcome{Document: stored, Strategy: res.Strategy, Fallback: res.Fallback}, nil
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func extractionError(err error) error {
	switch {
	case errors.Is(err, extract.ErrNoExtractorAvailable):
		return fmt.Errorf("%w: %w", ErrNoExtractorAvailable, err)
	case errors.Is(err, extract.ErrEmptyExtraction):
		return fmt.Errorf("%w: %w", ErrEmptyExtraction, err)
	default:
		return fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}
}

func gatewayError(err error) error {
	switch {
	case errors.Is(err, llm.ErrTimeout):
		return fmt.Errorf("%w: %w", ErrGatewayTimeout, err)
	case errors.Is(err, llm.ErrUnavailable):
		return fmt.Errorf("%w: %w", ErrGatewayNotConfigured, err)
	default:
		return fmt.Errorf("%w: %w", ErrGatewayRequestFailed, err)
	}
}
