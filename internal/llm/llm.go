// Package llm builds analysis prompts and sends them to a generative model
// through a single shared gateway.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"doc-analyzer/internal/shared/telemetry"
)

var (
	// ErrUnavailable means no provider or model is configured.
	ErrUnavailable = errors.New("llm gateway not configured")
	// ErrTimeout means the provider did not answer within the gateway timeout.
	ErrTimeout = errors.New("llm request timed out")
	// ErrRequestFailed covers remote errors, quota rejections and empty answers.
	ErrRequestFailed = errors.New("llm request failed")
)

// Provider is a generative model backend. Implementations must be safe for
// concurrent use.
type Provider interface {
	Name() string
	Generate(ctx context.Context, model, prompt string) (string, error)
	Close() error
}

// Gateway is the process-wide handle to one provider. A nil Gateway is valid
// and reports not ready.
type Gateway struct {
	provider Provider
	timeout  time.Duration
	redactor *redactor
}

// NewGateway wraps provider. Secrets are scrubbed from every error the gateway returns.
func NewGateway(provider Provider, timeout time.Duration, secrets ...string) *Gateway {
	return &Gateway{
		provider: provider,
		timeout:  timeout,
		redactor: newRedactor(secrets...),
	}
}

// Ready reports whether Complete may be called.
func (g *Gateway) Ready() bool {
	return g != nil && g.provider != nil
}

// ProviderName returns the configured provider, or "" when not ready.
func (g *Gateway) ProviderName() string {
	if !g.Ready() {
		return ""
	}
	return g.provider.Name()
}

type completion struct {
	text string
	err  error
}

// Complete sends one prompt to model and returns the raw answer. It never
// retries and never substitutes another model.
func (g *Gateway) Complete(ctx context.Context, model, prompt string) (string, error) {
	if !g.Ready() {
		return "", ErrUnavailable
	}
	if strings.TrimSpace(model) == "" {
		return "", fmt.Errorf("%w: model is empty", ErrUnavailable)
	}

	callCtx, cancel := ctx, context.CancelFunc(func() {})
	if g.timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, g.timeout)
	}
	defer cancel()

	start := time.Now()
	done := make(chan completion, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- completion{err: fmt.Errorf("provider panic: %v", rec)}
			}
		}()
		text, err := g.provider.Generate(callCtx, model, prompt)
		done <- completion{text: text, err: err}
	}()

	var res completion
	select {
	case res = <-done:
	case <-callCtx.Done():
		res = completion{err: callCtx.Err()}
	}

	fields := map[string]any{
		"provider":    g.provider.Name(),
		"model":       model,
		"prompt_len":  len(prompt),
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if res.err != nil {
		err := g.classify(callCtx, res.err)
		fields["err"] = err
		telemetry.Warn("llm.complete_failed", fields)
		return "", err
	}
	if strings.TrimSpace(res.text) == "" {
		telemetry.Warn("llm.complete_empty", fields)
		return "", fmt.Errorf("%w: empty response", ErrRequestFailed)
	}
	fields["response_len"] = len(res.text)
	telemetry.Info("llm.complete", fields)
	return res.text, nil
}

// Close releases the provider's connections.
func (g *Gateway) Close() error {
	if !g.Ready() {
		return nil
	}
	return g.provider.Close()
}

// classify maps a provider error onto the gateway sentinels. The provider's own
// error is flattened to scrubbed text so credentials cannot escape via wrapping.
func (g *Gateway) classify(callCtx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: no response within %s", ErrTimeout, g.timeout)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: request canceled", ErrRequestFailed)
	}
	return fmt.Errorf("%w: %s", ErrRequestFailed, g.redactor.scrub(err.Error()))
}
