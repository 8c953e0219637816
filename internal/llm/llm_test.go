package llm

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type stubProvider struct {
	text   string
	err    error
	delay  time.Duration
	calls  atomic.Int32
	model  atomic.Value
	closed atomic.Bool
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Generate(ctx context.Context, model, prompt string) (string, error) {
	s.calls.Add(1)
	s.model.Store(model)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.text, s.err
}

func (s *stubProvider) Close() error {
	s.closed.Store(true)
	return nil
}

func TestGatewayNotConfigured(t *testing.T) {
	var nilGateway *Gateway
	if nilGateway.Ready() {
		t.Fatalf("nil gateway must not be ready")
	}
	if _, err := nilGateway.Complete(context.Background(), "m", "p"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if _, err := NewGateway(nil, time.Second).Complete(context.Background(), "m", "p"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable for nil provider, got %v", err)
	}
	if _, err := NewGateway(&stubProvider{text: "x"}, time.Second).Complete(context.Background(), " ", "p"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable for empty model, got %v", err)
	}
}

func TestGatewayCompleteUsesGivenModel(t *testing.T) {
	p := &stubProvider{text: "answer"}
	g := NewGateway(p, time.Second)

	out, err := g.Complete(context.Background(), "models/custom", "prompt")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != "answer" {
		t.Fatalf("unexpected output %q", out)
	}
	if got := p.model.Load(); got != "models/custom" {
		t.Fatalf("provider received model %v", got)
	}
	if p.calls.Load() != 1 {
		t.Fatalf("expected exactly one call, got %d", p.calls.Load())
	}
}

func TestGatewayTimeout(t *testing.T) {
	p := &stubProvider{text: "late", delay: time.Second}
	g := NewGateway(p, 20*time.Millisecond)

	start := time.Now()
	_, err := g.Complete(context.Background(), "m", "prompt")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("timeout not enforced, took %s", elapsed)
	}
}

func TestGatewayTimeoutWhenProviderIgnoresContext(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	g := NewGateway(blockingProvider{block: block}, 20*time.Millisecond)

	if _, err := g.Complete(context.Background(), "m", "prompt"); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

type blockingProvider struct{ block chan struct{} }

func (blockingProvider) Name() string { return "blocking" }
func (b blockingProvider) Generate(ctx context.Context, model, prompt string) (string, error) {
	<-b.block
	return "too late", nil
}
func (blockingProvider) Close() error { return nil }

func TestGatewayRequestFailedRedactsSecrets(t *testing.T) {
	secret := "AIzaSyTESTSECRET123"
	p := &stubProvider{err: errors.New("googleapi: Error 429: quota exceeded for key " + secret + " url=https://x/v1?key=" + secret + "&alt=json")}
	g := NewGateway(p, time.Second, secret)

	_, err := g.Complete(context.Background(), "m", "prompt")
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got %v", err)
	}
	if strings.Contains(err.Error(), secret) {
		t.Fatalf("secret leaked: %v", err)
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected provider detail kept, got %v", err)
	}
	if errors.Unwrap(err) != ErrRequestFailed {
		t.Fatalf("provider error must not be reachable by unwrapping")
	}
}

func TestGatewayEmptyResponseFails(t *testing.T) {
	g := NewGateway(&stubProvider{text: "  \n"}, time.Second)
	if _, err := g.Complete(context.Background(), "m", "prompt"); !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got %v", err)
	}
}

func TestGatewayCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := NewGateway(&stubProvider{text: "x", delay: time.Second}, time.Minute)

	_, err := g.Complete(ctx, "m", "prompt")
	if !errors.Is(err, ErrRequestFailed) || errors.Is(err, ErrTimeout) {
		t.Fatalf("expected canceled request failure, got %v", err)
	}
}

func TestGatewayConcurrentUse(t *testing.T) {
	p := &stubProvider{text: "ok"}
	g := NewGateway(p, time.Second)

	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		go func() {
			_, err := g.Complete(context.Background(), "m", "prompt")
			errs <- err
		}()
	}
	for i := 0; i < 16; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("complete: %v", err)
		}
	}
	if p.calls.Load() != 16 {
		t.Fatalf("expected 16 calls, got %d", p.calls.Load())
	}
}

func TestGatewayClose(t *testing.T) {
	p := &stubProvider{}
	if err := NewGateway(p, time.Second).Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !p.closed.Load() {
		t.Fatalf("provider not closed")
	}
	var nilGateway *Gateway
	if err := nilGateway.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
}

func TestScrub(t *testing.T) {
	r := newRedactor("sk-live-abcdef")
	got := r.scrub(`POST https://api?api_key=zzz failed: Authorization: Bearer sk-live-abcdef token=abc`)
	for _, leak := range []string{"zzz", "sk-live-abcdef", "token=abc"} {
		if strings.Contains(got, leak) {
			t.Fatalf("leaked %q in %q", leak, got)
		}
	}
}
