package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"doc-analyzer/internal/llm"
)

func TestIsGPT5(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  bool
	}{
		{name: "gpt5", model: "gpt-5", want: true},
		{name: "gpt5 variant", model: "gpt-5-mini", want: true},
		{name: "gpt5 uppercase", model: " GPT-5o ", want: true},
		{name: "gpt4", model: "gpt-4o-mini", want: false},
		{name: "empty", model: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isGPT5(tt.model); got != tt.want {
				t.Fatalf("isGPT5(%q) = %v, want %v", tt.model, got, tt.want)
			}
		})
	}
}

type recordingServer struct {
	mu       sync.Mutex
	lastBody map[string]any
	lastAuth string
}

func (r *recordingServer) handler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		defer req.Body.Close()
		var payload map[string]any
		_ = json.NewDecoder(req.Body).Decode(&payload)
		r.mu.Lock()
		r.lastBody = payload
		r.lastAuth = req.Header.Get("Authorization")
		r.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestGenerateSendsChatCompletion(t *testing.T) {
	rec := &recordingServer{}
	server := httptest.NewServer(rec.handler(http.StatusOK,
		`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"analysis text"},"finish_reason":"stop"}]}`))
	defer server.Close()

	client, err := NewClient("test-key", server.URL+"/v1/")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	out, err := client.Generate(context.Background(), "gpt-4o-mini", "the prompt")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "analysis text" {
		t.Fatalf("unexpected output %q", out)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.lastAuth != "Bearer test-key" {
		t.Fatalf("unexpected auth header %q", rec.lastAuth)
	}
	if rec.lastBody["model"] != "gpt-4o-mini" {
		t.Fatalf("unexpected model %v", rec.lastBody["model"])
	}
	if temp, _ := rec.lastBody["temperature"].(float64); temp < 0.19 || temp > 0.21 {
		t.Fatalf("expected temperature 0.2, got %v", rec.lastBody["temperature"])
	}
	if rec.lastBody["max_tokens"] != float64(1200) {
		t.Fatalf("expected max_tokens 1200, got %v", rec.lastBody["max_tokens"])
	}
	msgs, _ := rec.lastBody["messages"].([]any)
	if len(msgs) != 1 {
		t.Fatalf("expected one message, got %v", rec.lastBody["messages"])
	}
}

func TestGenerateOmitsTemperatureForGPT5(t *testing.T) {
	rec := &recordingServer{}
	server := httptest.NewServer(rec.handler(http.StatusOK,
		`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	defer server.Close()

	client, err := NewClient("test-key", server.URL+"/v1")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.Generate(context.Background(), "gpt-5-mini", "p"); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if _, ok := rec.lastBody["temperature"]; ok {
		t.Fatalf("temperature must be omitted for gpt-5 models")
	}
	if _, ok := rec.lastBody["max_tokens"]; ok {
		t.Fatalf("max_tokens must be omitted for gpt-5 models")
	}
}

func TestGatewayMapsQuotaErrorWithoutLeakingKey(t *testing.T) {
	rec := &recordingServer{}
	server := httptest.NewServer(rec.handler(http.StatusTooManyRequests,
		`{"error":{"message":"You exceeded your current quota","type":"insufficient_quota","code":"insufficient_quota"}}`))
	defer server.Close()

	key := "sk-test-secret-key"
	client, err := NewClient(key, server.URL+"/v1")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	gateway := llm.NewGateway(client, 5*time.Second, key)

	_, err = gateway.Complete(context.Background(), "gpt-4o-mini", "p")
	if !errors.Is(err, llm.ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got %v", err)
	}
	if strings.Contains(err.Error(), key) {
		t.Fatalf("key leaked: %v", err)
	}
}

func TestGatewayMapsSlowServerToTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client, err := NewClient("k-123456", server.URL+"/v1")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	gateway := llm.NewGateway(client, 50*time.Millisecond)

	if _, err := gateway.Complete(context.Background(), "gpt-4o-mini", "p"); !errors.Is(err, llm.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient("", ""); err == nil {
		t.Fatalf("expected error")
	}
}
