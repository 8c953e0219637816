package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"LLM_PROVIDER", "LLM_MODEL", "GEMINI_MODEL", "MAX_FILE_SIZE", "GATEWAY_TIMEOUT", "PROMPT_MAX_CHARS", "EXTRACTORS"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.LLMProvider != ProviderGemini {
		t.Fatalf("expected gemini provider, got %q", cfg.LLMProvider)
	}
	if cfg.LLMModel != "models/gemini-2.5-flash" {
		t.Fatalf("unexpected default model %q", cfg.LLMModel)
	}
	if cfg.PromptMaxChars != 100000 || cfg.StoredTextMaxChars != 1000000 {
		t.Fatalf("unexpected text ceilings %d/%d", cfg.PromptMaxChars, cfg.StoredTextMaxChars)
	}
	if cfg.MaxUploadBytes != 52428800 {
		t.Fatalf("unexpected max upload %d", cfg.MaxUploadBytes)
	}
	if cfg.GatewayTimeout != 120*time.Second {
		t.Fatalf("unexpected gateway timeout %s", cfg.GatewayTimeout)
	}
	if !cfg.ExtractorEnabled("structural") || !cfg.ExtractorEnabled("HEURISTIC") {
		t.Fatalf("expected both extractors enabled, got %v", cfg.Extractors)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("LLM_MODEL", "")
	t.Setenv("MAX_FILE_SIZE", "10MiB")
	t.Setenv("GATEWAY_TIMEOUT", "45")
	t.Setenv("EXTRACTORS", "heuristic")
	t.Setenv("PROMPT_MAX_CHARS", "not-a-number")

	cfg := Load()

	if cfg.LLMProvider != ProviderOpenAI || cfg.LLMModel != "gpt-4o-mini" {
		t.Fatalf("unexpected provider/model %q/%q", cfg.LLMProvider, cfg.LLMModel)
	}
	if cfg.MaxUploadBytes != 10*1024*1024 {
		t.Fatalf("expected 10MiB, got %d", cfg.MaxUploadBytes)
	}
	if cfg.GatewayTimeout != 45*time.Second {
		t.Fatalf("expected 45s, got %s", cfg.GatewayTimeout)
	}
	if cfg.ExtractorEnabled("structural") {
		t.Fatalf("structural should be disabled")
	}
	if cfg.PromptMaxChars != 100000 {
		t.Fatalf("invalid int should fall back to default, got %d", cfg.PromptMaxChars)
	}
}

func TestGeminiModelAlias(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("LLM_MODEL", "")
	t.Setenv("GEMINI_MODEL", "models/gemini-1.5-pro")
	t.Setenv("JWT_SECRET", "from-env")

	cfg := Load()
	if cfg.LLMModel != "models/gemini-1.5-pro" {
		t.Fatalf("expected GEMINI_MODEL to select the model, got %q", cfg.LLMModel)
	}
	if cfg.JWTSecret != "from-env" {
		t.Fatalf("unexpected JWT secret %q", cfg.JWTSecret)
	}

	t.Setenv("LLM_MODEL", "models/gemini-2.0-flash")
	if got := ResolveModel(ProviderGemini); got != "models/gemini-2.0-flash" {
		t.Fatalf("LLM_MODEL should win, got %q", got)
	}

	t.Setenv("LLM_MODEL", "")
	if got := ResolveModel(ProviderOpenAI); got != defaultOpenAIModel {
		t.Fatalf("GEMINI_MODEL must not apply to openai, got %q", got)
	}
}

func TestLoadEnvFileDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("HISTORY_LIMIT=7\nPORT=9999\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("PORT", "8181")
	t.Setenv("HISTORY_LIMIT", "")
	os.Unsetenv("HISTORY_LIMIT")
	t.Cleanup(func() { os.Unsetenv("HISTORY_LIMIT") })

	cfg := Load()

	if cfg.Port != "8181" {
		t.Fatalf("environment should win over .env, got %s", cfg.Port)
	}
	if cfg.HistoryLimit != 7 {
		t.Fatalf("expected HISTORY_LIMIT from .env, got %d", cfg.HistoryLimit)
	}
}
