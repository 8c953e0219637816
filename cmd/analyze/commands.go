package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"doc-analyzer/internal/bootstrap"
	"doc-analyzer/internal/documents"
	"doc-analyzer/internal/pipeline"
	"doc-analyzer/internal/shared/auth"
	"doc-analyzer/internal/shared/config"
	"doc-analyzer/internal/shared/telemetry"
)

const cliOwner = "cli"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "analyze <file.pdf>",
		Short:        "Extract and analyze a PDF with the configured AI provider",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level, _ := cmd.Flags().GetString("log-level")
			telemetry.Configure(level)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			structured, _ := cmd.Flags().GetBool("structured")
			model, _ := cmd.Flags().GetString("model")
			provider, _ := cmd.Flags().GetString("provider")
			return runAnalyze(cmd.Context(), cmd.OutOrStdout(), args[0], structured, provider, model)
		},
	}
	root.PersistentFlags().String("log-level", "warn", "log level (debug|info|warn|error)")
	root.Flags().Bool("structured", false, "ask the model for a JSON analysis")
	root.Flags().String("model", "", "model identifier (default depends on provider)")
	root.Flags().String("provider", "", "AI provider: gemini or openai (default LLM_PROVIDER)")

	root.AddCommand(newExtractCmd(), newTokenCmd())
	return root
}

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <file.pdf>",
		Short: "Print the extracted text and the strategy that produced it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}
}

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token <subject>",
		Short: "Print a bearer token for the API signed with JWT_SECRET",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			ttl, _ := cmd.Flags().GetDuration("ttl")
			return runToken(cmd.OutOrStdout(), config.Load(), args[0], email, ttl)
		},
	}
	cmd.Flags().String("email", "", "email claim")
	cmd.Flags().Duration("ttl", 24*time.Hour, "token lifetime")
	return cmd
}

func runToken(out io.Writer, cfg config.Config, subject, email string, ttl time.Duration) error {
	signer, err := auth.NewSigner(cfg.JWTSecret, cfg.Env)
	if err != nil {
		return err
	}
	claims := auth.Claims{Email: email, RegisteredClaims: jwt.RegisteredClaims{Subject: subject}}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(ttl))
	}
	token, err := signer.Sign(claims)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}

func runExtract(ctx context.Context, out io.Writer, path string) error {
	data, err := readPDF(path)
	if err != nil {
		return err
	}
	cfg := config.Load()
	res, err := bootstrap.BuildExtractors(cfg).Extract(ctx, data)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "strategy: %s (fallback: %t)\n\n%s", res.Strategy, res.Fallback, res.Text)
	if !strings.HasSuffix(res.Text, "\n") {
		fmt.Fprintln(out)
	}
	return nil
}

func runAnalyze(ctx context.Context, out io.Writer, path string, structured bool, provider, model string) error {
	data, err := readPDF(path)
	if err != nil {
		return err
	}

	cfg := config.Load()
	if provider != "" {
		cfg.LLMProvider = strings.ToLower(strings.TrimSpace(provider))
		if cfg.LLMProvider != config.ProviderGemini && cfg.LLMProvider != config.ProviderOpenAI {
			return fmt.Errorf("unknown provider %q", provider)
		}
		cfg.LLMModel = config.ResolveModel(cfg.LLMProvider)
	}
	if model != "" {
		cfg.LLMModel = model
	}

	gateway, err := bootstrap.BuildGateway(ctx, cfg)
	if err != nil {
		return err
	}
	defer gateway.Close()

	p := &pipeline.Pipeline{
		Extractors:         bootstrap.BuildExtractors(cfg),
		Gateway:            gateway,
		Repo:               documents.NewMemoryRepo(),
		Model:              cfg.LLMModel,
		PromptMaxChars:     cfg.PromptMaxChars,
		StoredTextMaxChars: cfg.StoredTextMaxChars,
	}
	name := filepath.Base(path)
	doc, err := p.Submit(ctx, pipeline.Upload{
		Data:         data,
		MediaType:    "application/pdf",
		FileName:     name,
		OriginalName: name,
		Size:         int64(len(data)),
		OwnerID:      cliOwner,
		Structured:   structured,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", pipeline.Code(err), err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"document": documents.ToResponse(doc)})
}

func readPDF(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("file is empty")
	}
	return data, nil
}
