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

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"docinsight-backend/internal/classify"
	"docinsight-backend/internal/extract"
	"docinsight-backend/internal/ingest"
	"docinsight-backend/internal/llm"
	"docinsight-backend/internal/llm/provider"
	"docinsight-backend/internal/shared/config"
	"docinsight-backend/internal/shared/telemetry"
)

const localOwner = "local"

// output is the printed shape; it mirrors the API document plus the method used.
type output struct {
	ID             string    `json:"id" yaml:"id"`
	Title          string    `json:"title" yaml:"title"`
	Summary        string    `json:"summary" yaml:"summary"`
	Category       string    `json:"category" yaml:"category"`
	Department     string    `json:"department" yaml:"department"`
	UploadDate     time.Time `json:"uploadDate" yaml:"uploadDate"`
	Type           string    `json:"type" yaml:"type"`
	OriginalURL    string    `json:"originalUrl,omitempty" yaml:"originalUrl,omitempty"`
	Content        string    `json:"content" yaml:"content"`
	AnalysisMethod string    `json:"analysisMethod" yaml:"analysisMethod"`
	Truncated      bool      `json:"truncated" yaml:"truncated"`
}

func toOutput(p ingest.Processed) output {
	d := p.Document
	return output{
		ID:             d.ID,
		Title:          d.Title,
		Summary:        d.Summary,
		Category:       d.Category,
		Department:     d.Department,
		UploadDate:     d.UploadDate,
		Type:           d.Type,
		OriginalURL:    d.OriginalURL,
		Content:        d.Content,
		AnalysisMethod: p.Method,
		Truncated:      p.Truncated,
	}
}

type runtime struct {
	pipeline   *ingest.Pipeline
	classifier *classify.Classifier
	client     llm.Client
	log        *zap.Logger
}

func (r *runtime) close() {
	if closer, ok := r.client.(io.Closer); ok {
		_ = closer.Close()
	}
	_ = r.log.Sync()
}

func newRuntime(c *cli.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := zap.NewNop()
	if c.Bool("verbose") {
		logger, err = telemetry.New(telemetry.Options{Env: "dev", Level: "debug"})
		if err != nil {
			return nil, err
		}
	}

	client := llm.Client(llm.PlaceholderClient{})
	if !c.Bool("no-ai") {
		client, err = provider.Build(c.Context, provider.Settings{
			Provider:     cfg.LLMProvider,
			Model:        cfg.LLMModel,
			BaseURL:      cfg.LLMBaseURL,
			GroqAPIKey:   cfg.GroqAPIKey,
			OpenAIAPIKey: cfg.OpenAIAPIKey,
			GeminiAPIKey: cfg.GeminiAPIKey,
			Timeout:      cfg.LLMTimeout(),
		}, logger)
		if err != nil {
			return nil, err
		}
	}

	classifier := classify.New(client, cfg.ClassifyTimeout, logger)
	return &runtime{
		pipeline:   ingest.NewPipeline(extract.NewFetcher(cfg.FetchTimeout), classifier, logger),
		classifier: classifier,
		client:     client,
		log:        logger,
	}, nil
}

func withTimeout(c *cli.Context) (context.Context, context.CancelFunc) {
	if d := c.Duration("timeout"); d > 0 {
		return context.WithTimeout(c.Context, d)
	}
	return context.WithCancel(c.Context)
}

func singleArg(c *cli.Context, what string) (string, error) {
	if c.NArg() != 1 {
		return "", cli.Exit(fmt.Sprintf("expected exactly one %s argument", what), 2)
	}
	return strings.TrimSpace(c.Args().First()), nil
}

func pdfAction(c *cli.Context) error {
	path, err := singleArg(c, "file")
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return runPipeline(c, func(ctx context.Context, p *ingest.Pipeline) (ingest.Processed, error) {
		return p.FromPDF(ctx, localOwner, data, filepath.Base(path))
	})
}

func urlAction(c *cli.Context) error {
	raw, err := singleArg(c, "url")
	if err != nil {
		return err
	}
	return runPipeline(c, func(ctx context.Context, p *ingest.Pipeline) (ingest.Processed, error) {
		return p.FromURL(ctx, localOwner, raw)
	})
}

func youtubeAction(c *cli.Context) error {
	raw, err := singleArg(c, "url")
	if err != nil {
		return err
	}
	return runPipeline(c, func(ctx context.Context, p *ingest.Pipeline) (ingest.Processed, error) {
		return p.FromYouTube(ctx, localOwner, raw)
	})
}

func statusAction(c *cli.Context) error {
	rt, err := newRuntime(c)
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, cancel := withTimeout(c)
	defer cancel()
	return write(c.App.Writer, c.String("format"), rt.classifier.Status(ctx))
}

func runPipeline(c *cli.Context, run func(context.Context, *ingest.Pipeline) (ingest.Processed, error)) error {
	rt, err := newRuntime(c)
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, cancel := withTimeout(c)
	defer cancel()
	processed, err := run(ctx, rt.pipeline)
	if err != nil {
		return describe(err)
	}
	return write(c.App.Writer, c.String("format"), toOutput(processed))
}

// describe turns pipeline errors into a one-line message with any suggestion.
func describe(err error) error {
	var extractErr *extract.Error
	switch {
	case errors.As(err, &extractErr):
		message := extractErr.Message
		if extractErr.Suggestion != "" {
			message += " (" + extractErr.Suggestion + ")"
		}
		return cli.Exit(message, 1)
	case ingest.FailureReason(err) == "insufficient_text":
		return cli.Exit("insufficient text content found", 1)
	default:
		return cli.Exit(err.Error(), 1)
	}
}

func write(w io.Writer, format string, v any) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return cli.Exit(fmt.Sprintf("unsupported format %q (want json or yaml)", format), 2)
	}
}
