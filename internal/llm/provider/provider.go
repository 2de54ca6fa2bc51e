// Package provider selects an llm.Client from configuration.
package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"docinsight-backend/internal/llm"
	"docinsight-backend/internal/llm/gemini"
	openai "docinsight-backend/internal/llm/openai"
)

const DefaultGroqModel = "llama3-8b-8192"

// Settings is the provider-related slice of the app configuration.
type Settings struct {
	Provider     string
	Model        string
	BaseURL      string
	GroqAPIKey   string
	OpenAIAPIKey string
	GeminiAPIKey string
	Timeout      time.Duration
}

// Build returns the configured client. A provider without an API key
// degrades to llm.PlaceholderClient so classification uses its keyword
// fallback instead of failing startup.
func Build(ctx context.Context, s Settings, logger *zap.Logger) (llm.Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	name := strings.ToLower(strings.TrimSpace(s.Provider))
	switch name {
	case "", "none":
		return llm.PlaceholderClient{}, nil
	case "groq":
		if usableKey(s.GroqAPIKey) == "" {
			logger.Warn("GROQ_API_KEY not set; using keyword classification")
			return llm.PlaceholderClient{}, nil
		}
		model := s.Model
		if strings.TrimSpace(model) == "" {
			model = DefaultGroqModel
		}
		base := s.BaseURL
		if strings.TrimSpace(base) == "" {
			base = openai.GroqBaseURL
		}
		return openai.NewClient(openai.Options{
			Provider: "groq",
			APIKey:   s.GroqAPIKey,
			Model:    model,
			BaseURL:  base,
			Timeout:  s.Timeout,
			Logger:   logger,
		})
	case "openai":
		if usableKey(s.OpenAIAPIKey) == "" {
			logger.Warn("OPENAI_API_KEY not set; using keyword classification")
			return llm.PlaceholderClient{}, nil
		}
		return openai.NewClient(openai.Options{
			Provider: "openai",
			APIKey:   s.OpenAIAPIKey,
			Model:    s.Model,
			BaseURL:  s.BaseURL,
			Timeout:  s.Timeout,
			Logger:   logger,
		})
	case "gemini":
		if usableKey(s.GeminiAPIKey) == "" {
			logger.Warn("GEMINI_API_KEY not set; using keyword classification")
			return llm.PlaceholderClient{}, nil
		}
		return gemini.NewClient(ctx, s.GeminiAPIKey, s.Model, logger)
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", s.Provider)
	}
}

// usableKey treats the sample .env placeholder as unset.
func usableKey(key string) string {
	key = strings.TrimSpace(key)
	if strings.HasPrefix(key, "your_") && strings.HasSuffix(key, "_here") {
		return ""
	}
	return key
}
