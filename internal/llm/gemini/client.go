package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"docinsight-backend/internal/llm"
)

const DefaultModel = "gemini-1.5-flash"

// Client implements llm.Client on top of the Gemini API.
type Client struct {
	client    *genai.Client
	modelName string
	log       *zap.Logger
}

// NewClient dials Gemini with an API key.
func NewClient(ctx context.Context, apiKey, modelName string, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	if strings.TrimSpace(modelName) == "" {
		modelName = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{client: cl, modelName: modelName, log: logger}, nil
}

// Close releases the underlying connection.
func (g *Client) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// Info reports the provider and model.
func (g *Client) Info() llm.Info {
	return llm.Info{Provider: "gemini", Model: g.modelName}
}

// Complete runs a single GenerateContent call and concatenates text parts.
func (g *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	m := g.client.GenerativeModel(g.modelName)
	if req.System != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.System)},
		}
	}
	m.SetTemperature(req.Temperature)
	if req.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if req.JSON {
		m.ResponseMIMEType = "application/json"
	}

	resp, err := m.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini response missing candidates")
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", fmt.Errorf("gemini response empty content")
	}
	if resp.UsageMetadata != nil {
		g.log.Debug("llm response",
			zap.String("provider", "gemini"),
			zap.String("model", g.modelName),
			zap.Int32("prompt_tokens", resp.UsageMetadata.PromptTokenCount),
			zap.Int32("total_tokens", resp.UsageMetadata.TotalTokenCount),
		)
	}
	return out, nil
}

var _ llm.Client = (*Client)(nil)
