package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"docinsight-backend/internal/llm"
)

const (
	OpenAIBaseURL = "https://api.openai.com/v1"
	GroqBaseURL   = "https://api.groq.com/openai/v1"

	defaultTimeout = 30 * time.Second
)

// Options configures a Client. Any OpenAI-compatible chat completions API
// works; Groq is the same wire format under a different base URL.
type Options struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
	Logger   *zap.Logger
}

// Client implements llm.Client using the Chat Completions API.
type Client struct {
	provider   string
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient constructs a new chat completions client.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for %s", providerName(opts.Provider))
	}
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("API key is required for %s", providerName(opts.Provider))
	}
	base := strings.TrimSpace(opts.BaseURL)
	if base == "" {
		base = OpenAIBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		provider:   providerName(opts.Provider),
		apiKey:     opts.APIKey,
		model:      opts.Model,
		endpoint:   strings.TrimRight(base, "/") + "/chat/completions",
		httpClient: &http.Client{Timeout: timeout},
		log:        logger,
	}, nil
}

func providerName(p string) string {
	if p = strings.TrimSpace(p); p != "" {
		return p
	}
	return "openai"
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    *float32        `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *chatUsage `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Info reports the provider and model.
func (c *Client) Info() llm.Info {
	return llm.Info{Provider: c.provider, Model: c.model}
}

// Complete sends one request. When the model rejects the temperature
// parameter the request is retried once without it.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	body := c.buildRequest(req)
	content, usage, err := c.send(ctx, body)
	if err != nil && body.Temperature != nil && isTemperatureUnsupported(err) {
		body.Temperature = nil
		content, usage, err = c.send(ctx, body)
	}
	if err != nil {
		return "", err
	}
	c.logUsage(usage)
	return content, nil
}

func (c *Client) buildRequest(req llm.Request) chatRequest {
	messages := make([]chatMessage, 0, 2)
	if strings.TrimSpace(req.System) != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	temp := req.Temperature
	body := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: &temp,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSON {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	return body
}

// apiError is an error reported in the response body by the provider.
type apiError struct {
	Status  int
	Message string
	Type    string
}

func (e *apiError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("llm api error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("llm api error (status %d): %s (%s)", e.Status, e.Message, e.Type)
}

func isTemperatureUnsupported(err error) bool {
	var ae *apiError
	if !errors.As(err, &ae) {
		return false
	}
	msg := strings.ToLower(ae.Message)
	return strings.Contains(msg, "temperature") && strings.Contains(msg, "unsupported")
}

func (c *Client) send(ctx context.Context, body chatRequest) (string, *chatUsage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", nil, fmt.Errorf("%s request timeout: %w", c.provider, err)
		}
		return "", nil, fmt.Errorf("%s request: %w", c.provider, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", nil, err
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		if resp.StatusCode >= 400 {
			return "", nil, &apiError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		}
		return "", nil, fmt.Errorf("%s response parse: %w", c.provider, err)
	}
	if parsed.Error != nil {
		return "", nil, &apiError{Status: resp.StatusCode, Message: parsed.Error.Message, Type: parsed.Error.Type}
	}
	if resp.StatusCode >= 400 {
		return "", nil, &apiError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	if len(parsed.Choices) == 0 {
		return "", nil, fmt.Errorf("%s response missing choices", c.provider)
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", nil, fmt.Errorf("%s response empty content", c.provider)
	}
	return content, parsed.Usage, nil
}

func (c *Client) logUsage(usage *chatUsage) {
	fields := []zap.Field{zap.String("provider", c.provider), zap.String("model", c.model)}
	if usage != nil {
		fields = append(fields,
			zap.Int("prompt_tokens", usage.PromptTokens),
			zap.Int("completion_tokens", usage.CompletionTokens),
			zap.Int("total_tokens", usage.TotalTokens),
		)
	}
	c.log.Debug("llm response", fields...)
}

var _ llm.Client = (*Client)(nil)
