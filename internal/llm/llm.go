package llm

import (
	"context"
	"errors"
)

// Client abstracts chat-completion providers used for document classification.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
	Info() Info
}

// Request is a single-turn completion request.
type Request struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
	// JSON asks the provider to constrain output to a JSON object.
	JSON bool
}

// Info identifies the provider behind a Client.
type Info struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("llm provider not configured")

// PlaceholderClient is used when no provider or API key is configured.
type PlaceholderClient struct{}

// Complete returns ErrNotConfigured.
func (PlaceholderClient) Complete(ctx context.Context, req Request) (string, error) {
	_ = ctx
	_ = req
	return "", ErrNotConfigured
}

// Info reports provider "none".
func (PlaceholderClient) Info() Info {
	return Info{Provider: "none"}
}

// IsConfigured reports whether c talks to a real provider.
func IsConfigured(c Client) bool {
	if c == nil {
		return false
	}
	_, placeholder := c.(PlaceholderClient)
	return !placeholder
}
