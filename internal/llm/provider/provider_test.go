package provider

import (
	"context"
	"testing"

	"docinsight-backend/internal/llm"
)

func TestBuildDegradesWithoutKey(t *testing.T) {
	tests := []struct {
		name string
		s    Settings
	}{
		{name: "none", s: Settings{Provider: "none"}},
		{name: "empty", s: Settings{}},
		{name: "groq no key", s: Settings{Provider: "groq"}},
		{name: "groq sample key", s: Settings{Provider: "GROQ", GroqAPIKey: "your_groq_api_key_here"}},
		{name: "openai no key", s: Settings{Provider: "openai", Model: "gpt-4o-mini"}},
		{name: "gemini no key", s: Settings{Provider: "gemini"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			client, err := Build(context.Background(), tt.s, nil)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if llm.IsConfigured(client) {
				t.Fatalf("expected placeholder client, got %T", client)
			}
		})
	}
}

func TestBuildGroqDefaults(t *testing.T) {
	client, err := Build(context.Background(), Settings{Provider: "groq", GroqAPIKey: "gsk_test"}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	info := client.Info()
	if info.Provider != "groq" || info.Model != DefaultGroqModel {
		t.Fatalf("unexpected info %+v", info)
	}
}

func TestBuildUnknownProvider(t *testing.T) {
	if _, err := Build(context.Background(), Settings{Provider: "anthropic-ish"}, nil); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestBuildOpenAIRequiresModel(t *testing.T) {
	if _, err := Build(context.Background(), Settings{Provider: "openai", OpenAIAPIKey: "sk-test"}, nil); err == nil {
		t.Fatalf("expected error when LLM_MODEL is missing")
	}
}
