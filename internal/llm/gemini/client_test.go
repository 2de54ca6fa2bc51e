package gemini

import (
	"context"
	"testing"

	"docinsight-backend/internal/llm"
)

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(context.Background(), "  ", "", nil); err == nil {
		t.Fatalf("expected error without an api key")
	}
}

func TestNewClientDefaults(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  string
	}{
		{name: "default model", model: "", want: DefaultModel},
		{name: "blank model", model: "   ", want: DefaultModel},
		{name: "explicit model", model: "gemini-1.5-pro", want: "gemini-1.5-pro"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(context.Background(), "test-key", tt.model, nil)
			if err != nil {
				t.Fatalf("NewClient: %v", err)
			}
			defer client.Close()

			if client.log == nil {
				t.Fatalf("expected a nop logger when none is given")
			}
			if got := client.Info(); got != (llm.Info{Provider: "gemini", Model: tt.want}) {
				t.Fatalf("Info() = %+v, want model %q", got, tt.want)
			}
		})
	}
}

func TestCompleteHonorsCanceledContext(t *testing.T) {
	client, err := NewClient(context.Background(), "test-key", "", nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.Complete(ctx, llm.Request{Prompt: "hello"}); err == nil {
		t.Fatalf("expected error for canceled context")
	}
}
