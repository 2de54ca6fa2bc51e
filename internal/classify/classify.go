package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"docinsight-backend/internal/llm"
)

const (
	MethodAI       = "ai"
	MethodFallback = "fallback"

	DefaultTimeout = 30 * time.Second

	temperature = 0.3
	maxTokens   = 500
)

// Input is the text to classify. Text is the normalized, bounded text; Raw is
// the pre-normalization text used only to detect visual references.
type Input struct {
	Title string
	Text  string
	Raw   string
}

// Result is a summary plus labels from the closed vocabularies.
type Result struct {
	Summary    string `json:"summary"`
	Category   string `json:"category"`
	Department string `json:"department"`
	Method     string `json:"method"`
}

// Classifier summarizes and labels documents with an LLM, falling back to
// keyword heuristics on any failure.
type Classifier struct {
	LLM     llm.Client
	Timeout time.Duration
	Log     *zap.Logger
}

// New constructs a Classifier. A nil client means fallback only.
func New(client llm.Client, timeout time.Duration, logger *zap.Logger) *Classifier {
	if client == nil {
		client = llm.PlaceholderClient{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{LLM: client, Timeout: timeout, Log: logger}
}

// Classify never fails; every AI problem is absorbed by Fallback.
func (c *Classifier) Classify(ctx context.Context, in Input) Result {
	if !llm.IsConfigured(c.LLM) {
		return Fallback(in)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	raw, err := c.LLM.Complete(callCtx, llm.Request{
		Prompt:      buildPrompt(in.Title, in.Text),
		Temperature: temperature,
		MaxTokens:   maxTokens,
		JSON:        true,
	})
	if err != nil {
		c.Log.Warn("classification request failed; using fallback", zap.Error(err))
		return Fallback(in)
	}

	parsed, err := parseResponse(raw)
	if err != nil {
		c.Log.Warn("classification response unusable; using fallback", zap.Error(err))
		return Fallback(in)
	}

	heurCategory, heurDepartment := Heuristic(in.Text, in.Title)
	return Result{
		Summary:    parsed.Summary,
		Category:   clamp(Categories, parsed.Category, heurCategory),
		Department: clamp(Departments, parsed.Department, heurDepartment),
		Method:     MethodAI,
	}
}

func buildPrompt(title, text string) string {
	var b strings.Builder
	b.WriteString("Analyze the following document text content and provide:\n")
	b.WriteString("1. A concise summary (2-3 sentences) focusing ONLY on the readable text content\n")
	b.WriteString("2. A category from: " + strings.Join(Categories, ", ") + "\n")
	b.WriteString("3. A department from: " + strings.Join(Departments, ", ") + "\n\n")
	b.WriteString("Instructions:\n")
	b.WriteString("- Base the analysis solely on the readable text information.\n")
	b.WriteString("- Ignore image artifacts and other non-text elements; do not describe what images might show.\n")
	b.WriteString("- If the text mentions images or figures, acknowledge them briefly but summarize the text.\n")
	b.WriteString("- Use exactly one category and one department from the lists above.\n\n")
	b.WriteString("Document Title: " + title + "\n")
	b.WriteString("Document Text Content: " + text + "\n\n")
	b.WriteString("Respond with a JSON object only:\n")
	b.WriteString(`{"summary": "...", "category": "...", "department": "..."}`)
	return b.String()
}

var errMalformed = errors.New("malformed classification response")

// parseResponse takes the outermost {...} span and requires all three keys.
func parseResponse(raw string) (Result, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return Result{}, fmt.Errorf("%w: no JSON object", errMalformed)
	}
	var out struct {
		Summary    string `json:"summary"`
		Category   string `json:"category"`
		Department string `json:"department"`
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &out); err != nil {
		return Result{}, fmt.Errorf("%w: %v", errMalformed, err)
	}
	out.Summary = strings.TrimSpace(out.Summary)
	if out.Summary == "" || strings.TrimSpace(out.Category) == "" || strings.TrimSpace(out.Department) == "" {
		return Result{}, fmt.Errorf("%w: missing field", errMalformed)
	}
	return Result{Summary: out.Summary, Category: out.Category, Department: out.Department}, nil
}

// Status describes the configured provider and the outcome of a live probe.
type Status struct {
	Provider   string `json:"provider"`
	Model      string `json:"model,omitempty"`
	Configured bool   `json:"configured"`
	Valid      bool   `json:"valid"`
	Message    string `json:"message"`
	Response   string `json:"response,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Status sends a tiny completion to check that the provider accepts the key.
func (c *Classifier) Status(ctx context.Context) Status {
	info := c.LLM.Info()
	st := Status{Provider: info.Provider, Model: info.Model}
	if !llm.IsConfigured(c.LLM) {
		st.Message = "API key not configured"
		return st
	}
	st.Configured = true

	callCtx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()
	resp, err := c.LLM.Complete(callCtx, llm.Request{
		Prompt:    `Say "API key is working" if you can read this.`,
		MaxTokens: 10,
	})
	if err != nil {
		st.Message = "API key test failed"
		st.Error = err.Error()
		return st
	}
	st.Valid = true
	st.Message = "API key is working"
	st.Response = resp
	return st
}
