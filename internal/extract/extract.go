// Package extract turns raw sources (PDF bytes, web pages, YouTube watch pages)
// into a title and plain text.
package extract

import (
	"context"
	"strings"
)

// SourceType identifies where a document came from.
type SourceType string

const (
	SourcePDF     SourceType = "pdf"
	SourceURL     SourceType = "url"
	SourceYouTube SourceType = "youtube"
)

// Valid reports whether t is a known source type.
func (t SourceType) Valid() bool {
	switch t {
	case SourcePDF, SourceURL, SourceYouTube:
		return true
	default:
		return false
	}
}

// Result is the output of every extractor.
type Result struct {
	Title string
	Text  string
	// Method names the strategy that produced Text, for logs.
	Method string
}

// PDF extracts text from an uploaded PDF.
type PDF interface {
	Extract(ctx context.Context, data []byte, fileName string) (Result, error)
}

// Remote extracts text from a source addressed by URL.
type Remote interface {
	Extract(ctx context.Context, rawURL string) (Result, error)
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
