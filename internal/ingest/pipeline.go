// Package ingest runs sources through extraction, normalization,
// classification and assembly, and gates it behind the daily quota.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"docinsight-backend/internal/classify"
	"docinsight-backend/internal/documents"
	"docinsight-backend/internal/extract"
	"docinsight-backend/internal/shared/metrics"
	"docinsight-backend/internal/textnorm"
)

// Processed is an assembled document that has not been persisted.
type Processed struct {
	Document      documents.Document
	Method        string
	ExtractMethod string
	Truncated     bool
}

// Pipeline holds the pure-ish stages. It does no persistence and no quota
// accounting, so the offline CLI can use it directly.
type Pipeline struct {
	PDF        extract.PDF
	Web        extract.Remote
	YouTube    extract.Remote
	Classifier *classify.Classifier
	Assembler  *documents.Assembler
	Log        *zap.Logger
}

// NewPipeline wires the stock extractors around one fetcher.
func NewPipeline(fetcher *extract.Fetcher, classifier *classify.Classifier, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if classifier == nil {
		classifier = classify.New(nil, 0, logger)
	}
	return &Pipeline{
		PDF:        extract.NewPDFExtractor(),
		Web:        extract.NewWebExtractor(fetcher),
		YouTube:    extract.NewYouTubeExtractor(fetcher),
		Classifier: classifier,
		Assembler:  documents.NewAssembler(),
		Log:        logger,
	}
}

// FromPDF extracts and assembles an uploaded PDF.
func (p *Pipeline) FromPDF(ctx context.Context, ownerID string, data []byte, fileName string) (Processed, error) {
	if len(data) == 0 {
		return Processed{}, fmt.Errorf("%w: no file uploaded", ErrInvalidInput)
	}
	res, err := p.PDF.Extract(ctx, data, fileName)
	if err != nil {
		return Processed{}, fmt.Errorf("extract pdf: %w", err)
	}
	return p.finish(ctx, ownerID, documents.TypePDF, res, "")
}

// FromURL fetches and assembles a web page.
func (p *Pipeline) FromURL(ctx context.Context, ownerID, rawURL string) (Processed, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return Processed{}, fmt.Errorf("%w: URL is required", ErrInvalidInput)
	}
	res, err := p.Web.Extract(ctx, rawURL)
	if err != nil {
		return Processed{}, fmt.Errorf("extract url: %w", err)
	}
	return p.finish(ctx, ownerID, documents.TypeURL, res, rawURL)
}

// FromYouTube scrapes and assembles a YouTube video's metadata.
func (p *Pipeline) FromYouTube(ctx context.Context, ownerID, rawURL string) (Processed, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return Processed{}, fmt.Errorf("%w: YouTube URL is required", ErrInvalidInput)
	}
	res, err := p.YouTube.Extract(ctx, rawURL)
	if err != nil {
		return Processed{}, fmt.Errorf("extract youtube: %w", err)
	}
	return p.finish(ctx, ownerID, documents.TypeYouTube, res, rawURL)
}

func (p *Pipeline) finish(ctx context.Context, ownerID, sourceType string, res extract.Result, originalURL string) (Processed, error) {
	started := time.Now()
	norm, err := textnorm.Normalize(res.Text)
	if err != nil {
		return Processed{}, fmt.Errorf("normalize %s: %w", sourceType, err)
	}

	cls := p.Classifier.Classify(ctx, classify.Input{Title: res.Title, Text: norm.Text, Raw: res.Text})
	metrics.IncClassification(cls.Method)

	doc := p.Assembler.Assemble(documents.AssembleInput{
		Title:       res.Title,
		Summary:     cls.Summary,
		Category:    cls.Category,
		Department:  cls.Department,
		Type:        sourceType,
		OriginalURL: originalURL,
		Content:     norm.Text,
		OwnerID:     ownerID,
	})

	p.Log.Debug("ingest.assembled",
		zap.String("document_id", doc.ID),
		zap.String("source_type", sourceType),
		zap.String("extract_method", res.Method),
		zap.String("classify_method", cls.Method),
		zap.Int("meaningful_words", norm.MeaningfulWords),
		zap.Bool("truncated", norm.Truncated),
		zap.Duration("elapsed", time.Since(started)),
	)
	return Processed{Document: doc, Method: cls.Method, ExtractMethod: res.Method, Truncated: norm.Truncated}, nil
}
