package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"docinsight-backend/internal/shared/util"
	"docinsight-backend/internal/textnorm"
)

const (
	pdfMagic           = "%PDF-"
	minPDFTextLength   = 10
	minPDFLetterTokens = 10

	pdfInsufficientMessage = "Could not extract readable text from this PDF. It may be scanned or image-based."
)

// PDFExtractor reads the text layer of a PDF with github.com/ledongthuc/pdf.
type PDFExtractor struct{}

// NewPDFExtractor constructs a PDFExtractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Extract tries per-page text extraction first and falls back to whole-document
// extraction. Embedded images are never decoded.
func (e *PDFExtractor) Extract(ctx context.Context, data []byte, fileName string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), []byte(pdfMagic)) {
		return Result{}, newError(KindInvalidInput, "Please upload a valid PDF file", nil)
	}

	title := util.TitleFromFileName(fileName, "Untitled PDF")

	text, method, err := e.extractText(data)
	if err != nil {
		return Result{}, newError(KindInsufficientText, pdfInsufficientMessage, err)
	}
	if len(strings.TrimSpace(text)) < minPDFTextLength || textnorm.WordsWithLetters(text) < minPDFLetterTokens {
		return Result{}, newError(KindInsufficientText, pdfInsufficientMessage, nil)
	}
	return Result{Title: title, Text: text, Method: method}, nil
}

func (e *PDFExtractor) extractText(data []byte) (string, string, error) {
	text, textErr := extractPDFPages(data)
	if textErr == nil && strings.TrimSpace(text) != "" {
		return text, "pdf.pages", nil
	}
	text, genericErr := extractPDFDocument(data)
	if genericErr == nil && strings.TrimSpace(text) != "" {
		return text, "pdf.document", nil
	}
	if textErr == nil && genericErr == nil {
		return "", "", errors.New("pdf has no text layer")
	}
	return "", "", errors.Join(textErr, genericErr)
}

// extractPDFPages reads each page independently so one broken page does not
// lose the rest of the document.
func extractPDFPages(data []byte) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdf page extraction panic: %v", rec)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	fonts := make(map[string]*pdf.Font)
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := page.Font(name)
				fonts[name] = &f
			}
		}
		pageText, err := page.GetPlainText(fonts)
		if err != nil {
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func extractPDFDocument(data []byte) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdf document extraction panic: %v", rec)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("plain text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}
