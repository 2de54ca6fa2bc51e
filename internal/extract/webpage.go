package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

const minCandidateLength = 100

var (
	noiseSelectors   = "script, style, noscript, iframe, nav, header, footer, aside, .advertisement, .ads"
	contentSelectors = []string{
		"main",
		"article",
		".content",
		".main-content",
		".post-content",
		".entry-content",
		"#content",
		".container",
	}
)

// WebExtractor pulls readable text out of an arbitrary web page.
type WebExtractor struct {
	Fetcher *Fetcher
}

// NewWebExtractor constructs a WebExtractor.
func NewWebExtractor(f *Fetcher) *WebExtractor {
	return &WebExtractor{Fetcher: f}
}

// Extract fetches rawURL and returns its title and main text.
func (e *WebExtractor) Extract(ctx context.Context, rawURL string) (Result, error) {
	target, err := ParseWebURL(rawURL)
	if err != nil {
		return Result{}, err
	}

	resp, err := e.Fetcher.Get(ctx, target.String(), map[string]string{
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
	})
	if err != nil {
		return Result{}, classifyFetchError(err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Result{}, newError(KindNotFound, "URL not found (404)", nil)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return Result{}, newError(KindFetchFailed, fmt.Sprintf("URL returned HTTP %d", resp.StatusCode), nil)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return Result{}, newError(KindNoContent, "Could not parse the page content", err)
	}

	title := pageTitle(doc, target)
	doc.Find(noiseSelectors).Remove()

	best, method := "", ""
	for _, sel := range contentSelectors {
		found := doc.Find(sel)
		if found.Length() == 0 {
			continue
		}
		if text := selectionText(found); len(text) > len(best) {
			best, method = text, "selector:"+sel
		}
	}
	if cleaned, err := doc.Html(); err == nil {
		if text := readableText(cleaned, target); len(text) > len(best) {
			best, method = text, "readability"
		}
	}
	if len(best) <= minCandidateLength {
		best, method = selectionText(doc.Find("body")), "body"
	}
	if best == "" {
		return Result{}, newError(KindNoContent, "Could not extract meaningful content from URL", nil)
	}
	return Result{Title: title, Text: best, Method: method}, nil
}

// ParseWebURL accepts absolute http(s) URLs only.
func ParseWebURL(rawURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return nil, newError(KindInvalidInput, "No URL provided", nil)
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, newError(KindInvalidURL, "Invalid URL provided", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return nil, newError(KindInvalidURL, "Invalid URL provided", nil)
	}
	return u, nil
}

func classifyFetchError(err error) error {
	if isConnectError(err) {
		return newError(KindFetchFailed, "Could not connect to the provided URL", err)
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return newError(KindFetchFailed, "Timed out fetching the provided URL", err)
	}
	return newError(KindFetchFailed, "Failed to fetch URL", err)
}

func pageTitle(doc *goquery.Document, u *url.URL) string {
	if t := collapseSpaces(doc.Find("title").First().Text()); t != "" {
		return t
	}
	if t := collapseSpaces(doc.Find("h1").First().Text()); t != "" {
		return t
	}
	return u.Hostname()
}

// readableText runs go-readability over the de-noised page and flattens the article HTML.
func readableText(page string, u *url.URL) string {
	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(page), u)
	if err != nil || strings.TrimSpace(article.Content) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return ""
	}
	return selectionText(doc.Selection)
}

// selectionText joins every text node under sel with single spaces, so block
// elements do not run together the way Selection.Text does.
func selectionText(sel *goquery.Selection) string {
	var b strings.Builder
	writeText(sel, &b)
	return collapseSpaces(b.String())
}

func writeText(sel *goquery.Selection, b *strings.Builder) {
	sel.Contents().Each(func(_ int, node *goquery.Selection) {
		switch goquery.NodeName(node) {
		case "#text":
			b.WriteString(node.Text())
			b.WriteByte(' ')
		case "#comment", "script", "style", "noscript":
		default:
			writeText(node, b)
		}
	})
}
