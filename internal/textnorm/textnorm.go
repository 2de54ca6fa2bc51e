// Package textnorm cleans extracted text and bounds it for classification and storage.
package textnorm

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

const (
	// ProcessingCap is the longest text handed to the classifier.
	ProcessingCap = 8000
	// HeadKeep and TailKeep are the slices preserved around the truncation marker.
	HeadKeep = 4000
	TailKeep = 2000
	// StorageCap bounds Document.content at rest.
	StorageCap = 10000
	// MinMeaningfulWords is the rejection threshold for normalized text.
	MinMeaningfulWords = 10

	// TruncationMarker replaces the middle of over-long text.
	TruncationMarker = "[... content truncated for processing ...]"
)

// ErrInsufficientText is returned when too few meaningful words survive cleanup.
var ErrInsufficientText = errors.New("insufficient text content")

var (
	whitespaceRun  = regexp.MustCompile(`\s+`)
	artifactMarker = regexp.MustCompile(`(?i)\[(image|img|figure|chart|graph|photo|picture)\]`)
	disallowedChar = regexp.MustCompile(`[^\w\s.,!?;:\-()\[\]"']`)
	visualMention  = regexp.MustCompile(`(?i)image|figure|chart`)
)

// Result is the outcome of Normalize.
type Result struct {
	Text            string
	Truncated       bool
	MeaningfulWords int
}

// Normalize cleans raw, applies the processing cap and rejects text with
// fewer than MinMeaningfulWords meaningful words.
func Normalize(raw string) (Result, error) {
	cleaned := Clean(raw)
	words := MeaningfulWords(cleaned)
	if words < MinMeaningfulWords {
		return Result{Text: cleaned, MeaningfulWords: words}, ErrInsufficientText
	}
	bounded, truncated := Bound(cleaned)
	return Result{Text: bounded, Truncated: truncated, MeaningfulWords: words}, nil
}

// Clean collapses whitespace, strips artifact markers and characters outside
// the permitted set, then trims.
func Clean(raw string) string {
	s := collapse(raw)
	for artifactMarker.MatchString(s) {
		s = artifactMarker.ReplaceAllString(s, "")
	}
	s = disallowedChar.ReplaceAllString(s, " ")
	return strings.TrimSpace(collapse(s))
}

// Bound keeps the first HeadKeep and last TailKeep characters of text longer
// than ProcessingCap, joined by TruncationMarker.
//
// Clean output is ASCII, so byte offsets are character offsets.
func Bound(text string) (string, bool) {
	if len(text) <= ProcessingCap {
		return text, false
	}
	var b strings.Builder
	b.Grow(HeadKeep + len(TruncationMarker) + TailKeep)
	b.WriteString(text[:HeadKeep])
	b.WriteString(TruncationMarker)
	b.WriteString(text[len(text)-TailKeep:])
	return b.String(), true
}

// CapStorage truncates s to StorageCap characters.
func CapStorage(s string) string {
	if len(s) <= StorageCap {
		return s
	}
	n := 0
	for i := range s {
		if n == StorageCap {
			return s[:i]
		}
		n++
	}
	return s
}

// MeaningfulWords counts tokens longer than two characters that contain a letter.
func MeaningfulWords(text string) int {
	count := 0
	for _, tok := range strings.Fields(text) {
		if len([]rune(tok)) > 2 && hasLetter(tok) {
			count++
		}
	}
	return count
}

// WordsWithLetters counts whitespace-separated tokens containing at least one letter.
func WordsWithLetters(text string) int {
	count := 0
	for _, tok := range strings.Fields(text) {
		if hasLetter(tok) {
			count++
		}
	}
	return count
}

// HasVisualReferences reports whether text mentions images, figures or charts.
func HasVisualReferences(text string) bool {
	return visualMention.MatchString(text)
}

func collapse(s string) string {
	return whitespaceRun.ReplaceAllString(s, " ")
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
