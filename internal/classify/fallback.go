package classify

import (
	"fmt"
	"regexp"
	"strings"

	"docinsight-backend/internal/textnorm"
)

const (
	defaultCategory   = "Technical"
	defaultDepartment = "Operations"

	visualDisclaimer = " (Analysis based on text content only, images and graphics were not processed.)"
)

type keywordRule struct {
	category   string
	department string
	pattern    *regexp.Regexp
}

// keywordRules are checked in order; the first rule with a hit wins.
var keywordRules = []keywordRule{
	rule("Legal", "Legal", "legal", "contract", "compliance", "law"),
	rule("Marketing", "Marketing", "marketing", "campaign", "brand", "advertisement"),
	rule("HR", "HR", "hr", "human resources", "employee", "personnel"),
	rule("Finance", "Finance", "finance", "budget", "financial", "accounting"),
	rule("Business", "Sales", "sales", "revenue", "customer", "client"),
	rule("Technical", "Engineering", "engineering", "technical", "development", "software"),
	rule("Research", "Research", "research", "study", "analysis", "investigation"),
}

// rule compiles keywords into one alternation. Keywords anchor at a word
// start; short ones ("hr") must also end at a word boundary.
func rule(category, department string, keywords ...string) keywordRule {
	alts := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		p := `\b` + regexp.QuoteMeta(kw)
		if len(kw) <= 2 {
			p += `\b`
		}
		alts = append(alts, p)
	}
	return keywordRule{
		category:   category,
		department: department,
		pattern:    regexp.MustCompile(`(?i)(?:` + strings.Join(alts, "|") + `)`),
	}
}

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// Heuristic returns the keyword-based labels for text and title.
func Heuristic(text, title string) (category, department string) {
	haystack := text + " " + title
	for _, r := range keywordRules {
		if r.pattern.MatchString(haystack) {
			return r.category, r.department
		}
	}
	return defaultCategory, defaultDepartment
}

// Fallback produces a deterministic result without any AI call.
func Fallback(in Input) Result {
	category, department := Heuristic(in.Text, in.Title)
	return Result{
		Summary:    fallbackSummary(in, category, department),
		Category:   category,
		Department: department,
		Method:     MethodFallback,
	}
}

func fallbackSummary(in Input, category, department string) string {
	var picked []string
	for _, frag := range sentenceSplit.Split(in.Text, -1) {
		frag = strings.TrimSpace(frag)
		if len(frag) > 20 {
			picked = append(picked, frag)
			if len(picked) == 2 {
				break
			}
		}
	}

	var summary string
	if len(picked) > 0 {
		summary = strings.Join(picked, ". ") + "."
	} else {
		summary = fmt.Sprintf("Document \"%s\" contains %d words of text content. The document discusses %s topics relevant to the %s department.",
			in.Title, textnorm.MeaningfulWords(in.Text), strings.ToLower(category), department)
	}

	raw := in.Raw
	if raw == "" {
		raw = in.Text
	}
	if textnorm.HasVisualReferences(raw) {
		summary += visualDisclaimer
	}
	return summary
}
