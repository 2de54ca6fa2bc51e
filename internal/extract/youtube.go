package extract

import (
	"context"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

const (
	youtubeWatchBase     = "https://www.youtube.com"
	maxYouTubeText       = 4000
	maxYouTubeKeywords   = 200
	minYouTubeTextLength = 20

	suggestAccess   = "Please try a different public YouTube video that is accessible in your region."
	suggestMetadata = "Try a video with a detailed title and description, or a video from a channel that provides good metadata."
)

var (
	youtubeShape   = regexp.MustCompile(`^(https?://)?(www\.|m\.)?(youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/|youtube\.com/v/)`)
	videoIDShape   = regexp.MustCompile(`^[A-Za-z0-9_-]{6,}$`)
	blockedStatus  = regexp.MustCompile(`"playabilityStatus":\s*\{\s*"status":\s*"(ERROR|LOGIN_REQUIRED)"`)
	viewCountField = regexp.MustCompile(`"viewCount":"(\d+)"`)
)

// metadataField is one piece of watch-page metadata recovered by trying
// patterns in order until a cleaned match passes accept.
type metadataField struct {
	patterns []*regexp.Regexp
	clean    func(string) string
	accept   func(string) bool
}

func (f metadataField) find(page string) string {
	for _, p := range f.patterns {
		m := p.FindStringSubmatch(page)
		if len(m) < 2 {
			continue
		}
		v := f.clean(m[1])
		if f.accept(v) {
			return v
		}
	}
	return ""
}

func longerThan(n int) func(string) bool {
	return func(s string) bool { return len([]rune(s)) > n }
}

var (
	titleField = metadataField{
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`<title>([^<]+)</title>`),
			regexp.MustCompile(`"title":"((?:[^"\\]|\\.)+)"`),
			regexp.MustCompile(`property="og:title" content="([^"]+)"`),
			regexp.MustCompile(`<meta name="title" content="([^"]+)"`),
			regexp.MustCompile(`"videoDetails":\s*\{[^}]*"title":"((?:[^"\\]|\\.)+)"`),
		},
		clean: func(s string) string {
			s = strings.ReplaceAll(s, " - YouTube", "")
			return strings.TrimSpace(unescapeScraped(s))
		},
		accept: longerThan(5),
	}

	descriptionField = metadataField{
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`"shortDescription":"((?:[^"\\]|\\.)+)"`),
			regexp.MustCompile(`"description":\{"simpleText":"((?:[^"\\]|\\.)+)"\}`),
			regexp.MustCompile(`property="og:description" content="([^"]+)"`),
			regexp.MustCompile(`<meta name="description" content="([^"]+)"`),
			regexp.MustCompile(`"videoDetails":\s*\{[^}]*"shortDescription":"((?:[^"\\]|\\.)+)"`),
		},
		clean: func(s string) string {
			s = strings.ReplaceAll(s, `\n`, " ")
			s = strings.ReplaceAll(s, `\"`, `"`)
			return collapseSpaces(unescapeScraped(s))
		},
		accept: longerThan(20),
	}

	channelField = metadataField{
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`"ownerChannelName":"((?:[^"\\]|\\.)+)"`),
			regexp.MustCompile(`"author":"((?:[^"\\]|\\.)+)"`),
			regexp.MustCompile(`property="og:site_name" content="([^"]+)"`),
		},
		clean: func(s string) string { return strings.TrimSpace(unescapeScraped(s)) },
		accept: func(s string) bool {
			return s != "" && !strings.Contains(s, "YouTube")
		},
	}

	keywordsField = metadataField{
		patterns: []*regexp.Regexp{regexp.MustCompile(`"keywords":\[([^\]]+)\]`)},
		clean: func(s string) string {
			s = strings.ReplaceAll(s, `"`, "")
			s = strings.ReplaceAll(s, ",", " ")
			return truncateRunes(collapseSpaces(unescapeScraped(s)), maxYouTubeKeywords)
		},
		accept: func(s string) bool { return s != "" },
	}
)

// YouTubeExtractor scrapes public watch-page metadata; no official API is used.
type YouTubeExtractor struct {
	Fetcher *Fetcher
	// BaseURL is the watch-page origin, overridable for tests.
	BaseURL string
}

// NewYouTubeExtractor constructs a YouTubeExtractor.
func NewYouTubeExtractor(f *Fetcher) *YouTubeExtractor {
	return &YouTubeExtractor{Fetcher: f, BaseURL: youtubeWatchBase}
}

// Extract resolves the video ID, fetches the watch page and assembles its metadata.
func (e *YouTubeExtractor) Extract(ctx context.Context, rawURL string) (Result, error) {
	id, err := ParseVideoID(rawURL)
	if err != nil {
		return Result{}, err
	}

	base := e.BaseURL
	if base == "" {
		base = youtubeWatchBase
	}
	watchURL := strings.TrimRight(base, "/") + "/watch?v=" + url.QueryEscape(id)
	resp, err := e.Fetcher.Get(ctx, watchURL, map[string]string{
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
		"Cache-Control":   "no-cache",
		"Pragma":          "no-cache",
		"Sec-Fetch-Dest":  "document",
		"Sec-Fetch-Mode":  "navigate",
		"Sec-Fetch-Site":  "none",
	})
	if err != nil {
		return Result{}, accessError(err)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, accessError(nil)
	}
	page := string(resp.Body)
	if blockedStatus.MatchString(page) {
		return Result{}, accessError(nil)
	}

	title := titleField.find(page)
	channel := channelField.find(page)
	description := descriptionField.find(page)
	keywords := keywordsField.find(page)

	parts := make([]string, 0, 5)
	if title != "" {
		parts = append(parts, title)
	}
	if channel != "" {
		parts = append(parts, "Channel: "+channel)
	}
	if description != "" {
		parts = append(parts, description)
	}
	if keywords != "" {
		parts = append(parts, "Tags: "+keywords)
	}
	if m := viewCountField.FindStringSubmatch(page); len(m) == 2 {
		if views, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			parts = append(parts, "Views: "+groupThousands(views))
		}
	}

	text := truncateRunes(strings.Join(parts, ". "), maxYouTubeText)
	if len([]rune(strings.TrimSpace(text))) < minYouTubeTextLength {
		return Result{}, &Error{
			Kind:       KindInsufficientMetadata,
			Message:    "Could not extract sufficient content from YouTube video. The video may have very limited metadata or may be restricted.",
			Suggestion: suggestMetadata,
		}
	}
	if title == "" {
		title = "YouTube Video " + id
	}
	return Result{Title: title, Text: text, Method: "youtube.metadata"}, nil
}

// ParseVideoID validates the URL shape and returns the 11-character video ID.
// No network access happens here.
func ParseVideoID(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", newError(KindInvalidInput, "No YouTube URL provided", nil)
	}
	if !youtubeShape.MatchString(trimmed) {
		return "", newError(KindInvalidInput, "Invalid YouTube URL. Please provide a valid YouTube video link.", nil)
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", newError(KindInvalidInput, "Failed to parse YouTube URL", err)
	}

	var id string
	host := strings.ToLower(u.Hostname())
	switch {
	case strings.Contains(host, "youtu.be"):
		id = strings.TrimPrefix(u.Path, "/")
	case strings.Contains(host, "youtube.com"):
		id = u.Query().Get("v")
		if id == "" {
			for _, marker := range []string{"/embed/", "/v/"} {
				if _, after, ok := strings.Cut(u.Path, marker); ok {
					id = after
					break
				}
			}
		}
	}
	if i := strings.IndexAny(id, "&?/"); i >= 0 {
		id = id[:i]
	}
	if !videoIDShape.MatchString(id) {
		return "", newError(KindInvalidInput, "Could not extract video ID from YouTube URL", nil)
	}
	return id, nil
}

func accessError(cause error) *Error {
	return &Error{
		Kind:       KindAccessError,
		Message:    "Unable to access YouTube video information. The video may be private, age-restricted, region-blocked, or temporarily unavailable.",
		Suggestion: suggestAccess,
		Err:        cause,
	}
}

// unescapeScraped decodes \uXXXX escapes (including surrogate pairs) and HTML
// entities, then drops leftover backslashes.
func unescapeScraped(s string) string {
	s = decodeUnicodeEscapes(s)
	s = html.UnescapeString(s)
	return strings.ReplaceAll(s, `\`, "")
}

func decodeUnicodeEscapes(s string) string {
	if !strings.Contains(s, `\u`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		r, ok := hexEscape(s, i)
		if !ok {
			b.WriteByte(s[i])
			i++
			continue
		}
		i += 6
		if utf16.IsSurrogate(r) {
			if low, ok := hexEscape(s, i); ok {
				if dec := utf16.DecodeRune(r, low); dec != utf8.RuneError {
					b.WriteRune(dec)
					i += 6
					continue
				}
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

// hexEscape parses a \uXXXX escape starting at s[i].
func hexEscape(s string, i int) (rune, bool) {
	if i+6 > len(s) || s[i] != '\\' || s[i+1] != 'u' {
		return 0, false
	}
	v, err := strconv.ParseUint(s[i+2:i+6], 16, 16)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
