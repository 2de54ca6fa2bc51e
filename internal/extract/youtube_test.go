package extract

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const watchPage = `<html><head><title>Intro to Go Concurrency - YouTube</title>
<meta name="description" content="short">
</head><body><script>
var ytInitialPlayerResponse = {"playabilityStatus":{"status":"OK"},"videoDetails":{"videoId":"dQw4w9WgXcQ","title":"Intro to Go Concurrency","keywords":["golang","goroutines","channels"],"shortDescription":"A walkthrough of goroutines,\nchannels and the \"select\" statement café 🚀 edition.","viewCount":"1234567","author":"Gopher Academy"},"microformat":{"ownerChannelName":"Gopher Academy"}};
</script></body></html>`

func newTestYouTube(base string) *YouTubeExtractor {
	e := NewYouTubeExtractor(NewFetcher(2 * time.Second))
	e.BaseURL = base
	return e
}

func TestParseVideoID(t *testing.T) {
	valid := map[string]string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ":           "dQw4w9WgXcQ",
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s":     "dQw4w9WgXcQ",
		"youtube.com/watch?v=dQw4w9WgXcQ":                       "dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ?si=abc":                   "dQw4w9WgXcQ",
		"https://www.youtube.com/embed/dQw4w9WgXcQ":             "dQw4w9WgXcQ",
		"http://youtube.com/v/dQw4w9WgXcQ?version=3":            "dQw4w9WgXcQ",
		"  https://m.youtube.com/watch?v=dQw4w9WgXcQ&list=xyz ": "dQw4w9WgXcQ",
	}
	for in, want := range valid {
		got, err := ParseVideoID(in)
		if err != nil {
			t.Fatalf("ParseVideoID(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseVideoID(%q) = %q, want %q", in, got, want)
		}
	}

	invalid := []string{
		"",
		"https://youtube.com/notavideo",
		"https://vimeo.com/12345",
		"https://www.youtube.com/watch?v=",
		"https://youtu.be/short",
	}
	for _, in := range invalid {
		if _, err := ParseVideoID(in); KindOf(err) != KindInvalidInput {
			t.Fatalf("ParseVideoID(%q) expected invalid input, got %v", in, err)
		}
	}
}

func TestYouTubeExtractorInvalidURLDoesNotFetch(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	_, err := newTestYouTube(srv.URL).Extract(context.Background(), "https://youtube.com/notavideo")
	if KindOf(err) != KindInvalidInput {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if hits.Load() != 0 {
		t.Fatalf("expected no fetch, got %d", hits.Load())
	}
}

func TestYouTubeExtractorMetadata(t *testing.T) {
	var gotPath atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath.Store(r.URL.RequestURI())
		_, _ = w.Write([]byte(watchPage))
	}))
	defer srv.Close()

	res, err := newTestYouTube(srv.URL).Extract(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if p, _ := gotPath.Load().(string); p != "/watch?v=dQw4w9WgXcQ" {
		t.Fatalf("unexpected request path %q", p)
	}
	if res.Title != "Intro to Go Concurrency" {
		t.Fatalf("unexpected title %q", res.Title)
	}
	for _, want := range []string{
		"Intro to Go Concurrency. Channel: Gopher Academy. ",
		`channels and the "select" statement café 🚀 edition.`,
		"Tags: golang goroutines channels",
		"Views: 1,234,567",
	} {
		if !strings.Contains(res.Text, want) {
			t.Fatalf("text missing %q: %q", want, res.Text)
		}
	}
	if strings.Contains(res.Text, `\`) {
		t.Fatalf("escape sequences leaked: %q", res.Text)
	}
}

func TestYouTubeExtractorAccessError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestYouTube(srv.URL).Extract(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	var e *Error
	if !errors.As(err, &e) || e.Kind != KindAccessError {
		t.Fatalf("expected access error, got %v", err)
	}
	if e.Suggestion == "" {
		t.Fatalf("expected suggestion on access error")
	}
}

func TestYouTubeExtractorPrivateVideo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"playabilityStatus":{"status":"LOGIN_REQUIRED","reason":"Private video"}}`))
	}))
	defer srv.Close()

	_, err := newTestYouTube(srv.URL).Extract(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	if KindOf(err) != KindAccessError {
		t.Fatalf("expected access error, got %v", err)
	}
}

func TestYouTubeExtractorInsufficientMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>YouTube</title></head><body></body></html>`))
	}))
	defer srv.Close()

	_, err := newTestYouTube(srv.URL).Extract(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	var e *Error
	if !errors.As(err, &e) || e.Kind != KindInsufficientMetadata {
		t.Fatalf("expected insufficient metadata, got %v", err)
	}
	if !strings.Contains(e.Suggestion, "detailed title and description") {
		t.Fatalf("unexpected suggestion %q", e.Suggestion)
	}
}

func TestMetadataFieldAcceptance(t *testing.T) {
	page := `<title>Hi - YouTube</title> "title":"A much better title"`
	if got := titleField.find(page); got != "A much better title" {
		t.Fatalf("expected second pattern to win, got %q", got)
	}
	page = `"ownerChannelName":"YouTube Movies" "author":"Real Channel"`
	if got := channelField.find(page); got != "Real Channel" {
		t.Fatalf("expected YouTube-branded channel to be skipped, got %q", got)
	}
}

func TestGroupThousands(t *testing.T) {
	cases := map[int64]string{0: "0", 999: "999", 1000: "1,000", 1234567: "1,234,567", 100000: "100,000"}
	for in, want := range cases {
		if got := groupThousands(in); got != want {
			t.Fatalf("groupThousands(%d) = %q, want %q", in, got, want)
		}
	}
}
