package extract

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const articlePage = `<!doctype html>
<html><head><title>  Remote Work Policy  </title><script>var tracking = "ignore me";</script></head>
<body>
<header><h1>Site Header</h1><nav>Home About Contact</nav></header>
<div class="ads">Buy now! Limited offer on everything.</div>
<main>
<h2>Policy overview</h2>
<p>Employees may work remotely up to three days per week with manager approval.</p>
<p>Personnel must keep core collaboration hours between ten and three in their local time zone.</p>
</main>
<aside>Related links and other sidebar material</aside>
<footer>Copyright footer text</footer>
</body></html>`

func newTestWebExtractor() *WebExtractor {
	return NewWebExtractor(NewFetcher(2 * time.Second))
}

func TestWebExtractorPicksContentArea(t *testing.T) {
	gotUA := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case gotUA <- r.Header.Get("User-Agent"):
		default:
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(articlePage))
	}))
	defer srv.Close()

	res, err := newTestWebExtractor().Extract(context.Background(), srv.URL+"/policy")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Title != "Remote Work Policy" {
		t.Fatalf("unexpected title %q", res.Title)
	}
	if !strings.Contains(res.Text, "work remotely up to three days") {
		t.Fatalf("main content missing: %q", res.Text)
	}
	for _, noise := range []string{"ignore me", "Home About Contact", "Buy now", "Copyright footer", "sidebar"} {
		if strings.Contains(res.Text, noise) {
			t.Fatalf("noise %q leaked into text: %q", noise, res.Text)
		}
	}
	if ua := <-gotUA; ua != BrowserUserAgent {
		t.Fatalf("unexpected user agent %q", ua)
	}
}

const storyPage = `<html><head><title>Quarterly Results</title></head><body>
<div class="content"><p>Subscribe to our newsletter for weekly updates, curated links, and the occasional announcement from the team.</p></div>
<div id="story">
<p>Revenue for the quarter grew by eleven percent, driven by stronger subscription renewals, a recovering enterprise segment, and lower churn across every region we operate in.</p>
<p>Operating expenses stayed flat year over year, although the finance team notes that hiring in engineering and support will raise costs during the second half of the fiscal year.</p>
<p>Cash flow from operations reached a record level, which allowed the board to approve a modest buyback program, continued investment in infrastructure, and a larger reserve for audits.</p>
<p>Guidance for the next quarter assumes steady demand, stable pricing, and no major currency swings, while the budget keeps room for unplanned vendor and compliance expenses.</p>
</div>
</body></html>`

func TestWebExtractorReadabilityCompetesWithSelectors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(storyPage))
	}))
	defer srv.Close()

	res, err := newTestWebExtractor().Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Method != "readability" {
		t.Fatalf("expected the longer readability article to win, got %q: %q", res.Method, res.Text)
	}
	if !strings.Contains(res.Text, "Revenue for the quarter grew by eleven percent") {
		t.Fatalf("article text missing: %q", res.Text)
	}
}

func TestWebExtractorFallsBackToBodyAndHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div>Short body text only.</div></body></html>`))
	}))
	defer srv.Close()

	res, err := newTestWebExtractor().Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Text != "Short body text only." {
		t.Fatalf("unexpected body text %q", res.Text)
	}
	if res.Title != "127.0.0.1" {
		t.Fatalf("expected host name title, got %q", res.Title)
	}
}

func TestWebExtractorNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := newTestWebExtractor().Extract(context.Background(), srv.URL+"/missing")
	if KindOf(err) != KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestWebExtractorServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestWebExtractor().Extract(context.Background(), srv.URL)
	if KindOf(err) != KindFetchFailed {
		t.Fatalf("expected fetch failed, got %v", err)
	}
}

func TestWebExtractorConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := newTestWebExtractor().Extract(context.Background(), addr)
	if KindOf(err) != KindFetchFailed {
		t.Fatalf("expected fetch failed, got %v", err)
	}
	var e *Error
	if !errors.As(err, &e) || e.Message != "Could not connect to the provided URL" {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestWebExtractorEmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Empty</title></head><body><script>x()</script></body></html>`))
	}))
	defer srv.Close()

	_, err := newTestWebExtractor().Extract(context.Background(), srv.URL)
	if KindOf(err) != KindNoContent {
		t.Fatalf("expected no content, got %v", err)
	}
}

func TestParseWebURL(t *testing.T) {
	cases := []struct {
		in   string
		kind Kind
	}{
		{"", KindInvalidInput},
		{"not a url", KindInvalidURL},
		{"ftp://example.com/file", KindInvalidURL},
		{"/relative/path", KindInvalidURL},
		{"https://", KindInvalidURL},
	}
	for _, tc := range cases {
		if _, err := ParseWebURL(tc.in); KindOf(err) != tc.kind {
			t.Fatalf("ParseWebURL(%q) kind = %q, want %q", tc.in, KindOf(err), tc.kind)
		}
	}
	if _, err := ParseWebURL(" https://example.com/a?b=c "); err != nil {
		t.Fatalf("expected valid url, got %v", err)
	}
}
