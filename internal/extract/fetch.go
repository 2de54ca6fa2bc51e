package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

const (
	// BrowserUserAgent is sent with page fetches; some sites refuse unknown clients.
	BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	defaultFetchTimeout = 10 * time.Second
	defaultMaxBodyBytes = 5 << 20
)

// Fetcher performs bounded HTTP GETs for the URL and YouTube extractors.
type Fetcher struct {
	Client    *http.Client
	UserAgent string
	Timeout   time.Duration
	MaxBytes  int64
}

// NewFetcher constructs a Fetcher with the given per-request timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &Fetcher{
		Client:    &http.Client{},
		UserAgent: BrowserUserAgent,
		Timeout:   timeout,
		MaxBytes:  defaultMaxBodyBytes,
	}
}

// Response is a fetched page.
type Response struct {
	StatusCode int
	Body       []byte
}

// Get fetches rawURL with the configured User-Agent plus any extra headers.
// Non-2xx statuses are returned in Response, not as errors.
func (f *Fetcher) Get(ctx context.Context, rawURL string, headers map[string]string) (Response, error) {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Response{}, fmt.Errorf("build request: %w", err)
	}
	ua := f.UserAgent
	if ua == "" {
		ua = BrowserUserAgent
	}
	req.Header.Set("User-Agent", ua)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	limit := f.MaxBytes
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return Response{}, fmt.Errorf("read body: %w", err)
	}
	return Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// isConnectError reports DNS and connection-level failures.
func isConnectError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial"
	}
	return false
}
