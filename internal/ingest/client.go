package ingest

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/corpix/uarand"
)

// Client is a polite HTTP client for fetching catalog pages. It spaces
// requests out, rotates User-Agent strings, and retries transient
// failures with exponential backoff.
type Client struct {
	httpClient *http.Client
	userAgents []string
	maxRetries int
	minDelay   time.Duration
	retryDelay time.Duration

	mu       sync.Mutex
	lastCall time.Time
}

// NewClient creates a catalog fetch client. minDelay is the minimum gap
// between consecutive requests; maxRetries counts retry attempts after
// the first try.
func NewClient(timeout time.Duration, minDelay time.Duration, maxRetries int) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgents: staticUserAgents(),
		maxRetries: maxRetries,
		minDelay:   minDelay,
		retryDelay: 2 * time.Second,
	}
}

// Get performs a GET request with pacing and retries.
// Caller is responsible for closing the response body.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	var resp *http.Response

	err := retryWithBackoff(ctx, c.maxRetries, c.retryDelay, func() error {
		if err := c.pace(ctx); err != nil {
			return markPermanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return markPermanent(fmt.Errorf("failed to create request: %w", err))
		}

		req.Header.Set("User-Agent", c.randomUserAgent())
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Encoding", "gzip, deflate")

		resp, err = c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			// Close body for non-success responses since we won't return it
			_ = resp.Body.Close()

			switch resp.StatusCode {
			case http.StatusTooManyRequests:
				return fmt.Errorf("rate limited for %s: status %d", url, resp.StatusCode)
			case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
				return fmt.Errorf("server error for %s: status %d", url, resp.StatusCode)
			case http.StatusNotFound, http.StatusForbidden, http.StatusUnauthorized:
				return markPermanent(fmt.Errorf("client error for %s: status %d", url, resp.StatusCode))
			default:
				return fmt.Errorf("unexpected status for %s: %d", url, resp.StatusCode)
			}
		}

		// Success - caller must close response body
		return nil
	})

	if err != nil {
		return nil, err
	}

	return resp, nil
}

// GetDocument performs a GET request and parses the response as HTML.
func (c *Client) GetDocument(ctx context.Context, url string) (*goquery.Document, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress gzip: %w", err)
		}
		defer func() { _ = gzipReader.Close() }()
		reader = gzipReader
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return doc, nil
}

// pace blocks until minDelay has passed since the previous request.
func (c *Client) pace(ctx context.Context) error {
	if c.minDelay <= 0 {
		return nil
	}

	c.mu.Lock()
	wait := c.minDelay - time.Since(c.lastCall)
	if wait <= 0 {
		c.lastCall = time.Now()
		c.mu.Unlock()
		return nil
	}
	// Reserve the slot now so concurrent callers queue behind this one.
	c.lastCall = time.Now().Add(wait)
	c.mu.Unlock()

	select {
	case <-time.After(wait):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// randomUserAgent returns a user agent from the static pool, falling
// back to uarand when the pool is empty.
func (c *Client) randomUserAgent() string {
	if len(c.userAgents) == 0 {
		return uarand.GetRandom()
	}
	return c.userAgents[time.Now().UnixNano()%int64(len(c.userAgents))]
}

// staticUserAgents returns a list of common user agent strings.
func staticUserAgents() []string {
	return []string{
		// Chrome on Windows
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",

		// Chrome on macOS
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",

		// Firefox on Windows
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",

		// Firefox on macOS
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:121.0) Gecko/20100101 Firefox/121.0",

		// Safari on macOS
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",

		// Edge on Windows
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",

		// Chrome on Linux
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}
}
