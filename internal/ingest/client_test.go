package ingest

import (
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testClient() *Client {
	// No pacing delay and millisecond backoff so retry paths stay fast
	c := NewClient(5*time.Second, 0, 2)
	c.retryDelay = time.Millisecond
	return c
}

func TestClientGet_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("request missing User-Agent header")
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	resp, err := testClient().Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	_ = resp.Body.Close()
}

func TestClientGet_RetriesServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	resp, err := testClient().Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	_ = resp.Body.Close()

	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2 (one retry)", calls.Load())
	}
}

func TestClientGet_NotFoundIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := testClient().Get(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for 404")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (no retry on 404)", calls.Load())
	}
}

func TestClientGetDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><h1 id="title">Course Catalog</h1></body></html>`))
	}))
	defer srv.Close()

	doc, err := testClient().GetDocument(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("GetDocument() error = %v", err)
	}
	if got := doc.Find("#title").Text(); got != "Course Catalog" {
		t.Errorf("title = %q, want %q", got, "Course Catalog")
	}
}

func TestClientGetDocument_Gzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = gz.Write([]byte(`<html><body><p class="msg">compressed</p></body></html>`))
		_ = gz.Close()
	}))
	defer srv.Close()

	// Disable transparent decompression so the handler's gzip survives
	c := testClient()
	c.httpClient.Transport.(*http.Transport).DisableCompression = true

	doc, err := c.GetDocument(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("GetDocument() error = %v", err)
	}
	if got := doc.Find(".msg").Text(); got != "compressed" {
		t.Errorf("msg = %q, want %q", got, "compressed")
	}
}

func TestClientPace(t *testing.T) {
	c := NewClient(time.Second, 30*time.Millisecond, 0)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := c.pace(context.Background()); err != nil {
			t.Fatalf("pace() error = %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("three paced calls took %v, want at least ~60ms", elapsed)
	}
}

func TestClientPace_ContextCanceled(t *testing.T) {
	c := NewClient(time.Second, time.Minute, 0)

	ctx, cancel := context.WithCancel(context.Background())
	_ = c.pace(ctx) // first call is free
	cancel()

	if err := c.pace(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("pace() error = %v, want context.Canceled", err)
	}
}

func TestRetryWithBackoff_Permanent(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("gone")
	var calls int
	err := retryWithBackoff(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return markPermanent(sentinel)
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("error = %v, want wrapped sentinel", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryWithBackoff_EventualSuccess(t *testing.T) {
	t.Parallel()

	var calls int
	err := retryWithBackoff(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("retryWithBackoff() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryWithBackoff_Exhausted(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("still failing")
	var calls int
	err := retryWithBackoff(context.Background(), 2, time.Millisecond, func() error {
		calls++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("error = %v, want sentinel", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3 (initial try plus 2 retries)", calls)
	}
}
