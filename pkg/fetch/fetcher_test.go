package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"index-scraper/pkg/config"
	"index-scraper/pkg/utils"
)

// testConfig returns an AppConfig with fast retry delays for testing
func testConfig(maxRetries int) *config.AppConfig {
	return &config.AppConfig{
		MaxRetries: maxRetries,
		RetryDelay: 10 * time.Millisecond,
	}
}

// testLogger returns a logger that discards output
func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// testClient returns an http.Client suitable for testing
func testClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
	}
}

// mockServer creates an httptest.Server that returns status codes in sequence.
// Returns the server and an atomic counter tracking request attempts.
func mockServer(t *testing.T, statusCodes []int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	attemptCount := &atomic.Int32{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		idx := int(attemptCount.Add(1)) - 1
		if idx >= len(statusCodes) {
			idx = len(statusCodes) - 1 // repeat last status
		}
		w.WriteHeader(statusCodes[idx])
	}))
	t.Cleanup(server.Close)
	return server, attemptCount
}

func TestFetchWithRetry_Success(t *testing.T) {
	server, attempts := mockServer(t, []int{http.StatusOK})

	fetcher := NewFetcher(testClient(), testConfig(3), testLogger())
	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)

	resp, err := fetcher.FetchWithRetry(req, context.Background())

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if resp == nil {
		t.Fatal("expected response, got nil")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
	if attempts.Load() != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts.Load())
	}
}

func TestFetchWithRetry_ServerError_RetrySuccess(t *testing.T) {
	// 500 → 500 → 200 (succeeds on 3rd attempt)
	server, attempts := mockServer(t, []int{500, 500, 200})

	fetcher := NewFetcher(testClient(), testConfig(3), testLogger())
	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)

	resp, err := fetcher.FetchWithRetry(req, context.Background())

	if err != nil {
		t.Fatalf("expected no error after retry, got: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
	if attempts.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts.Load())
	}
}

func TestFetchWithRetry_ServerError_AllRetriesFail(t *testing.T) {
	// 500 × 4 (initial + 3 retries = 4 attempts)
	server, attempts := mockServer(t, []int{500, 500, 500, 500})

	fetcher := NewFetcher(testClient(), testConfig(3), testLogger())
	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)

	resp, err := fetcher.FetchWithRetry(req, context.Background())

	if err == nil {
		t.Fatal("expected error after all retries failed")
	}
	if resp != nil {
		resp.Body.Close()
		t.Error("expected nil response when all retries fail")
	}
	if !errors.Is(err, utils.ErrRetryFailed) {
		t.Errorf("expected ErrRetryFailed, got: %v", err)
	}
	if !errors.Is(err, utils.ErrServerHTTPError) {
		t.Errorf("expected wrapped ErrServerHTTPError, got: %v", err)
	}
	if attempts.Load() != 4 {
		t.Errorf("expected 4 attempts (initial + 3 retries), got %d", attempts.Load())
	}
}

func TestFetchWithRetry_FlatDelayBetweenRetries(t *testing.T) {
	// The delay before every retry is the configured flat value, not a
	// growing backoff: three retries at 50ms should take ~150ms total
	server, attempts := mockServer(t, []int{500, 500, 500, 500})

	cfg := testConfig(3)
	cfg.RetryDelay = 50 * time.Millisecond

	fetcher := NewFetcher(testClient(), cfg, testLogger())
	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)

	start := time.Now()
	resp, err := fetcher.FetchWithRetry(req, context.Background())
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("expected error after all retries failed")
	}
	if resp != nil {
		resp.Body.Close()
	}
	if attempts.Load() != 4 {
		t.Errorf("expected 4 attempts, got %d", attempts.Load())
	}
	// Exponential backoff (50+100+200) would exceed 350ms
	if elapsed < 150*time.Millisecond {
		t.Errorf("retries finished too quickly (%v), expected >=150ms of flat delays", elapsed)
	}
	if elapsed > 300*time.Millisecond {
		t.Errorf("retries took %v, flat 50ms delays should stay well under 300ms", elapsed)
	}
}

func TestFetchWithRetry_RateLimit_RetrySuccess(t *testing.T) {
	// 429 → 200 (succeeds on 2nd attempt)
	server, attempts := mockServer(t, []int{429, 200})

	fetcher := NewFetcher(testClient(), testConfig(3), testLogger())
	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)

	resp, err := fetcher.FetchWithRetry(req, context.Background())

	if err != nil {
		t.Fatalf("expected no error after retry, got: %v", err)
	}
	defer resp.Body.Close()

	if attempts.Load() != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts.Load())
	}
}

func TestFetchWithRetry_ClientError_NoRetry(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
	}{
		{"404 Not Found", http.StatusNotFound},
		{"403 Forbidden", http.StatusForbidden},
		{"400 Bad Request", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, attempts := mockServer(t, []int{tt.statusCode})

			fetcher := NewFetcher(testClient(), testConfig(3), testLogger())
			req, _ := http.NewRequest(http.MethodGet, server.URL, nil)

			resp, err := fetcher.FetchWithRetry(req, context.Background())

			// 4xx errors return both response AND error (caller may need response)
			if err == nil {
				t.Fatal("expected error for 4xx status")
			}
			if !errors.Is(err, utils.ErrClientHTTPError) {
				t.Errorf("expected ErrClientHTTPError, got: %v", err)
			}
			if resp == nil {
				t.Fatal("expected response for 4xx (caller may need to inspect)")
			}
			defer resp.Body.Close()

			// No retry for 4xx (except 429)
			if attempts.Load() != 1 {
				t.Errorf("expected 1 attempt (no retry for 4xx), got %d", attempts.Load())
			}
		})
	}
}

func TestFetchWithRetry_ContextCancelled_BeforeAttempt(t *testing.T) {
	server, attempts := mockServer(t, []int{200})

	fetcher := NewFetcher(testClient(), testConfig(3), testLogger())
	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp, err := fetcher.FetchWithRetry(req, ctx)

	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got: %v", err)
	}
	if resp != nil {
		resp.Body.Close()
		t.Error("expected nil response for cancelled context")
	}
	if attempts.Load() != 0 {
		t.Errorf("expected 0 attempts (cancelled before first attempt), got %d", attempts.Load())
	}
}

func TestFetchWithRetry_ZeroRetries(t *testing.T) {
	// With maxRetries=0, only the initial attempt should be made
	server, attempts := mockServer(t, []int{500})

	fetcher := NewFetcher(testClient(), testConfig(0), testLogger())
	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)

	resp, err := fetcher.FetchWithRetry(req, context.Background())

	if err == nil {
		t.Fatal("expected error with no retries")
	}
	if resp != nil {
		resp.Body.Close()
	}
	if !errors.Is(err, utils.ErrRetryFailed) {
		t.Errorf("expected ErrRetryFailed, got: %v", err)
	}
	if attempts.Load() != 1 {
		t.Errorf("expected 1 attempt (no retries), got %d", attempts.Load())
	}
}

func TestFetchBody_ReadsBodyAndContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte("symbol,weight\nINFY,10.5\n"))
	}))
	t.Cleanup(server.Close)

	fetcher := NewFetcher(testClient(), testConfig(0), testLogger())
	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)

	body, contentType, err := fetcher.FetchBody(req, context.Background())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if string(body) != "symbol,weight\nINFY,10.5\n" {
		t.Errorf("unexpected body: %q", body)
	}
	if contentType != "text/csv" {
		t.Errorf("expected content type text/csv, got %q", contentType)
	}
}

func TestBrowserRequest_Headers(t *testing.T) {
	req, err := BrowserRequest(context.Background(), "https://www.niftyindices.com/indices/equity/sectoral-indices/nifty-it", "test-agent", ExpectHTML)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if got := req.Header.Get("User-Agent"); got != "test-agent" {
		t.Errorf("expected User-Agent 'test-agent', got %q", got)
	}
	if got := req.Header.Get("Accept"); got == "" || got[:9] != "text/html" {
		t.Errorf("expected HTML Accept header, got %q", got)
	}

	binReq, err := BrowserRequest(context.Background(), "https://www.niftyindices.com/IndexConstituent/ind_niftyitlist.csv", "test-agent", ExpectBinary)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if got := binReq.Header.Get("Accept"); got == "" || got[:8] != "text/csv" {
		t.Errorf("expected CSV Accept header, got %q", got)
	}
}
