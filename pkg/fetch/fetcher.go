package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"index-scraper/pkg/config"
	"index-scraper/pkg/utils"
)

// Fetcher handles making HTTP requests with configured retry logic, using an underlying http.Client
type Fetcher struct {
	client *http.Client      // The configured HTTP client to use for requests
	cfg    *config.AppConfig // Application config, needed primarily for retry settings
	log    *logrus.Logger
}

// NewFetcher creates a new Fetcher instance
func NewFetcher(client *http.Client, cfg *config.AppConfig, log *logrus.Logger) *Fetcher {
	return &Fetcher{
		client: client,
		cfg:    cfg,
		log:    log,
	}
}

// FetchWithRetry performs an HTTP request associated with the provided context.
// Transient failures (network errors, 5xx, 429) are retried up to MaxRetries
// times with a flat RetryDelay between attempts. The delay is deliberately
// flat, not exponential: the target is a single well-provisioned site and the
// whole pipeline is sequential, so ramping delays only slows recovery
func (f *Fetcher) FetchWithRetry(req *http.Request, ctx context.Context) (*http.Response, error) {
	var lastErr error              // Error from the *last* failed attempt in the loop
	var currentResp *http.Response // Response from the *current* attempt (potentially failed)

	reqLog := f.log.WithField("url", req.URL.String())

	maxRetries := f.cfg.MaxRetries
	retryDelay := f.cfg.RetryDelay

	// Retry loop: try up to maxRetries+1 times (initial attempt + retries)
	for attempt := 0; attempt <= maxRetries; attempt++ {

		// Check if the context has been cancelled before making the attempt
		select {
		case <-ctx.Done():
			reqLog.Warnf("Context cancelled before attempt %d: %v", attempt, ctx.Err())
			if lastErr != nil {
				return nil, fmt.Errorf("context cancelled (%v) during retry after error: %w", ctx.Err(), lastErr)
			}
			return nil, fmt.Errorf("context cancelled before first attempt: %w", ctx.Err())
		default:
		}

		// Flat delay before each retry attempt (not before the first attempt)
		if attempt > 0 {
			reqLog.WithFields(logrus.Fields{"attempt": attempt, "max_retries": maxRetries, "delay": retryDelay}).Warn("Retrying request...")

			select {
			case <-time.After(retryDelay):
				// Delay completed normally
			case <-ctx.Done():
				reqLog.Warnf("Context cancelled during retry delay: %v", ctx.Err())
				if lastErr != nil {
					return nil, fmt.Errorf("context cancelled (%v) during retry delay after error: %w", ctx.Err(), lastErr)
				}
				return nil, fmt.Errorf("context cancelled during retry delay: %w", ctx.Err())
			}
		}

		// Perform the HTTP request with the current context attached
		reqWithCtx := req.WithContext(ctx)
		currentResp, lastErr = f.client.Do(reqWithCtx)

		// --- Network-Level Errors ---
		// Errors occurring before getting an HTTP response (DNS, TCP, TLS errors etc.)
		if lastErr != nil {
			// Context cancellation/timeout during the HTTP call itself is not retried
			if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
				reqLog.Warnf("Context cancelled/timed out during HTTP request execution: %v", lastErr)
				if currentResp != nil {
					io.Copy(io.Discard, currentResp.Body)
					currentResp.Body.Close()
				}
				return nil, lastErr
			}

			reqLog.WithField("attempt", attempt).Errorf("Network error: %v", lastErr)
			if currentResp != nil {
				io.Copy(io.Discard, currentResp.Body)
				currentResp.Body.Close()
			}
			continue // Retry network errors
		}

		// --- HTTP Status Codes ---
		statusCode := currentResp.StatusCode
		resLog := reqLog.WithFields(logrus.Fields{"status_code": statusCode, "status": currentResp.Status, "attempt": attempt})

		switch {
		case statusCode >= 200 && statusCode < 300:
			// Success. Caller must close body
			resLog.Debug("Successfully fetched")
			return currentResp, nil

		case statusCode >= 500:
			// Server errors are potentially transient, retry
			resLog.Warn("Server error, retrying...")
			lastErr = fmt.Errorf("%w: status %d %s", utils.ErrServerHTTPError, statusCode, currentResp.Status)
			io.Copy(io.Discard, currentResp.Body)
			currentResp.Body.Close()
			continue

		case statusCode == http.StatusTooManyRequests:
			resLog.Warn("Received 429 Too Many Requests, retrying...")
			lastErr = fmt.Errorf("%w: status %d %s", utils.ErrClientHTTPError, statusCode, currentResp.Status)
			io.Copy(io.Discard, currentResp.Body)
			currentResp.Body.Close()
			continue

		case statusCode >= 400 && statusCode < 500:
			// Other client errors (404, 403, ...) are not retryable.
			// Return the response object along with the wrapped error;
			// caller MUST close currentResp.Body in this case
			resLog.Warn("Client error (4xx), not retrying")
			return currentResp, fmt.Errorf("%w: status %d %s", utils.ErrClientHTTPError, statusCode, currentResp.Status)

		default:
			// Other non-2xx statuses (e.g. 3xx when the redirect limit was hit).
			// Caller MUST close currentResp.Body in this case
			resLog.Warnf("Non-retryable/unexpected status: %d", statusCode)
			return currentResp, fmt.Errorf("%w: status %d %s", utils.ErrOtherHTTPError, statusCode, currentResp.Status)
		}
	}

	// All attempts (initial + retries) failed
	reqLog.Errorf("All %d fetch attempts failed. Last error: %v", maxRetries+1, lastErr)
	if currentResp != nil {
		io.Copy(io.Discard, currentResp.Body)
		currentResp.Body.Close()
	}

	if lastErr != nil {
		if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
			return nil, lastErr
		}
		return nil, fmt.Errorf("%w: %w", utils.ErrRetryFailed, lastErr)
	}

	// Theoretically unreachable when maxRetries >= 0
	return nil, utils.ErrRetryFailed
}

// FetchBody runs FetchWithRetry and reads the full response body.
// Returns the body bytes and the Content-Type header of the response
func (f *Fetcher) FetchBody(req *http.Request, ctx context.Context) ([]byte, string, error) {
	resp, err := f.FetchWithRetry(req, ctx)
	if err != nil {
		// 4xx responses come back alongside the error; drain and close them here
		if resp != nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}
		return nil, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", utils.ErrResponseBodyRead, err)
	}
	return body, resp.Header.Get("Content-Type"), nil
}
