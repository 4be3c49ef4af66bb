package fetch

import (
	"context"
	"fmt"
	"net/http"

	"index-scraper/pkg/utils"
)

// Expect declares what kind of response body the caller wants; it only
// changes the Accept header sent to the server
type Expect string

const (
	ExpectHTML   Expect = "html"   // Fetching an index page
	ExpectBinary Expect = "binary" // Fetching a constituent data file
)

// BrowserRequest builds a GET request carrying the header set of a desktop
// browser. The target site returns stripped-down or blocked responses to
// clients that look like scripts
func BrowserRequest(ctx context.Context, rawURL, userAgent string, expect Expect) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrRequestCreation, err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "none")
	req.Header.Set("Cache-Control", "max-age=0")

	switch expect {
	case ExpectBinary:
		req.Header.Set("Accept", "text/csv,application/vnd.ms-excel,application/octet-stream,*/*;q=0.8")
	default:
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	}

	return req, nil
}
