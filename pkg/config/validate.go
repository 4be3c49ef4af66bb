package config

import (
	"fmt"
	"net/url"
	"time"

	"index-scraper/pkg/utils"
)

// Default desktop browser user agent; the target site serves its full markup
// to mainstream browsers only
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Validate checks AppConfig fields and applies sensible defaults.
// Returns collected warnings and any fatal error.
// Modifies receiver in place to apply defaults.
func (c *AppConfig) Validate() (warnings []string, err error) {
	// Categories are the only strictly required input
	if len(c.Categories) == 0 {
		return nil, fmt.Errorf("%w: no categories configured", utils.ErrConfigValidation)
	}
	total := 0
	for category, urls := range c.Categories {
		if category == "" {
			return nil, fmt.Errorf("%w: empty category name", utils.ErrConfigValidation)
		}
		for _, rawURL := range urls {
			if _, parseErr := url.ParseRequestURI(rawURL); parseErr != nil {
				return nil, fmt.Errorf("%w: category '%s' has invalid URL '%s': %v",
					utils.ErrConfigValidation, category, rawURL, parseErr)
			}
		}
		total += len(urls)
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: categories contain no URLs", utils.ErrConfigValidation)
	}

	// DownloadDir
	if c.DownloadDir == "" {
		warnings = append(warnings, "download_dir is empty, defaulting to './downloads'")
		c.DownloadDir = "./downloads"
	}

	// UserAgent
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}

	// RequestDelay
	if c.RequestDelay < 0 {
		warnings = append(warnings, "request_delay cannot be negative, setting to 0")
		c.RequestDelay = 0
	}
	if c.RequestDelay == 0 {
		warnings = append(warnings, "request_delay not set, defaulting to 2s")
		c.RequestDelay = 2 * time.Second
	}

	// MaxRetries: 0 means unset and takes the default; a negative value
	// explicitly disables retries
	if c.MaxRetries < 0 {
		warnings = append(warnings, "max_retries is negative, disabling retries")
		c.MaxRetries = 0
	} else if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}

	// RetryDelay (only meaningful when retries are enabled)
	if c.MaxRetries > 0 && c.RetryDelay <= 0 {
		c.RetryDelay = 5 * time.Second
	}

	// SummaryFilename
	if c.CreateSummary && c.SummaryFilename == "" {
		warnings = append(warnings,
			"'create_summary' is true but 'summary_filename' is empty. Defaulting to 'scraping_summary.csv'")
		c.SummaryFilename = "scraping_summary.csv"
	}

	// HTTPClientSettings defaults
	c.validateHTTPClientSettings()

	return warnings, nil
}

// validateHTTPClientSettings applies defaults to HTTP client settings.
func (c *AppConfig) validateHTTPClientSettings() {
	h := &c.HTTPClientSettings
	if h.Timeout <= 0 {
		h.Timeout = 30 * time.Second
	}
	if h.MaxIdleConns <= 0 {
		h.MaxIdleConns = 10
	}
	if h.MaxIdleConnsPerHost <= 0 {
		h.MaxIdleConnsPerHost = 2
	}
	if h.IdleConnTimeout <= 0 {
		h.IdleConnTimeout = 90 * time.Second
	}
	if h.TLSHandshakeTimeout <= 0 {
		h.TLSHandshakeTimeout = 10 * time.Second
	}
	if h.ExpectContinueTimeout <= 0 {
		h.ExpectContinueTimeout = 1 * time.Second
	}
	if h.DialerTimeout <= 0 {
		h.DialerTimeout = 15 * time.Second
	}
	if h.DialerKeepAlive <= 0 {
		h.DialerKeepAlive = 30 * time.Second
	}
}
