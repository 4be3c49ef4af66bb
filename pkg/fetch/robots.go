package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"
	"github.com/temoto/robotstxt"
)

// RobotsHandler fetches, parses, caches, and checks robots.txt data.
// The pipeline is sequential, so a plain map suffices as the cache
type RobotsHandler struct {
	fetcher     *Fetcher
	rateLimiter *RateLimiter
	robotsCache map[string]*robotstxt.RobotsData // hostname -> parsed data (nil = unobtainable)
	userAgent   string
	log         *logrus.Entry
}

// NewRobotsHandler creates a RobotsHandler
func NewRobotsHandler(fetcher *Fetcher, rateLimiter *RateLimiter, userAgent string, log *logrus.Entry) *RobotsHandler {
	return &RobotsHandler{
		fetcher:     fetcher,
		rateLimiter: rateLimiter,
		robotsCache: make(map[string]*robotstxt.RobotsData),
		userAgent:   userAgent,
		log:         log,
	}
}

// getRobotsData retrieves robots.txt data for the targetURL's host, using cache or fetching.
// Returns parsed data or nil on any error/4xx/missing file
func (rh *RobotsHandler) getRobotsData(ctx context.Context, targetURL *url.URL) *robotstxt.RobotsData {
	host := targetURL.Hostname()
	if robotsData, found := rh.robotsCache[host]; found {
		return robotsData // Cached data (could be nil)
	}

	robotsURL := &url.URL{Scheme: targetURL.Scheme, Host: targetURL.Host, Path: "/robots.txt"}
	if targetURL.Scheme != "http" && targetURL.Scheme != "https" {
		rh.log.Warnf("Invalid scheme '%s', defaulting to https for robots.txt", targetURL.Scheme)
		robotsURL.Scheme = "https"
	}
	robotsLog := rh.log.WithFields(logrus.Fields{"host": host, "robots_url": robotsURL.String()})
	robotsLog.Info("Fetching robots.txt...") // Log only on cache miss

	rh.rateLimiter.ApplyDelay(ctx, host, 0)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL.String(), nil)
	if err != nil {
		robotsLog.Errorf("Error creating request: %v", err)
		rh.robotsCache[host] = nil
		return nil
	}
	req.Header.Set("User-Agent", rh.userAgent)

	resp, fetchErr := rh.fetcher.FetchWithRetry(req, ctx)
	rh.rateLimiter.UpdateLastRequestTime(host)

	if fetchErr != nil {
		if resp != nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}
		robotsLog.Warnf("Fetching robots.txt failed: %v", fetchErr)
		rh.robotsCache[host] = nil
		return nil
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		robotsLog.Errorf("Error reading body: %v", err)
		rh.robotsCache[host] = nil
		return nil
	}

	data, err := robotstxt.FromBytes(bodyBytes)
	if err != nil {
		robotsLog.Errorf("Error parsing content: %v", err)
		rh.robotsCache[host] = nil
		return nil
	}

	robotsLog.Info("Successfully fetched and parsed robots.txt")
	rh.robotsCache[host] = data
	return data
}

// TestAgent checks if the configured user agent is allowed to access targetURL.
// Returns true if allowed (or when robots data could not be obtained)
func (rh *RobotsHandler) TestAgent(ctx context.Context, targetURL *url.URL) bool {
	robotsData := rh.getRobotsData(ctx, targetURL)

	// Assume allowed if robots data could not be obtained (4xx, 5xx, network error, parse error)
	if robotsData == nil {
		return true
	}

	return robotsData.TestAgent(targetURL.RequestURI(), rh.userAgent)
}
