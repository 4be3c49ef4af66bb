package scrape

import (
	"context"
	"net/url"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"index-scraper/pkg/config"
	"index-scraper/pkg/fetch"
	"index-scraper/pkg/models"
	"index-scraper/pkg/parse"
	"index-scraper/pkg/utils"
)

// BatchRunner processes all configured targets one at a time with a mandatory
// inter-request delay. Sequential execution is a politeness constraint toward
// the target server, not an incidental limitation. One target's failure never
// aborts the batch
type BatchRunner struct {
	cfg         *config.AppConfig
	scraper     *Scraper
	rateLimiter *fetch.RateLimiter
	robots      *fetch.RobotsHandler // nil when robots.txt checking is disabled
	log         *logrus.Logger
}

// NewBatchRunner creates a BatchRunner. Pass a nil robots handler to skip
// robots.txt checks
func NewBatchRunner(cfg *config.AppConfig, scraper *Scraper, rateLimiter *fetch.RateLimiter, robots *fetch.RobotsHandler, log *logrus.Logger) *BatchRunner {
	return &BatchRunner{
		cfg:         cfg,
		scraper:     scraper,
		rateLimiter: rateLimiter,
		robots:      robots,
		log:         log,
	}
}

// Run processes every configured category sequentially and returns one
// outcome per target. Cancellation via ctx stops cleanly after the current
// target
func (b *BatchRunner) Run(ctx context.Context) []models.DownloadOutcome {
	runLog := b.log.WithField("run_id", uuid.New().String())
	startTime := time.Now()

	// Stable category order for reproducible runs and reports
	categories := make([]string, 0, len(b.cfg.Categories))
	for category := range b.cfg.Categories {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var outcomes []models.DownloadOutcome
	seen := make(map[string]struct{}) // normalized page URL -> processed

	for _, category := range categories {
		urls := b.cfg.Categories[category]
		catLog := runLog.WithField("category", category)
		catLog.Infof("Processing category with %d URL(s)", len(urls))

		for i, pageURL := range urls {
			if ctx.Err() != nil {
				runLog.Warnf("Batch cancelled: %v", ctx.Err())
				return outcomes
			}

			target := models.IndexTarget{Category: category, PageURL: pageURL}
			targetLog := catLog.WithFields(logrus.Fields{"url": pageURL, "progress": i + 1, "total": len(urls)})

			// Skip exact duplicates of already-processed targets
			normalized, parsedURL, err := parse.ParseAndNormalize(pageURL)
			if err == nil {
				if _, dup := seen[normalized]; dup {
					targetLog.Warn("Skipping duplicate target URL")
					continue
				}
				seen[normalized] = struct{}{}
			}

			if parsedURL != nil {
				if outcome, blocked := b.checkRobots(ctx, target, parsedURL, targetLog); blocked {
					outcomes = append(outcomes, outcome)
					continue
				}
				b.rateLimiter.ApplyDelay(ctx, parsedURL.Hostname(), b.cfg.RequestDelay)
			}

			outcome := b.scraper.ScrapeAndDownload(ctx, target)
			if parsedURL != nil {
				b.rateLimiter.UpdateLastRequestTime(parsedURL.Hostname())
			}
			outcomes = append(outcomes, outcome)

			if outcome.Success {
				targetLog.WithField("file", outcome.FilePath).Info("Target succeeded")
			} else {
				targetLog.WithFields(logrus.Fields{
					"error_kind": outcome.ErrorKind.String(), "detail": outcome.ErrorDetail,
				}).Error("Target failed")
			}
		}
	}

	b.logSummary(runLog, outcomes, time.Since(startTime))
	return outcomes
}

// checkRobots returns a robots_disallowed outcome when the target is blocked
func (b *BatchRunner) checkRobots(ctx context.Context, target models.IndexTarget, parsedURL *url.URL, targetLog *logrus.Entry) (models.DownloadOutcome, bool) {
	if b.robots == nil {
		return models.DownloadOutcome{}, false
	}
	if b.robots.TestAgent(ctx, parsedURL) {
		return models.DownloadOutcome{}, false
	}
	targetLog.WithField("error_category", utils.CategorizeError(utils.ErrRobotsDisallowed)).Warn("Target disallowed by robots.txt")
	return models.DownloadOutcome{
		Target:      target,
		Success:     false,
		ErrorKind:   models.ErrorKindRobotsDisallowed,
		ErrorDetail: utils.ErrRobotsDisallowed.Error(),
		Timestamp:   time.Now(),
	}, true
}

// logSummary reports final counts and lists the failed targets
func (b *BatchRunner) logSummary(runLog *logrus.Entry, outcomes []models.DownloadOutcome, duration time.Duration) {
	total := len(outcomes)
	successful := 0
	for _, o := range outcomes {
		if o.Success {
			successful++
		}
	}
	failed := total - successful

	summaryLog := runLog.WithFields(logrus.Fields{
		"total": total, "successful": successful, "failed": failed, "duration": duration.Round(time.Millisecond).String(),
	})
	if total == 0 {
		summaryLog.Warn("Batch finished with no targets processed")
		return
	}
	summaryLog.Infof("Batch finished: %d/%d succeeded (%.1f%%)", successful, total, float64(successful)/float64(total)*100)

	if failed > 0 {
		for _, o := range outcomes {
			if !o.Success {
				runLog.WithFields(logrus.Fields{
					"url": o.Target.PageURL, "error_kind": o.ErrorKind.String(),
				}).Warn("Failed target")
			}
		}
	}
}
