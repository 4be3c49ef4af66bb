package scrape

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"index-scraper/pkg/config"
	"index-scraper/pkg/fetch"
	"index-scraper/pkg/models"
	"index-scraper/pkg/parse"
	"index-scraper/pkg/resolve"
	"index-scraper/pkg/utils"
	"index-scraper/pkg/validate"
)

// Scraper runs the single-target pipeline:
// fetch page -> resolve link -> fetch file -> validate -> persist.
// Each call is single-pass; there are no loops back between states. Every
// failure is converted into a DownloadOutcome — nothing propagates to the
// batch layer as an error
type Scraper struct {
	cfg      *config.AppConfig
	fetcher  *fetch.Fetcher
	resolver *resolve.Resolver
	robots   *fetch.RobotsHandler // nil when robots.txt checking is disabled
	log      *logrus.Logger
}

// NewScraper creates a Scraper. Pass a nil robots handler to skip robots.txt
// checks on resolved file URLs
func NewScraper(cfg *config.AppConfig, fetcher *fetch.Fetcher, resolver *resolve.Resolver, robots *fetch.RobotsHandler, log *logrus.Logger) *Scraper {
	return &Scraper{
		cfg:      cfg,
		fetcher:  fetcher,
		resolver: resolver,
		robots:   robots,
		log:      log,
	}
}

// ScrapeAndDownload processes one index target end to end and reports the outcome
func (s *Scraper) ScrapeAndDownload(ctx context.Context, target models.IndexTarget) models.DownloadOutcome {
	taskLog := s.log.WithFields(logrus.Fields{"category": target.Category, "url": target.PageURL})

	pageURL, err := url.ParseRequestURI(target.PageURL)
	if err != nil {
		taskLog.Errorf("Invalid page URL: %v", err)
		return s.failure(target, models.ErrorKindPageUnreachable, "", fmt.Sprintf("invalid page URL: %v", err))
	}

	// --- FETCH_PAGE ---
	taskLog.WithField("state", "fetch_page").Info("Fetching index page")
	pageReq, err := fetch.BrowserRequest(ctx, pageURL.String(), s.cfg.UserAgent, fetch.ExpectHTML)
	if err != nil {
		return s.failure(target, models.ErrorKindPageUnreachable, "", err.Error())
	}
	pageBody, _, err := s.fetcher.FetchBody(pageReq, ctx)
	if err != nil {
		taskLog.WithField("error_category", utils.CategorizeError(err)).Errorf("Index page fetch failed: %v", err)
		return s.failure(target, models.ErrorKindPageUnreachable, "", err.Error())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(pageBody))
	if err != nil {
		taskLog.Errorf("Parsing index page HTML failed: %v", err)
		return s.failure(target, models.ErrorKindPageUnreachable, "", fmt.Sprintf("HTML parse error: %v", err))
	}

	// --- RESOLVE_LINK ---
	taskLog.WithField("state", "resolve_link").Info("Resolving constituent link")
	link, found := s.resolver.Resolve(doc, pageURL)
	if !found {
		taskLog.Error("No strategy resolved a constituent link")
		return s.failure(target, models.ErrorKindLinkNotFound, "", utils.ErrLinkNotFound.Error())
	}

	// The resolved file URL may live under a different path (or host) than the
	// page the batch layer already cleared, so it gets its own robots check
	if s.robots != nil {
		if fileURL, parseErr := url.Parse(link.URL); parseErr == nil && !s.robots.TestAgent(ctx, fileURL) {
			taskLog.WithFields(logrus.Fields{
				"file_url": link.URL, "error_category": utils.CategorizeError(utils.ErrRobotsDisallowed),
			}).Warn("Resolved file URL disallowed by robots.txt")
			return s.failure(target, models.ErrorKindRobotsDisallowed, link.Strategy, utils.ErrRobotsDisallowed.Error())
		}
	}

	// --- FETCH_FILE ---
	taskLog.WithFields(logrus.Fields{"state": "fetch_file", "strategy": link.Strategy, "file_url": link.URL}).Info("Downloading constituent file")
	fileReq, err := fetch.BrowserRequest(ctx, link.URL, s.cfg.UserAgent, fetch.ExpectBinary)
	if err != nil {
		return s.failure(target, models.ErrorKindDownloadFailed, link.Strategy, err.Error())
	}
	fileBody, contentType, err := s.fetcher.FetchBody(fileReq, ctx)
	if err != nil {
		taskLog.WithField("error_category", utils.CategorizeError(err)).Errorf("Constituent file download failed: %v", err)
		return s.failure(target, models.ErrorKindDownloadFailed, link.Strategy, err.Error())
	}

	// --- VALIDATE ---
	ext := fileExtension(link.URL)
	taskLog.WithFields(logrus.Fields{"state": "validate", "size_bytes": len(fileBody), "content_type": contentType}).Info("Validating download")
	if err := validate.Download(fileBody, contentType, ext); err != nil {
		taskLog.WithField("error_category", utils.CategorizeError(err)).Errorf("Downloaded content failed validation: %v", err)
		return s.failure(target, models.ErrorKindInvalidFile, link.Strategy, err.Error())
	}

	// --- PERSIST ---
	destPath := s.destinationPath(target, pageURL, ext)
	taskLog.WithFields(logrus.Fields{"state": "persist", "path": destPath}).Info("Writing constituent file")
	if err := writeFileAtomically(destPath, fileBody); err != nil {
		taskLog.Errorf("Persisting constituent file failed: %v", err)
		return s.failure(target, models.ErrorKindPersistFailed, link.Strategy, err.Error())
	}

	sha, err := utils.CalculateFileSHA256(destPath)
	if err != nil {
		// The file itself is fine; only the report digest is missing
		taskLog.Warnf("Could not hash written file: %v", err)
	}

	taskLog.WithFields(logrus.Fields{"path": destPath, "size_bytes": len(fileBody), "strategy": link.Strategy}).Info("Successfully downloaded constituent file")
	return models.DownloadOutcome{
		Target:       target,
		Success:      true,
		FilePath:     destPath,
		Strategy:     link.Strategy,
		FileSHA256:   sha,
		BytesWritten: int64(len(fileBody)),
		Timestamp:    time.Now(),
	}
}

// failure builds a failed outcome for the target
func (s *Scraper) failure(target models.IndexTarget, kind models.ErrorKind, strategy, detail string) models.DownloadOutcome {
	return models.DownloadOutcome{
		Target:      target,
		Success:     false,
		ErrorKind:   kind,
		ErrorDetail: detail,
		Strategy:    strategy,
		Timestamp:   time.Now(),
	}
}

// destinationPath builds {download_dir}/{category_slug}/{index_slug}_constituents.{ext}
func (s *Scraper) destinationPath(target models.IndexTarget, pageURL *url.URL, ext string) string {
	categorySlug := utils.CategorySlug(target.Category)
	indexSlug := utils.SanitizeFilename(parse.IndexSlug(pageURL))
	filename := fmt.Sprintf("%s_constituents.%s", indexSlug, ext)
	return filepath.Join(s.cfg.DownloadDir, categorySlug, filename)
}

// fileExtension extracts the data-file extension from the resolved URL,
// defaulting to csv when the URL has none the site is known to use
func fileExtension(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "csv"
	}
	switch ext := strings.ToLower(strings.TrimPrefix(path.Ext(parsed.Path), ".")); ext {
	case "csv", "xls", "xlsx":
		return ext
	}
	return "csv"
}

// writeFileAtomically writes bytes via a temp file and rename so a failed
// write never leaves a partial file at the destination. Re-running a
// successful scrape overwrites the same path
func writeFileAtomically(destPath string, data []byte) error {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating directory '%s': %v", utils.ErrFilesystem, dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(destPath)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: creating temp file in '%s': %v", utils.ErrFilesystem, dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: writing temp file '%s': %v", utils.ErrFilesystem, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: closing temp file '%s': %v", utils.ErrFilesystem, tmpName, err)
	}
	if err := os.Rename(tmpName, destPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: renaming '%s' to '%s': %v", utils.ErrFilesystem, tmpName, destPath, err)
	}
	return nil
}
