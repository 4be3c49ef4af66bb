package resolve

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"index-scraper/pkg/models"
)

// The target site's markup shifts without notice. Resolution runs an ordered
// cascade of independent heuristics, from most specific to most speculative,
// and stops at the first hit: later strategies are never consulted once one
// succeeds. Finding nothing is a normal outcome, not an error.

// strategyFunc inspects a parsed page and returns a candidate href
// (possibly relative), or "" when the strategy finds nothing
type strategyFunc func(doc *goquery.Document, pageURL *url.URL) string

type namedStrategy struct {
	name string
	fn   strategyFunc
}

// Resolver locates the constituent-file download URL on a rendered index page
type Resolver struct {
	strategies []namedStrategy
	log        *logrus.Logger
}

// NewResolver creates a Resolver with the five strategies in priority order
func NewResolver(log *logrus.Logger) *Resolver {
	return &Resolver{
		strategies: []namedStrategy{
			{name: StrategyAnchorText, fn: strategyAnchorText},
			{name: StrategyDownloadSection, fn: strategyDownloadSection},
			{name: StrategyDataAttribute, fn: strategyDataAttribute},
			{name: StrategyInlineScript, fn: strategyInlineScript},
			{name: StrategyKnownPattern, fn: strategyKnownPattern},
		},
		log: log,
	}
}

// Resolve runs the strategy cascade over the parsed page and returns the first
// resolved absolute URL. The second return value is false when no strategy
// matched
func (r *Resolver) Resolve(doc *goquery.Document, pageURL *url.URL) (models.ResolvedLink, bool) {
	resLog := r.log.WithField("page_url", pageURL.String())

	for _, strat := range r.strategies {
		href := strat.fn(doc, pageURL)
		if href == "" {
			resLog.Debugf("Strategy '%s' found nothing", strat.name)
			continue
		}

		absolute, err := absolutize(pageURL, href)
		if err != nil {
			resLog.Warnf("Strategy '%s' produced unparseable href '%s': %v", strat.name, href, err)
			continue
		}

		if strat.name == StrategyKnownPattern {
			// Speculative: the URL was constructed, not observed on the page.
			// The orchestrator validates it live at download time
			resLog.WithField("strategy", strat.name).Warnf("Falling back to constructed URL: %s", absolute)
		} else {
			resLog.WithField("strategy", strat.name).Infof("Resolved constituent link: %s", absolute)
		}

		return models.ResolvedLink{URL: absolute, Strategy: strat.name}, true
	}

	resLog.Debug("No strategy matched")
	return models.ResolvedLink{}, false
}

// absolutize joins a possibly-relative href against the page URL
func absolutize(pageURL *url.URL, href string) (string, error) {
	resolved, err := pageURL.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", err
	}
	return resolved.String(), nil
}
