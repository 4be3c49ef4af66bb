package resolve

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"index-scraper/pkg/parse"
)

// Strategy names, recorded in ResolvedLink and the summary report
const (
	StrategyAnchorText      = "anchor_text"
	StrategyDownloadSection = "download_section"
	StrategyDataAttribute   = "data_attribute"
	StrategyInlineScript    = "inline_script"
	StrategyKnownPattern    = "known_pattern"
)

const keywordConstituent = "constituent"

// Extensions the site uses for constituent data files
var dataFileExtensions = []string{".csv", ".xls", ".xlsx"}

// Attributes sites hide download URLs in when the visible link is built by script
var dataURLAttributes = []string{"data-url", "data-href", "data-download", "data-file"}

// Quoted string literal ending in a data-file extension, inside script bodies
var scriptDataURLPattern = regexp.MustCompile(`["']([^"']+\.(?:csv|xls|xlsx))["']`)

// hasDataFileExtension reports whether the href's path ends in one of the
// known data-file extensions, ignoring any query string or fragment
func hasDataFileExtension(href string) bool {
	path := strings.ToLower(href)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	for _, ext := range dataFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// mentionsConstituent checks the keyword in either the anchor's visible text or its href
func mentionsConstituent(text, href string) bool {
	return strings.Contains(strings.ToLower(text), keywordConstituent) ||
		strings.Contains(strings.ToLower(href), keywordConstituent)
}

// Strategy 1: first anchor whose visible text or href mentions "constituent"
// and whose href ends in a data-file extension. Document order breaks ties
func strategyAnchorText(doc *goquery.Document, _ *url.URL) string {
	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if href == "" {
			return true
		}
		if mentionsConstituent(sel.Text(), href) && hasDataFileExtension(href) {
			found = href
			return false
		}
		return true
	})
	return found
}

var downloadSectionAttr = regexp.MustCompile(`(?i)download`)

// Strategy 2: anchors inside a container whose id or class matches the site's
// "download" naming conventions. Scoped to that subtree, the keyword alone is
// enough: the section context replaces the extension requirement, which is
// what lets this strategy catch links strategy 1 rejected
func strategyDownloadSection(doc *goquery.Document, _ *url.URL) string {
	var found string
	doc.Find("div, section").EachWithBreak(func(_ int, container *goquery.Selection) bool {
		id, _ := container.Attr("id")
		class, _ := container.Attr("class")
		if !downloadSectionAttr.MatchString(id) && !downloadSectionAttr.MatchString(class) {
			return true
		}
		container.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			href, _ := sel.Attr("href")
			if href == "" {
				return true
			}
			if mentionsConstituent(sel.Text(), href) {
				found = href
				return false
			}
			return true
		})
		return found == ""
	})
	return found
}

// Strategy 3: elements carrying the download URL in a data attribute.
// One scan in document order; an element earlier in the document wins
// regardless of which of the attributes it uses
func strategyDataAttribute(doc *goquery.Document, _ *url.URL) string {
	selector := "[" + strings.Join(dataURLAttributes, "], [") + "]"
	var found string
	doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		for _, attr := range dataURLAttributes {
			value, _ := sel.Attr(attr)
			if value != "" && hasDataFileExtension(value) {
				found = value
				return false
			}
		}
		return true
	})
	return found
}

// Strategy 4: data-file URLs embedded as string literals in inline scripts
func strategyInlineScript(doc *goquery.Document, _ *url.URL) string {
	var found string
	doc.Find("script").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		body := sel.Text()
		if body == "" {
			return true
		}
		if match := scriptDataURLPattern.FindStringSubmatch(body); match != nil {
			found = match[1]
			return false
		}
		return true
	})
	return found
}

// Strategy 5: construct a candidate from previously observed URL templates and
// the index slug parsed from the page URL. No probing happens here; a wrong
// guess surfaces as a download or validation failure in the orchestrator
func strategyKnownPattern(_ *goquery.Document, pageURL *url.URL) string {
	slug := parse.IndexSlug(pageURL)
	if slug == "unknown_index" {
		return ""
	}
	candidates := CandidateURLs(slug)
	if len(candidates) == 0 {
		return ""
	}
	return candidates[0]
}
