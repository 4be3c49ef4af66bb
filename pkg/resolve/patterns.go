package resolve

import (
	"fmt"
	"strings"
)

// urlTemplate pairs a printf-style path template with the slug transform it
// expects. Observed patterns are data, not control flow: tolerating the next
// markup change should only require appending a row here
type urlTemplate struct {
	format        string
	slugTransform func(string) string
}

func slugVerbatim(slug string) string  { return slug }
func slugCompacted(slug string) string { return strings.ReplaceAll(slug, "-", "") }

// URL templates observed on the site, most reliable first.
// The canonical pattern is /IndexConstituent/ind_<name>list.csv
var knownURLTemplates = []urlTemplate{
	{format: "/IndexConstituent/ind_%slist.csv", slugTransform: slugVerbatim},
	{format: "/IndexConstituent/ind_%slist.csv", slugTransform: slugCompacted},
	{format: "/IndexConstituent/ind_%s_list.csv", slugTransform: slugVerbatim},
}

// CandidateURLs expands the template table for the given index slug,
// preserving template order and dropping duplicates
func CandidateURLs(slug string) []string {
	if slug == "" {
		return nil
	}
	seen := make(map[string]struct{}, len(knownURLTemplates))
	var candidates []string
	for _, tmpl := range knownURLTemplates {
		candidate := fmt.Sprintf(tmpl.format, tmpl.slugTransform(slug))
		if _, dup := seen[candidate]; dup {
			continue
		}
		seen[candidate] = struct{}{}
		candidates = append(candidates, candidate)
	}
	return candidates
}
