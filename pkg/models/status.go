package models

// ErrorKind classifies why a scrape-and-download run failed
type ErrorKind string

const (
	ErrorKindNone             ErrorKind = ""                  // Zero value = no error (success)
	ErrorKindPageUnreachable  ErrorKind = "page_unreachable"  // Index page fetch failed after retries
	ErrorKindLinkNotFound     ErrorKind = "link_not_found"    // No resolver strategy matched
	ErrorKindDownloadFailed   ErrorKind = "download_failed"   // File fetch failed after retries
	ErrorKindInvalidFile      ErrorKind = "invalid_file"      // Downloaded bytes failed validation
	ErrorKindPersistFailed    ErrorKind = "persist_failed"    // Writing the validated file to disk failed
	ErrorKindRobotsDisallowed ErrorKind = "robots_disallowed" // Blocked by the site's robots.txt
)

// String implements fmt.Stringer for logging
func (k ErrorKind) String() string {
	if k == "" {
		return "none"
	}
	return string(k)
}

// IsValid returns true if the kind is a known failure value
func (k ErrorKind) IsValid() bool {
	switch k {
	case ErrorKindPageUnreachable, ErrorKindLinkNotFound, ErrorKindDownloadFailed,
		ErrorKindInvalidFile, ErrorKindPersistFailed, ErrorKindRobotsDisallowed:
		return true
	}
	return false
}
