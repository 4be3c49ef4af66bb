package models

import "time"

// IndexTarget identifies a single index page to scrape.
// Category groups targets for output directories and reporting (e.g. "Sectoral Indices")
type IndexTarget struct {
	Category string
	PageURL  string
}

// ResolvedLink is the output of the link resolver: the absolute URL of the
// constituent file and the name of the strategy that found it
type ResolvedLink struct {
	URL      string
	Strategy string
}

// DownloadOutcome records the result of one scrape-and-download run for a target.
// Exactly one outcome is produced per target; the batch layer aggregates them
type DownloadOutcome struct {
	Target       IndexTarget
	Success      bool
	FilePath     string    // Path of the written file (on success)
	ErrorKind    ErrorKind // Failure classification (on failure)
	ErrorDetail  string    // Human-readable detail (on failure)
	Strategy     string    // Resolver strategy that produced the link (if any)
	FileSHA256   string    // Hex digest of the written file (on success)
	BytesWritten int64     // Size of the written file (on success)
	Timestamp    time.Time // When the outcome was produced
}
