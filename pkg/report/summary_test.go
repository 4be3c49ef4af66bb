package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"index-scraper/pkg/models"
)

func TestWriteSummary(t *testing.T) {
	ts := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	outcomes := []models.DownloadOutcome{
		{
			Target:     models.IndexTarget{Category: "Sectoral Indices", PageURL: "https://www.niftyindices.com/indices/nifty-it"},
			Success:    true,
			FilePath:   "downloads/sectoral_indices/nifty-it_constituents.csv",
			Strategy:   "anchor_text",
			FileSHA256: "abc123",
			Timestamp:  ts,
		},
		{
			Target:      models.IndexTarget{Category: "Thematic Indices", PageURL: "https://www.niftyindices.com/indices/nifty-cpse"},
			Success:     false,
			ErrorKind:   models.ErrorKindDownloadFailed,
			ErrorDetail: "status 404",
			Strategy:    "known_pattern",
			Timestamp:   ts,
		},
	}

	path := filepath.Join(t.TempDir(), "scraping_summary.csv")
	require.NoError(t, WriteSummary(path, outcomes))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"category", "url", "success", "timestamp", "error", "file", "strategy", "sha256"}, rows[0])

	assert.Equal(t, []string{
		"Sectoral Indices",
		"https://www.niftyindices.com/indices/nifty-it",
		"true",
		"2025-06-15T10:30:00Z",
		"none",
		"downloads/sectoral_indices/nifty-it_constituents.csv",
		"anchor_text",
		"abc123",
	}, rows[1])

	assert.Equal(t, "false", rows[2][2])
	assert.Equal(t, "download_failed", rows[2][4])
	assert.Equal(t, "", rows[2][5], "failed outcome has no file path")
}

func TestWriteSummary_EmptyOutcomes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scraping_summary.csv")
	require.NoError(t, WriteSummary(path, nil))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1, "header only")
}

func TestWriteSummary_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scraping_summary.csv")
	outcome := models.DownloadOutcome{
		Target:    models.IndexTarget{Category: "Sectoral Indices", PageURL: "https://example.com/a"},
		Success:   true,
		Timestamp: time.Now(),
	}

	require.NoError(t, WriteSummary(path, []models.DownloadOutcome{outcome, outcome}))
	require.NoError(t, WriteSummary(path, []models.DownloadOutcome{outcome}))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 2, "second write replaces the first")
}

func TestWriteSummary_BadPath(t *testing.T) {
	err := WriteSummary(filepath.Join(t.TempDir(), "missing-dir", "summary.csv"), nil)
	assert.Error(t, err)
}
