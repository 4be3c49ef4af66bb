package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"index-scraper/pkg/models"
	"index-scraper/pkg/utils"
)

// Column order of the summary CSV. The first four columns are the original
// report format; the rest are diagnostic extensions
var summaryHeader = []string{"category", "url", "success", "timestamp", "error", "file", "strategy", "sha256"}

// WriteSummary writes one CSV row per outcome to path, overwriting any
// previous summary
func WriteSummary(path string, outcomes []models.DownloadOutcome) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: creating summary file '%s': %v", utils.ErrFilesystem, path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(summaryHeader); err != nil {
		return fmt.Errorf("writing summary header: %w", err)
	}

	for _, outcome := range outcomes {
		row := []string{
			outcome.Target.Category,
			outcome.Target.PageURL,
			strconv.FormatBool(outcome.Success),
			outcome.Timestamp.Format(time.RFC3339),
			outcome.ErrorKind.String(),
			outcome.FilePath,
			outcome.Strategy,
			outcome.FileSHA256,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing summary row for '%s': %w", outcome.Target.PageURL, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
