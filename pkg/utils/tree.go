package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	indentPrefix    = "    "
	entryPrefix     = "├── "
	lastEntryPrefix = "└── "
	verticalLine    = "│   "
)

// GenerateAndSaveTreeStructure walks the download directory and writes a
// text-based tree of the files it contains to outputFilePath
func GenerateAndSaveTreeStructure(targetDir, outputFilePath string, log *logrus.Entry) error {
	if _, err := os.Stat(targetDir); os.IsNotExist(err) {
		return fmt.Errorf("target directory '%s' does not exist: %w", targetDir, err)
	} else if err != nil {
		return fmt.Errorf("error checking target directory '%s': %w", targetDir, err)
	}

	file, err := os.Create(outputFilePath)
	if err != nil {
		return fmt.Errorf("failed to create output file '%s': %w", outputFilePath, err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	defer writer.Flush()

	if _, err = fmt.Fprintf(writer, "Downloaded files under: %s\n\n", targetDir); err != nil {
		return err
	}
	if _, err = fmt.Fprintf(writer, "%s/\n", filepath.Base(targetDir)); err != nil {
		return err
	}

	if err = walkDirRecursive(writer, targetDir, "", log); err != nil {
		log.Errorf("Error occurred during recursive walk for '%s': %v", targetDir, err)
		return fmt.Errorf("error generating tree structure for '%s': %w", targetDir, err)
	}
	return nil
}

// walkDirRecursive performs the recursive directory walk and writes entries
func walkDirRecursive(writer io.Writer, dirPath string, currentIndent string, log *logrus.Entry) error {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		log.Warnf("Failed to read directory '%s': %v", dirPath, err)
		return fmt.Errorf("failed to read directory '%s': %w", dirPath, err)
	}

	// Directories first, then alphabetically
	slices.SortFunc(entries, func(a, b os.DirEntry) int {
		if a.IsDir() != b.IsDir() {
			if a.IsDir() {
				return -1
			}
			return 1
		}
		return strings.Compare(strings.ToLower(a.Name()), strings.ToLower(b.Name()))
	})

	for i, entry := range entries {
		isLast := i == len(entries)-1

		connector := entryPrefix
		if isLast {
			connector = lastEntryPrefix
		}

		if _, writeErr := fmt.Fprintf(writer, "%s%s%s\n", currentIndent, connector, entry.Name()); writeErr != nil {
			return writeErr
		}

		if entry.IsDir() {
			nextIndent := currentIndent + verticalLine
			if isLast {
				nextIndent = currentIndent + indentPrefix
			}
			if err := walkDirRecursive(writer, filepath.Join(dirPath, entry.Name()), nextIndent, log); err != nil {
				return err
			}
		}
	}
	return nil
}
