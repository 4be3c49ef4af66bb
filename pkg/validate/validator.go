package validate

import (
	"bytes"
	"fmt"
	"strings"

	"index-scraper/pkg/utils"
)

// The site answers some bad download URLs with a styled error page and
// status 200, so a successful fetch proves nothing. Validation decides
// whether the bytes are a genuine data file before anything touches disk.

// HTML document markers sniffed at the start of the body (after whitespace)
var htmlMarkers = [][]byte{
	[]byte("<!doctype html"),
	[]byte("<html"),
	[]byte("<head"),
	[]byte("<body"),
}

// Download checks that the fetched bytes are a plausible data file.
// contentType is the response's Content-Type header; ext is the extension of
// the resolved URL (e.g. "csv"). Returns nil when the download looks genuine
func Download(body []byte, contentType, ext string) error {
	if len(body) == 0 {
		return utils.ErrEmptyDownload
	}

	ct := strings.ToLower(strings.TrimSpace(contentType))
	if strings.HasPrefix(ct, "text/html") {
		return fmt.Errorf("%w: content type '%s' for expected .%s file", utils.ErrHTMLMasquerade, contentType, ext)
	}

	if sniffsAsHTML(body) {
		return fmt.Errorf("%w: body begins with an HTML document marker", utils.ErrHTMLMasquerade)
	}

	return nil
}

// sniffsAsHTML reports whether the body starts with an HTML document marker,
// ignoring leading whitespace and a UTF-8 BOM
func sniffsAsHTML(body []byte) bool {
	head := bytes.TrimPrefix(body, []byte("\xef\xbb\xbf"))
	head = bytes.TrimLeft(head, " \t\r\n")
	if len(head) > 512 {
		head = head[:512]
	}
	lower := bytes.ToLower(head)
	for _, marker := range htmlMarkers {
		if bytes.HasPrefix(lower, marker) {
			return true
		}
	}
	return false
}
