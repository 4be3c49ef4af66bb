package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"index-scraper/pkg/utils"
)

func TestDownload_AcceptsGenuineFiles(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		ext         string
	}{
		{"plain csv", "Company Name,Industry,Symbol\nInfosys Ltd.,IT,INFY\n", "text/csv", "csv"},
		{"csv with charset", "symbol,weight\nTCS,12.1\n", "text/csv; charset=utf-8", "csv"},
		{"octet-stream xlsx", "PK\x03\x04binarydata", "application/octet-stream", "xlsx"},
		{"missing content type", "symbol,weight\nINFY,10.5\n", "", "csv"},
		{"csv cell mentioning html", "note\nsee <html> docs for markup\n", "text/csv", "csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, Download([]byte(tt.body), tt.contentType, tt.ext))
		})
	}
}

func TestDownload_EmptyBody(t *testing.T) {
	err := Download(nil, "text/csv", "csv")
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrEmptyDownload)

	err = Download([]byte{}, "text/csv", "csv")
	assert.ErrorIs(t, err, utils.ErrEmptyDownload)
}

func TestDownload_HTMLContentType(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
	}{
		{"bare text/html", "text/html"},
		{"with charset", "text/html; charset=utf-8"},
		{"mixed case", "Text/HTML"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Download([]byte("symbol,weight\n"), tt.contentType, "csv")
			require.Error(t, err)
			assert.ErrorIs(t, err, utils.ErrHTMLMasquerade)
		})
	}
}

func TestDownload_HTMLBodySniffing(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"doctype", "<!DOCTYPE html>\n<html><body>404</body></html>"},
		{"html tag", "<html lang=\"en\"><head></head></html>"},
		{"leading whitespace", "\n\t  <html><body>error</body></html>"},
		{"utf-8 BOM", "\xef\xbb\xbf<!doctype html><html></html>"},
		{"uppercase markers", "<HTML><BODY>Page not found</BODY></HTML>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Content-Type lies on these, only the sniff catches them
			err := Download([]byte(tt.body), "text/csv", "csv")
			require.Error(t, err)
			assert.ErrorIs(t, err, utils.ErrHTMLMasquerade)
		})
	}
}

func TestDownload_MarkerBeyondSniffWindowAccepted(t *testing.T) {
	// Only the first 512 bytes are sniffed; HTML-looking text later in a
	// legitimate file must not trigger a false positive
	body := strings.Repeat("a,b,c\n", 100) + "<html>"
	assert.NoError(t, Download([]byte(body), "text/csv", "csv"))
}
