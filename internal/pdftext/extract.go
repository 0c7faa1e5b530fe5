// Package pdftext pulls plain text out of uploaded PDF documents.
package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

// ErrFetch marks an unreachable or non-OK upstream URL so handlers can
// answer 400 instead of 500.
var ErrFetch = errors.New("failed to fetch PDF file")

var multiNewline = regexp.MustCompile(`\n{3,}`)

type Extractor struct {
	client *http.Client
}

func NewExtractor() *Extractor {
	return &Extractor{client: &http.Client{Timeout: 30 * time.Second}}
}

// ExtractFromURL fetches the document at pdfURL and returns its text.
func (e *Extractor) ExtractFromURL(ctx context.Context, pdfURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d", ErrFetch, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	return Extract(data)
}

// Extract parses the PDF bytes page by page. Text items on a page are
// joined with single spaces, pages are separated by a blank line.
// Image-only pages simply contribute no text.
func Extract(data []byte) (text string, err error) {
	// The pdf package panics on some malformed documents.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}

	var full strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		items := page.Content().Text
		parts := make([]string, 0, len(items))
		for _, item := range items {
			parts = append(parts, item.S)
		}
		full.WriteString(strings.Join(parts, " "))
		full.WriteString("\n\n")
	}
	return Normalize(full.String()), nil
}

// Normalize collapses runs of 3+ newlines to exactly two and trims
// surrounding whitespace.
func Normalize(s string) string {
	return strings.TrimSpace(multiNewline.ReplaceAllString(s, "\n\n"))
}
