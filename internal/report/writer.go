package report

import (
	"fmt"
	"io"
	"time"

	"catalog-scraper/internal/scraper"
)

const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Report is a finished crawl together with what was asked for.
type Report struct {
	Source      scraper.Source
	StartURL    string
	Pages       int
	FirstPage   int
	GeneratedAt time.Time
	Result      *scraper.CrawlResult
}

// Writer renders a report.
type Writer interface {
	Write(r *Report) error
}

// NewWriter returns the writer for format.
func NewWriter(format string, output io.Writer) (Writer, error) {
	switch format {
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	}
	return nil, fmt.Errorf("unsupported format %q (want %s or %s)", format, FormatJSON, FormatMarkdown)
}
