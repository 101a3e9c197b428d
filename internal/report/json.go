package report

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONWriter writes the crawl result in the same shape the API returns.
type JSONWriter struct {
	output io.Writer
	indent string
}

type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint indents nested values by two spaces.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = "  "
	}
}

func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{output: output}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *JSONWriter) Write(r *Report) error {
	encoder := json.NewEncoder(w.output)
	encoder.SetEscapeHTML(false)
	if w.indent != "" {
		encoder.SetIndent("", w.indent)
	}
	if err := encoder.Encode(r.Result); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}
