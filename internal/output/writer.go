// Package output serializes extraction results to JSON, JSONL, or YAML.
package output

import (
	"fmt"
	"io"
)

// Format selects the output encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// Writer serializes records to an underlying stream. JSONL and YAML
// writers stream each record as it arrives; the JSON writer buffers
// until Flush so a run of records becomes one array.
type Writer interface {
	Write(record any) error
	WriteAll(records []any) error
	Flush() error
	Close() error
}

// WriterOption configures a writer.
type WriterOption func(*writerConfig)

type writerConfig struct {
	compact bool
	indent  string
}

// WithCompact disables pretty-printing for JSON output.
func WithCompact() WriterOption {
	return func(c *writerConfig) {
		c.compact = true
	}
}

// WithIndent sets the JSON indentation string.
func WithIndent(indent string) WriterOption {
	return func(c *writerConfig) {
		c.indent = indent
	}
}

// NewWriter returns a Writer for the given format.
func NewWriter(w io.Writer, format Format, opts ...WriterOption) (Writer, error) {
	cfg := writerConfig{indent: "  "}
	for _, opt := range opts {
		opt(&cfg)
	}

	switch format {
	case FormatJSON:
		return newJSONWriter(w, cfg), nil
	case FormatJSONL:
		return newJSONLWriter(w), nil
	case FormatYAML:
		return newYAMLWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}
