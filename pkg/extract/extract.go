// Package extract runs the extraction pipeline: preprocess content,
// call a provider with retries, parse and validate the response.
package extract

import (
	"context"
	"time"

	"github.com/gleanhq/glean/pkg/metrics"
	"github.com/gleanhq/glean/pkg/preprocess"
	"github.com/gleanhq/glean/pkg/schema"
)

// Strategy is anything that can turn content into a structured record.
type Strategy interface {
	Extract(ctx context.Context, req Request) (*Result, error)
}

// Request describes one extraction.
type Request struct {
	// Source identifies where the content came from (usually a URL). It
	// feeds provenance and relative-link resolution during cleaning.
	Source string

	Content string

	// Kind controls preprocessing; empty is treated as markup.
	Kind preprocess.Kind

	// Instruction is extra natural-language guidance appended to the
	// prompt, on top of what the schema describes.
	Instruction string

	Schema schema.Schema

	// Provider selects a configured backend; empty means the first one.
	// Model overrides the backend's default model.
	Provider string
	Model    string

	// MaxTokens caps the completion length. Temperature defaults to a
	// low value suited to extraction when zero.
	MaxTokens   int
	Temperature float64
}

// Provenance records where a result came from and how it was produced.
type Provenance struct {
	Source    string
	Provider  string
	Model     string
	Truncated bool
	StartedAt time.Time
}

// Result is the outcome of an extraction. On failure the pipeline still
// returns a Result so callers get provenance and the performance sample
// for the attempts that were made.
type Result struct {
	// Data is the validated record; nil when extraction failed before
	// validation completed.
	Data map[string]any

	// Confidence is the fraction of required fields the model produced.
	Confidence float64

	// Defaulted and Coerced name fields the validator repaired.
	Defaulted []string
	Coerced   []string

	// Raw is the provider's response content before parsing.
	Raw string

	Provenance  Provenance
	Performance metrics.PerformanceSample
}
