// Package metrics collects per-extraction performance samples and
// aggregates them into process-wide counters.
package metrics

import "time"

// PerformanceSample captures the cost of a single extraction, including
// failed ones. Byte counts measure preprocessing effect: ContentBytesIn
// is the raw source size, ContentBytesOut what was sent to the provider
// after cleaning and bounding.
type PerformanceSample struct {
	Elapsed         time.Duration
	Attempts        int
	Backoff         time.Duration
	ContentBytesIn  int
	ContentBytesOut int
	InputTokens     int
	OutputTokens    int
}

// TotalTokens returns combined prompt and completion token usage.
func (s PerformanceSample) TotalTokens() int {
	return s.InputTokens + s.OutputTokens
}
