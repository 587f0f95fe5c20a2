package metrics

import (
	"sync/atomic"
	"time"
)

// Monitor aggregates extraction samples across goroutines. The zero
// value is ready to use; all methods are safe for concurrent callers.
type Monitor struct {
	extractions  atomic.Int64
	failures     atomic.Int64
	attempts     atomic.Int64
	elapsedNanos atomic.Int64
	backoffNanos atomic.Int64
	bytesIn      atomic.Int64
	bytesOut     atomic.Int64
	inputTokens  atomic.Int64
	outputTokens atomic.Int64
}

// NewMonitor returns an empty monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// Record folds a completed extraction into the aggregate. Failed
// extractions still contribute their attempts, elapsed time, and any
// token usage accumulated before the failure.
func (m *Monitor) Record(sample PerformanceSample, failed bool) {
	if m == nil {
		return
	}
	m.extractions.Add(1)
	if failed {
		m.failures.Add(1)
	}
	m.attempts.Add(int64(sample.Attempts))
	m.elapsedNanos.Add(int64(sample.Elapsed))
	m.backoffNanos.Add(int64(sample.Backoff))
	m.bytesIn.Add(int64(sample.ContentBytesIn))
	m.bytesOut.Add(int64(sample.ContentBytesOut))
	m.inputTokens.Add(int64(sample.InputTokens))
	m.outputTokens.Add(int64(sample.OutputTokens))
}

// Snapshot is a point-in-time copy of the aggregate counters.
type Snapshot struct {
	Extractions     int64
	Failures        int64
	Attempts        int64
	Elapsed         time.Duration
	Backoff         time.Duration
	ContentBytesIn  int64
	ContentBytesOut int64
	InputTokens     int64
	OutputTokens    int64
}

// SuccessRate returns the fraction of extractions that succeeded, or 0
// when nothing has been recorded.
func (s Snapshot) SuccessRate() float64 {
	if s.Extractions == 0 {
		return 0
	}
	return float64(s.Extractions-s.Failures) / float64(s.Extractions)
}

// MeanAttempts returns the average attempts per extraction, or 0 when
// nothing has been recorded.
func (s Snapshot) MeanAttempts() float64 {
	if s.Extractions == 0 {
		return 0
	}
	return float64(s.Attempts) / float64(s.Extractions)
}

// Snapshot returns a copy of the current counters. Individual counters
// are read atomically; the snapshot as a whole is not a transaction.
func (m *Monitor) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return Snapshot{
		Extractions:     m.extractions.Load(),
		Failures:        m.failures.Load(),
		Attempts:        m.attempts.Load(),
		Elapsed:         time.Duration(m.elapsedNanos.Load()),
		Backoff:         time.Duration(m.backoffNanos.Load()),
		ContentBytesIn:  m.bytesIn.Load(),
		ContentBytesOut: m.bytesOut.Load(),
		InputTokens:     m.inputTokens.Load(),
		OutputTokens:    m.outputTokens.Load(),
	}
}

// Reset zeroes all counters.
func (m *Monitor) Reset() {
	if m == nil {
		return
	}
	m.extractions.Store(0)
	m.failures.Store(0)
	m.attempts.Store(0)
	m.elapsedNanos.Store(0)
	m.backoffNanos.Store(0)
	m.bytesIn.Store(0)
	m.bytesOut.Store(0)
	m.inputTokens.Store(0)
	m.outputTokens.Store(0)
}
