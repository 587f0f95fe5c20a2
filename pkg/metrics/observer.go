package metrics

import (
	"context"
	"time"
)

// Observer receives a notification after every provider call, successful
// or failed, one per retry attempt. Implementations should be fast or
// dispatch to their own goroutines so they do not add to extraction
// latency.
type Observer interface {
	OnCall(ctx context.Context, event CallEvent)
}

// CallEvent describes a single provider call attempt.
type CallEvent struct {
	Provider string
	Model    string

	// Attempt is 1-based; retries increment it.
	Attempt int

	// PromptBytes is the size of the content portion of the prompt.
	PromptBytes int

	// Response fields, zero when the call failed before a response.
	InputTokens  int
	OutputTokens int
	FinishReason string

	Error     error
	Duration  time.Duration
	StartedAt time.Time
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, event CallEvent)

// OnCall implements Observer.
func (f ObserverFunc) OnCall(ctx context.Context, event CallEvent) {
	f(ctx, event)
}

// MultiObserver fans events out to several observers in order.
type MultiObserver struct {
	observers []Observer
}

// NewMultiObserver creates an observer that dispatches to all given
// observers.
func NewMultiObserver(observers ...Observer) *MultiObserver {
	return &MultiObserver{observers: observers}
}

// OnCall dispatches the event to every registered observer.
func (m *MultiObserver) OnCall(ctx context.Context, event CallEvent) {
	for _, obs := range m.observers {
		obs.OnCall(ctx, event)
	}
}

// Add registers another observer.
func (m *MultiObserver) Add(obs Observer) {
	m.observers = append(m.observers, obs)
}
