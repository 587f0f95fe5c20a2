package glean

import (
	"net/http"

	"github.com/gleanhq/glean/pkg/metrics"
	"github.com/gleanhq/glean/pkg/preprocess"
	"github.com/gleanhq/glean/pkg/retry"
)

type config struct {
	httpClient *http.Client
	observer   metrics.Observer
	monitor    *metrics.Monitor
	policy     *retry.Policy
	estimator  preprocess.TokenEstimator
}

func defaultConfig() config {
	return config{
		monitor: metrics.NewMonitor(),
	}
}

// Option configures New.
type Option func(*config)

// WithHTTPClient injects the transport for all provider traffic.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) { c.httpClient = client }
}

// WithObserver registers an observer for every provider call attempt.
func WithObserver(obs metrics.Observer) Option {
	return func(c *config) { c.observer = obs }
}

// WithMonitor replaces the internally created performance monitor, for
// sharing one aggregate across several Glean instances.
func WithMonitor(mon *metrics.Monitor) Option {
	return func(c *config) { c.monitor = mon }
}

// WithRetryPolicy overrides per-provider retry settings for all calls.
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *config) { c.policy = &p }
}

// WithTokenEstimator replaces the default ratio-based token estimator.
func WithTokenEstimator(est preprocess.TokenEstimator) Option {
	return func(c *config) { c.estimator = est }
}
