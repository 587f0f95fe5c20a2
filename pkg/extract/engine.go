package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gleanhq/glean/internal/logger"
	"github.com/gleanhq/glean/pkg/fault"
	"github.com/gleanhq/glean/pkg/metrics"
	"github.com/gleanhq/glean/pkg/preprocess"
	"github.com/gleanhq/glean/pkg/provider"
	"github.com/gleanhq/glean/pkg/retry"
)

const (
	defaultTemperature = 0.1
	defaultMaxTokens   = 4096
)

// Engine is the standard extraction strategy. It is safe for concurrent
// use once constructed.
type Engine struct {
	registry  *provider.Registry
	cleaner   *preprocess.Cleaner
	client    *http.Client
	observer  metrics.Observer
	monitor   *metrics.Monitor
	policy    *retry.Policy
	estimator preprocess.TokenEstimator
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithHTTPClient injects the transport used for every provider call.
func WithHTTPClient(client *http.Client) EngineOption {
	return func(e *Engine) { e.client = client }
}

// WithObserver registers an observer notified after every provider call
// attempt.
func WithObserver(obs metrics.Observer) EngineOption {
	return func(e *Engine) { e.observer = obs }
}

// WithMonitor records every extraction's performance sample into mon.
func WithMonitor(mon *metrics.Monitor) EngineOption {
	return func(e *Engine) { e.monitor = mon }
}

// WithRetryPolicy overrides the retry policy derived from provider
// config for all requests.
func WithRetryPolicy(p retry.Policy) EngineOption {
	return func(e *Engine) { e.policy = &p }
}

// WithTokenEstimator replaces the ratio-based estimator, for callers
// with a real tokenizer.
func WithTokenEstimator(est preprocess.TokenEstimator) EngineOption {
	return func(e *Engine) { e.estimator = est }
}

// NewEngine builds an engine over the given provider registry.
func NewEngine(registry *provider.Registry, opts ...EngineOption) *Engine {
	e := &Engine{
		registry: registry,
		cleaner:  preprocess.NewCleaner(),
		client:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract runs the full pipeline. Provider call failures are retried
// per policy; parsing and validation failures are not, since resending
// the same prompt is what retries do and these faults are about the
// response we already have. On error the returned Result still carries
// provenance and the performance sample.
func (e *Engine) Extract(ctx context.Context, req Request) (*Result, error) {
	startedAt := time.Now()

	if len(req.Schema.Fields) == 0 {
		return nil, fault.New(fault.KindConfiguration, "request has no schema fields")
	}

	name := req.Provider
	if name == "" {
		name = e.registry.Default()
	}
	cfg, err := e.registry.Resolve(name, req.Model)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Provenance: Provenance{
			Source:    req.Source,
			Provider:  cfg.Name,
			Model:     cfg.DefaultModel,
			StartedAt: startedAt,
		},
	}

	// Preprocess. The token budget comes from the resolved provider, so
	// this happens after resolution.
	est := e.estimator
	if est == nil {
		est = preprocess.RatioEstimator(cfg.TokenRatio)
	}
	kind := req.Kind
	if kind == "" {
		kind = preprocess.KindMarkup
	}
	cleaned := e.cleaner.Clean(req.Content, kind, req.Source)
	bounded, truncated := preprocess.Bound(cleaned, cfg.TokenBudget, est)
	result.Provenance.Truncated = truncated
	result.Performance.ContentBytesIn = len(req.Content)
	result.Performance.ContentBytesOut = len(bounded)

	if truncated {
		logger.Debug("extract: content truncated to token budget",
			"source", req.Source, "budget", cfg.TokenBudget,
			"bytes_in", len(req.Content), "bytes_out", len(bounded))
	}

	backend, err := provider.New(cfg, e.client)
	if err != nil {
		return e.fail(result, startedAt, err)
	}

	provReq := provider.Request{
		Messages: []provider.Message{
			{Role: provider.RoleSystem, Content: SystemPrompt},
			{Role: provider.RoleUser, Content: BuildPrompt(bounded, req.Schema, req.Instruction)},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if provReq.MaxTokens == 0 {
		provReq.MaxTokens = defaultMaxTokens
	}
	if provReq.Temperature == 0 {
		provReq.Temperature = defaultTemperature
	}
	if cfg.SupportsJSONMode {
		provReq.JSONSchema = req.Schema.ToJSONSchema()
	}

	resp, stats, err := retry.Do(ctx, e.retryPolicy(cfg),
		func(ctx context.Context, attempt int) (*provider.Response, error) {
			attemptStart := time.Now()
			resp, err := backend.Execute(ctx, provReq)
			if resp != nil {
				// Failed attempts that reached the backend still cost
				// tokens; keep every attempt in the sample.
				result.Performance.InputTokens += resp.Usage.InputTokens
				result.Performance.OutputTokens += resp.Usage.OutputTokens
			}
			e.notify(ctx, cfg, attempt, len(bounded), resp, err, attemptStart)
			return resp, err
		})
	result.Performance.Attempts = stats.Attempts
	result.Performance.Backoff = stats.Backoff
	if err != nil {
		return e.fail(result, startedAt, err)
	}
	result.Raw = resp.Content
	if resp.Model != "" {
		result.Provenance.Model = resp.Model
	}

	// Parsing and validation happen once, outside the retry loop.
	var parsed map[string]any
	body := StripMarkdownCodeBlock(resp.Content)
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return e.fail(result, startedAt,
			fault.Wrap(fault.KindParsing, "model response is not a JSON object", err))
	}

	applied, err := req.Schema.Apply(parsed)
	if err != nil {
		return e.fail(result, startedAt, err)
	}

	result.Data = applied.Data
	result.Confidence = applied.Confidence
	result.Defaulted = applied.Defaulted
	result.Coerced = applied.Coerced
	result.Performance.Elapsed = time.Since(startedAt)
	e.monitor.Record(result.Performance, false)

	logger.Debug("extract: complete",
		"source", req.Source, "provider", cfg.Name, "model", result.Provenance.Model,
		"attempts", result.Performance.Attempts, "confidence", result.Confidence)
	return result, nil
}

// fail finalizes the sample on a partial result so failures still feed
// the monitor.
func (e *Engine) fail(result *Result, startedAt time.Time, err error) (*Result, error) {
	if result.Performance.Attempts == 0 {
		result.Performance.Attempts = 1
	}
	result.Performance.Elapsed = time.Since(startedAt)
	e.monitor.Record(result.Performance, true)
	return result, err
}

// retryPolicy derives the per-request policy from provider config,
// unless an engine-wide override is set. MaxRetries bounds total
// attempts.
func (e *Engine) retryPolicy(cfg provider.Config) retry.Policy {
	if e.policy != nil {
		return *e.policy
	}
	p := retry.DefaultPolicy()
	p.MaxAttempts = cfg.MaxRetries
	p.BaseDelay = cfg.BaseBackoff
	return p
}

func (e *Engine) notify(ctx context.Context, cfg provider.Config, attempt, promptBytes int,
	resp *provider.Response, err error, startedAt time.Time) {
	if e.observer == nil {
		return
	}
	event := metrics.CallEvent{
		Provider:    cfg.Name,
		Model:       cfg.DefaultModel,
		Attempt:     attempt,
		PromptBytes: promptBytes,
		Error:       err,
		Duration:    time.Since(startedAt),
		StartedAt:   startedAt,
	}
	if resp != nil {
		event.InputTokens = resp.Usage.InputTokens
		event.OutputTokens = resp.Usage.OutputTokens
		event.FinishReason = resp.FinishReason
	}
	e.observer.OnCall(ctx, event)
}

var _ Strategy = (*Engine)(nil)
