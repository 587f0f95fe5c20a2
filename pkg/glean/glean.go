// Package glean is the top-level entry point: configure providers once,
// then extract structured records from content.
package glean

import (
	"context"
	"runtime/debug"

	"github.com/gleanhq/glean/pkg/extract"
	"github.com/gleanhq/glean/pkg/metrics"
	"github.com/gleanhq/glean/pkg/provider"
)

// Version returns the module version consumers pulled via go get, or
// "(devel)" when built from source.
func Version() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.Main.Version
	}
	return "(unknown)"
}

// Glean wires a provider registry, an extraction engine, and a monitor
// behind one handle. Safe for concurrent use.
type Glean struct {
	registry *provider.Registry
	engine   *extract.Engine
	monitor  *metrics.Monitor
}

// New builds a Glean from provider configurations.
func New(configs []provider.Config, opts ...Option) (*Glean, error) {
	registry, err := provider.NewRegistry(configs)
	if err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	engineOpts := []extract.EngineOption{
		extract.WithMonitor(cfg.monitor),
	}
	if cfg.httpClient != nil {
		engineOpts = append(engineOpts, extract.WithHTTPClient(cfg.httpClient))
	}
	if cfg.observer != nil {
		engineOpts = append(engineOpts, extract.WithObserver(cfg.observer))
	}
	if cfg.policy != nil {
		engineOpts = append(engineOpts, extract.WithRetryPolicy(*cfg.policy))
	}
	if cfg.estimator != nil {
		engineOpts = append(engineOpts, extract.WithTokenEstimator(cfg.estimator))
	}

	return &Glean{
		registry: registry,
		engine:   extract.NewEngine(registry, engineOpts...),
		monitor:  cfg.monitor,
	}, nil
}

// NewFromFile builds a Glean from a YAML provider config file.
func NewFromFile(path string, opts ...Option) (*Glean, error) {
	configs, err := provider.LoadConfigs(path)
	if err != nil {
		return nil, err
	}
	return New(configs, opts...)
}

// Extract runs one extraction through the engine.
func (g *Glean) Extract(ctx context.Context, req extract.Request) (*extract.Result, error) {
	return g.engine.Extract(ctx, req)
}

// Engine exposes the underlying strategy, mainly for composing variants.
func (g *Glean) Engine() *extract.Engine {
	return g.engine
}

// Product returns a strategy specialized for product listings.
func (g *Glean) Product() *extract.Variant {
	return extract.NewProductVariant(g.engine)
}

// Article returns a strategy specialized for articles.
func (g *Glean) Article() *extract.Variant {
	return extract.NewArticleVariant(g.engine)
}

// Providers lists configured provider names in order.
func (g *Glean) Providers() []string {
	return g.registry.Providers()
}

// Models lists the configured model allow-list for a provider.
func (g *Glean) Models(name string) ([]string, error) {
	return g.registry.Models(name)
}

// Monitor returns the aggregate performance monitor.
func (g *Glean) Monitor() *metrics.Monitor {
	return g.monitor
}
