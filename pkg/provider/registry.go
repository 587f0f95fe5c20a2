package provider

import (
	"slices"

	"github.com/gleanhq/glean/pkg/fault"
)

// Registry holds the configured backends. It is immutable after
// construction and safe for concurrent use.
type Registry struct {
	order   []string
	configs map[string]Config
}

// NewRegistry builds a registry from the given configs, preserving their
// order. Duplicate provider names and invalid configs are rejected.
func NewRegistry(configs []Config) (*Registry, error) {
	if len(configs) == 0 {
		return nil, fault.New(fault.KindConfiguration, "no providers configured")
	}

	r := &Registry{
		order:   make([]string, 0, len(configs)),
		configs: make(map[string]Config, len(configs)),
	}
	for _, cfg := range configs {
		cfg = cfg.WithDefaults()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.configs[cfg.Name]; dup {
			return nil, fault.Newf(fault.KindConfiguration, "provider %q configured twice", cfg.Name)
		}
		r.order = append(r.order, cfg.Name)
		r.configs[cfg.Name] = cfg
	}
	return r, nil
}

// Resolve returns the config for a provider, with the model overridden
// when model is non-empty. The returned config is a copy; the registry
// is never mutated. Unknown providers and models not in the provider's
// allow-list are configuration faults.
func (r *Registry) Resolve(name, model string) (Config, error) {
	cfg, ok := r.configs[name]
	if !ok {
		return Config{}, fault.Newf(fault.KindConfiguration, "unknown provider %q", name)
	}
	if model != "" {
		if len(cfg.Models) > 0 && !slices.Contains(cfg.Models, model) {
			return Config{}, fault.Newf(fault.KindConfiguration,
				"provider %q has no model %q", name, model)
		}
		cfg.DefaultModel = model
	}
	return cfg, nil
}

// Providers returns provider names in configuration order.
func (r *Registry) Providers() []string {
	return slices.Clone(r.order)
}

// Models returns the configured model allow-list for a provider. An
// empty slice with nil error means the provider accepts any model name.
func (r *Registry) Models(name string) ([]string, error) {
	cfg, ok := r.configs[name]
	if !ok {
		return nil, fault.Newf(fault.KindConfiguration, "unknown provider %q", name)
	}
	return slices.Clone(cfg.Models), nil
}

// Default returns the first configured provider's name.
func (r *Registry) Default() string {
	return r.order[0]
}
