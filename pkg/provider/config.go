package provider

import (
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gleanhq/glean/pkg/fault"
)

// AuthScheme describes how the API key is presented to the backend.
type AuthScheme string

const (
	// AuthBearer sends "Authorization: Bearer <key>".
	AuthBearer AuthScheme = "bearer"
	// AuthHeader sends the key in a provider-specific header (x-api-key).
	AuthHeader AuthScheme = "header"
	// AuthNone is for unauthenticated backends such as local Ollama.
	AuthNone AuthScheme = "none"
)

// Config describes one configured backend. The zero value is not usable;
// apply WithDefaults before handing it to New.
type Config struct {
	Name         string     `yaml:"name"`
	Endpoint     string     `yaml:"endpoint,omitempty"`
	AuthScheme   AuthScheme `yaml:"auth_scheme,omitempty"`
	APIKey       string     `yaml:"api_key,omitempty"`
	DefaultModel string     `yaml:"default_model"`

	// Models, when non-empty, is the allow-list of models resolvable for
	// this provider. Empty means any model name passes through.
	Models []string `yaml:"models,omitempty"`

	// SupportsJSONMode gates whether the backend receives the JSON schema
	// natively or relies on prompt instructions alone.
	SupportsJSONMode bool `yaml:"supports_json_mode"`

	Timeout time.Duration `yaml:"-"`

	// MaxRetries bounds total attempts including the first one.
	MaxRetries  int           `yaml:"max_retries,omitempty"`
	BaseBackoff time.Duration `yaml:"-"`

	// TokenBudget caps the estimated token count of content sent to the
	// backend; preprocessing truncates to honor it.
	TokenBudget int `yaml:"token_budget,omitempty"`

	// TokenRatio is the characters-per-token divisor used by the default
	// estimator for this backend. 0 means the package default.
	TokenRatio int `yaml:"token_ratio,omitempty"`
}

// Defaults applied by WithDefaults.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultBaseBackoff = 500 * time.Millisecond
	DefaultTokenBudget = 8000
)

// WithDefaults fills unset operational fields.
func (c Config) WithDefaults() Config {
	if c.AuthScheme == "" {
		if c.Name == "ollama" {
			c.AuthScheme = AuthNone
		} else {
			c.AuthScheme = AuthBearer
		}
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = DefaultBaseBackoff
	}
	if c.TokenBudget <= 0 {
		c.TokenBudget = DefaultTokenBudget
	}
	return c
}

// Validate reports configuration faults a backend constructor would hit.
func (c Config) Validate() error {
	if c.Name == "" {
		return fault.New(fault.KindConfiguration, "provider name required")
	}
	if c.DefaultModel == "" {
		return fault.Newf(fault.KindConfiguration, "provider %q: default model required", c.Name)
	}
	if len(c.Models) > 0 && !slices.Contains(c.Models, c.DefaultModel) {
		return fault.Newf(fault.KindConfiguration,
			"provider %q: default model %q not in configured model list", c.Name, c.DefaultModel)
	}
	return nil
}

// UnmarshalYAML decodes a provider mapping, accepting durations in
// time.ParseDuration form ("120s", "1m30s").
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	type alias Config
	aux := struct {
		*alias      `yaml:",inline"`
		Timeout     string `yaml:"timeout,omitempty"`
		BaseBackoff string `yaml:"base_backoff,omitempty"`
	}{alias: (*alias)(c)}
	if err := node.Decode(&aux); err != nil {
		return err
	}
	if aux.Timeout != "" {
		d, err := time.ParseDuration(aux.Timeout)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		c.Timeout = d
	}
	if aux.BaseBackoff != "" {
		d, err := time.ParseDuration(aux.BaseBackoff)
		if err != nil {
			return fmt.Errorf("base_backoff: %w", err)
		}
		c.BaseBackoff = d
	}
	return nil
}

// LoadConfigs reads provider configurations from a YAML file of the form:
//
//	providers:
//	  - name: anthropic
//	    default_model: claude-sonnet-4-20250514
//	    api_key: ${ANTHROPIC_API_KEY}
//
// ${VAR} references are expanded from the environment.
func LoadConfigs(path string) ([]Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fault.Wrap(fault.KindConfiguration, fmt.Sprintf("reading %s", path), err)
	}
	return ParseConfigs(data)
}

// ParseConfigs parses YAML provider configurations.
func ParseConfigs(data []byte) ([]Config, error) {
	expanded := os.Expand(string(data), func(key string) string {
		return os.Getenv(key)
	})

	var file struct {
		Providers []Config `yaml:"providers"`
	}
	if err := yaml.Unmarshal([]byte(expanded), &file); err != nil {
		return nil, fault.Wrap(fault.KindConfiguration, "parsing provider config", err)
	}
	if len(file.Providers) == 0 {
		return nil, fault.New(fault.KindConfiguration, "no providers configured")
	}

	configs := make([]Config, 0, len(file.Providers))
	for _, cfg := range file.Providers {
		cfg = cfg.WithDefaults()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}
