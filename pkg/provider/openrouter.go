package provider

import (
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/gleanhq/glean/pkg/fault"
)

const openRouterEndpoint = "https://openrouter.ai/api/v1"

// newOpenRouter builds an OpenAI-compatible client pointed at
// OpenRouter. Attribution headers identify the app per their API docs.
func newOpenRouter(cfg Config, client *http.Client) (*openaiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fault.New(fault.KindConfiguration, "openrouter: API key required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = openRouterEndpoint
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(endpoint),
		option.WithHTTPClient(client),
		option.WithMaxRetries(0),
		option.WithHeader("HTTP-Referer", "https://github.com/gleanhq/glean"),
		option.WithHeader("X-Title", "glean"),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	return &openaiProvider{
		client: openai.NewClient(opts...),
		name:   "openrouter",
		model:  cfg.DefaultModel,
	}, nil
}
