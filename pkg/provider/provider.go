// Package provider abstracts LLM backends behind a single completion
// interface. Every backend classifies its failures into the fault
// taxonomy so the retry controller can treat providers uniformly.
package provider

import (
	"context"
	"net/http"
	"time"

	"github.com/gleanhq/glean/pkg/fault"
)

// Role identifies a message sender.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat message.
type Message struct {
	Role    Role
	Content string
}

// Request is a completion request.
type Request struct {
	Messages    []Message
	MaxTokens   int
	Temperature float64

	// JSONSchema, when non-nil, asks the backend to constrain output to
	// the schema using whatever native mechanism it has. Backends without
	// one ignore it; the prompt carries the schema description regardless.
	JSONSchema map[string]any
}

// Usage tracks token consumption as reported by the backend.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Response is the result of a completion call.
type Response struct {
	Content      string
	FinishReason string
	Usage        Usage
	Model        string
	Duration     time.Duration
}

// Provider is the interface all backends implement. Execute errors are
// always classified (see pkg/fault).
type Provider interface {
	Execute(ctx context.Context, req Request) (*Response, error)
	Name() string
	Model() string
}

// New constructs a backend for the resolved config. The HTTP client is
// injected so callers control transport behavior; nil means
// http.DefaultClient. Unknown provider names are a configuration fault.
func New(cfg Config, client *http.Client) (Provider, error) {
	if client == nil {
		client = http.DefaultClient
	}
	switch cfg.Name {
	case "anthropic":
		return newAnthropic(cfg, client)
	case "openai":
		return newOpenAI(cfg, client)
	case "openrouter":
		return newOpenRouter(cfg, client)
	case "gemini":
		return newGemini(cfg, client)
	case "ollama":
		return newOllama(cfg, client)
	default:
		return nil, fault.Newf(fault.KindConfiguration, "unknown provider %q", cfg.Name)
	}
}
