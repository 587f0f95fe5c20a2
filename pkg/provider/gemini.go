package provider

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/gleanhq/glean/pkg/fault"
)

// geminiProvider uses the Google GenAI SDK. Structured output is
// requested via the JSON response MIME type; the schema itself travels
// in the prompt.
type geminiProvider struct {
	apiKey     string
	model      string
	httpClient *http.Client

	once      sync.Once
	client    *genai.Client
	clientErr error
}

func newGemini(cfg Config, client *http.Client) (*geminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fault.New(fault.KindConfiguration, "gemini: API key required")
	}
	return &geminiProvider{
		apiKey:     cfg.APIKey,
		model:      cfg.DefaultModel,
		httpClient: client,
	}, nil
}

// init defers client construction to the first call so the constructor
// stays context-free.
func (p *geminiProvider) init(ctx context.Context) (*genai.Client, error) {
	p.once.Do(func() {
		p.client, p.clientErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:     p.apiKey,
			Backend:    genai.BackendGeminiAPI,
			HTTPClient: p.httpClient,
		})
	})
	if p.clientErr != nil {
		return nil, fault.Wrap(fault.KindConfiguration, "gemini client init", p.clientErr)
	}
	return p.client, nil
}

func (p *geminiProvider) Execute(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	client, err := p.init(ctx)
	if err != nil {
		return nil, err
	}

	config := &genai.GenerateContentConfig{}
	if req.Temperature > 0 {
		temp := float32(req.Temperature)
		config.Temperature = &temp
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.JSONSchema != nil {
		config.ResponseMIMEType = "application/json"
	}

	var contents []*genai.Content
	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleSystem:
			config.SystemInstruction = &genai.Content{
				Parts: []*genai.Part{{Text: msg.Content}},
			}
		case RoleUser:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		}
	}

	result, err := client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		return nil, classifyGemini(err)
	}
	if result == nil {
		return nil, fault.New(fault.KindParsing, "gemini returned nil result")
	}

	resp := &Response{
		Content:      result.Text(),
		FinishReason: "stop",
		Model:        p.model,
		Duration:     time.Since(start),
	}
	if len(result.Candidates) > 0 {
		resp.FinishReason = string(result.Candidates[0].FinishReason)
	}
	if result.UsageMetadata != nil {
		resp.Usage = Usage{
			InputTokens:  int(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int(result.UsageMetadata.CandidatesTokenCount),
		}
	}
	return resp, nil
}

func classifyGemini(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fault.FromStatus(apiErr.Code, "gemini request rejected", err)
	}
	return fault.Wrap(fault.KindConnection, "gemini request failed", err)
}

func (p *geminiProvider) Name() string { return "gemini" }

func (p *geminiProvider) Model() string { return p.model }

var _ Provider = (*geminiProvider)(nil)
