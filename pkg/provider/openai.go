package provider

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/gleanhq/glean/pkg/fault"
)

// openaiProvider uses the official SDK with response_format for
// structured output.
type openaiProvider struct {
	client openai.Client
	name   string
	model  string
}

func newOpenAI(cfg Config, client *http.Client) (*openaiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fault.New(fault.KindConfiguration, "openai: API key required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(client),
		option.WithMaxRetries(0),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	return &openaiProvider{
		client: openai.NewClient(opts...),
		name:   "openai",
		model:  cfg.DefaultModel,
	}, nil
}

func (p *openaiProvider) Execute(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		case RoleUser:
			messages = append(messages, openai.UserMessage(msg.Content))
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		}
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(p.model),
		Messages:    messages,
		MaxTokens:   openai.Int(int64(maxTokens)),
		Temperature: openai.Float(req.Temperature),
	}

	if req.JSONSchema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "extraction_record",
					Schema: req.JSONSchema,
				},
			},
		}
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, classifyOpenAI(p.name, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fault.Newf(fault.KindParsing, "%s: response had no choices", p.name)
	}

	return &Response{
		Content:      resp.Choices[0].Message.Content,
		FinishReason: string(resp.Choices[0].FinishReason),
		Usage: Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
		},
		Model:    resp.Model,
		Duration: time.Since(start),
	}, nil
}

func classifyOpenAI(name string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return fault.FromStatus(apiErr.StatusCode, name+" request rejected", err)
	}
	return fault.Wrap(fault.KindConnection, name+" request failed", err)
}

func (p *openaiProvider) Name() string { return p.name }

func (p *openaiProvider) Model() string { return p.model }

var _ Provider = (*openaiProvider)(nil)
