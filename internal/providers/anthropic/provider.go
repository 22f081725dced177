package anthropic

import (
	"context"
	"errors"
	"net/http"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"

	"github.com/afterus/afterus-backend/internal/config"
	"github.com/afterus/afterus-backend/internal/providers"
)

const defaultModel = "claude-3-5-haiku-latest"

// Provider implements the Anthropic provider on the official SDK
type Provider struct {
	name        string
	model       string
	temperature float32
	maxTokens   int
	client      anthropicsdk.Client
}

// NewProvider creates a new Anthropic provider
func NewProvider(name string, cfg config.AIConfig) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("Anthropic API key is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	}

	model := cfg.Model
	if model == "" || strings.HasPrefix(model, "gpt-") {
		model = defaultModel
	}

	return &Provider{
		name:        name,
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		client:      anthropicsdk.NewClient(opts...),
	}, nil
}

// Name returns the provider name
func (p *Provider) Name() string {
	return p.name
}

// Complete performs a non-streaming completion
func (p *Provider) Complete(ctx context.Context, req providers.CompletionRequest) (*providers.CompletionResponse, error) {
	msg, err := p.client.Messages.New(ctx, p.buildParams(req))
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	for _, block := range msg.Content {
		text.WriteString(block.Text)
	}
	if strings.TrimSpace(text.String()) == "" {
		return nil, providers.ErrEmptyCompletion
	}

	in, out := int(msg.Usage.InputTokens), int(msg.Usage.OutputTokens)
	return &providers.CompletionResponse{
		Content:      text.String(),
		Model:        string(msg.Model),
		FinishReason: string(msg.StopReason),
		Usage: providers.Usage{
			PromptTokens:     in,
			CompletionTokens: out,
			TotalTokens:      in + out,
		},
	}, nil
}

func (p *Provider) buildParams(req providers.CompletionRequest) anthropicsdk.MessageNewParams {
	messages := make([]anthropicsdk.MessageParam, 0, len(req.Messages))
	for _, m := range req.Messages {
		block := anthropicsdk.NewTextBlock(m.Content)
		if m.Role == providers.RoleAssistant {
			messages = append(messages, anthropicsdk.NewAssistantMessage(block))
		} else {
			messages = append(messages, anthropicsdk.NewUserMessage(block))
		}
	}

	model := p.model
	if req.Model != "" {
		model = req.Model
	}
	maxTokens := p.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	temperature := p.temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	params := anthropicsdk.MessageNewParams{
		Model:       anthropicsdk.Model(model),
		MaxTokens:   int64(maxTokens),
		Messages:    messages,
		Temperature: param.NewOpt(float64(temperature)),
	}
	if req.System != "" {
		params.System = []anthropicsdk.TextBlockParam{{Text: req.System}}
	}
	return params
}
