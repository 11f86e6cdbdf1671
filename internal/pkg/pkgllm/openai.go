package pkgllm

import (
	"context"

	"github.com/sashabaranov/go-openai"
)

// OpenAI calls the chat completions API (or any compatible endpoint set
// through Options.BaseURL).
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates an OpenAI client authenticated with opts.APIKey.
func NewOpenAI(opts Options) (*OpenAI, error) {
	if err := requireKey(ProviderOpenAI, opts.APIKey); err != nil {
		return nil, err
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}

	model := opts.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAI{client: openai.NewClientWithConfig(cfg), model: model}, nil
}

func (o *OpenAI) Name() string  { return ProviderOpenAI }
func (o *OpenAI) Model() string { return o.model }

func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		}},
	})
	if err != nil {
		return "", providerErr(ProviderOpenAI, err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}

	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAI) Close() error { return nil }
