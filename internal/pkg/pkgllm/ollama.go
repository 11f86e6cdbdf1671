package pkgllm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	ollama "github.com/ollama/ollama/api"
)

const (
	defaultOllamaHost  = "http://localhost:11434"
	defaultOllamaModel = "llama3.2"
)

// Ollama calls a local or remote Ollama server. It needs no API key.
type Ollama struct {
	client *ollama.Client
	model  string
}

// NewOllama creates a client for opts.BaseURL (default localhost:11434).
func NewOllama(opts Options) (*Ollama, error) {
	host := opts.BaseURL
	if host == "" {
		host = defaultOllamaHost
	}

	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}

	model := opts.Model
	if model == "" {
		model = defaultOllamaModel
	}

	return &Ollama{client: ollama.NewClient(u, http.DefaultClient), model: model}, nil
}

func (o *Ollama) Name() string  { return ProviderOllama }
func (o *Ollama) Model() string { return o.model }

// Generate collects the streamed response chunks into one answer.
func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	var text strings.Builder

	req := &ollama.GenerateRequest{
		Model:  o.model,
		Prompt: prompt,
	}

	err := o.client.Generate(ctx, req, func(gr ollama.GenerateResponse) error {
		text.WriteString(gr.Response)
		return nil
	})
	if err != nil {
		return "", providerErr(ProviderOllama, err)
	}

	return text.String(), nil
}

func (o *Ollama) Close() error { return nil }
