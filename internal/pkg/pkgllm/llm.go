package pkgllm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrMissingAPIKey is returned by New when a keyed provider has no API key.
	ErrMissingAPIKey = errors.New("missing API key")
	// ErrUnknownProvider is returned by New for an unsupported provider name.
	ErrUnknownProvider = errors.New("unknown provider")
)

// Provider names accepted by New.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
	ProviderEcho      = "echo"
)

// Generator turns a prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Provider is a Generator bound to one provider and model.
type Provider interface {
	Generator
	Name() string
	Model() string
	Close() error
}

// ProviderError wraps any failure coming from a provider call.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func providerErr(name string, err error) error {
	return &ProviderError{Provider: name, Err: err}
}

// Options selects and configures a provider.
type Options struct {
	Provider  string
	Model     string
	APIKey    string
	BaseURL   string        // empty means the SDK default endpoint
	MaxTokens int           // output cap, used where the API requires one
	Timeout   time.Duration // per call; zero means no deadline beyond ctx
}

// New builds the provider named by opts.Provider.
func New(ctx context.Context, opts Options) (Provider, error) {
	var (
		p   Provider
		err error
	)

	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case ProviderGemini, "google":
		p, err = NewGemini(ctx, opts)
	case ProviderOpenAI:
		p, err = NewOpenAI(opts)
	case ProviderAnthropic, "claude":
		p, err = NewAnthropic(opts)
	case ProviderOllama:
		p, err = NewOllama(opts)
	case ProviderEcho:
		p = NewEcho(opts.Model)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, opts.Provider)
	}
	if err != nil {
		return nil, err
	}

	if opts.Timeout > 0 {
		p = &timeoutProvider{Provider: p, timeout: opts.Timeout}
	}

	return p, nil
}

func requireKey(name, key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%s: %w", name, ErrMissingAPIKey)
	}
	return nil
}

type timeoutProvider struct {
	Provider
	timeout time.Duration
}

func (t *timeoutProvider) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	return t.Provider.Generate(ctx, prompt)
}
