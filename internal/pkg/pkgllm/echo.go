package pkgllm

import (
	"context"
	"strings"
)

// Echo answers with the last non-empty line of the prompt. It lets the
// service run without credentials or network, e.g. in local development.
type Echo struct {
	model string
}

func NewEcho(model string) *Echo {
	if model == "" {
		model = ProviderEcho
	}
	return &Echo{model: model}
}

func (e *Echo) Name() string  { return ProviderEcho }
func (e *Echo) Model() string { return e.model }

func (e *Echo) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", providerErr(ProviderEcho, err)
	}

	lines := strings.Split(prompt, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return "Echo: " + line, nil
		}
	}

	return "", nil
}

func (e *Echo) Close() error { return nil }
