// Package pkgllm talks to generative-AI providers through one capability:
// Generate(ctx, prompt) returns the model's text.
//
// Every transport, quota or auth failure comes back as a *ProviderError so
// callers never depend on a specific SDK's error shape. An empty answer is
// not an error; deciding what to show instead is up to the caller.
package pkgllm
