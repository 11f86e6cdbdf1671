package pkgllm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
)

func TestNewRejectsUnknownProvider(t *testing.T) {
	_, err := New(context.Background(), Options{Provider: "mystery"})
	if !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestNewRequiresKeyForKeyedProviders(t *testing.T) {
	for _, name := range []string{"gemini", "google", "openai", "anthropic", "claude"} {
		t.Run(name, func(t *testing.T) {
			_, err := New(context.Background(), Options{Provider: name, APIKey: "  "})
			if !errors.Is(err, ErrMissingAPIKey) {
				t.Fatalf("expected ErrMissingAPIKey, got %v", err)
			}
		})
	}
}

func TestNewBuildsKeylessProviders(t *testing.T) {
	p, err := New(context.Background(), Options{Provider: "Ollama", Model: "llama3"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Name() != ProviderOllama || p.Model() != "llama3" {
		t.Fatalf("unexpected provider %s/%s", p.Name(), p.Model())
	}

	p, err = New(context.Background(), Options{Provider: "echo"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Name() != ProviderEcho {
		t.Fatalf("unexpected provider %s", p.Name())
	}
}

func TestEchoUsesLastNonEmptyLine(t *testing.T) {
	e := NewEcho("")
	got, err := e.Generate(context.Background(), "first\n\nUser question: total sales?\n  \n")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "Echo: User question: total sales?" {
		t.Fatalf("unexpected answer: %q", got)
	}

	got, err = e.Generate(context.Background(), "\n\n")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty answer, got %q", got)
	}
}

func TestProviderErrorUnwraps(t *testing.T) {
	root := errors.New("quota exceeded")
	err := providerErr(ProviderGemini, root)

	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ProviderError, got %T", err)
	}
	if perr.Provider != ProviderGemini {
		t.Fatalf("unexpected provider: %q", perr.Provider)
	}
	if !errors.Is(err, root) {
		t.Fatalf("expected cause to unwrap")
	}
	if err.Error() != "gemini: quota exceeded" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

type blockingProvider struct {
	Echo
}

func (b *blockingProvider) Generate(ctx context.Context, prompt string) (string, error) {
	<-ctx.Done()
	return "", providerErr("blocking", ctx.Err())
}

func TestTimeoutProviderCancelsCall(t *testing.T) {
	p := &timeoutProvider{Provider: &blockingProvider{}, timeout: 10 * time.Millisecond}

	_, err := p.Generate(context.Background(), "hi")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestOpenAIGenerate(t *testing.T) {
	var gotPrompt, gotModel, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		gotAuth = r.Header.Get("Authorization")

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		gotModel = req.Model
		if len(req.Messages) > 0 {
			gotPrompt = req.Messages[0].Content
		}

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-test",
			"choices":[{"index":0,"message":{"role":"assistant","content":"Revenue grew 12%."},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	p, err := NewOpenAI(Options{APIKey: "sk-test", Model: "gpt-test", BaseURL: srv.URL + "/v1"})
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}

	got, err := p.Generate(context.Background(), "How did revenue change?")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "Revenue grew 12%." {
		t.Fatalf("unexpected answer: %q", got)
	}
	if gotPrompt != "How did revenue change?" || gotModel != "gpt-test" {
		t.Fatalf("unexpected request: model=%q prompt=%q", gotModel, gotPrompt)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
}

func TestOpenAIGenerateWrapsAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"message":"invalid api key","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	p, err := NewOpenAI(Options{APIKey: "bad", BaseURL: srv.URL + "/v1"})
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}

	_, err = p.Generate(context.Background(), "hi")
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ProviderError, got %T: %v", err, err)
	}
	if perr.Provider != ProviderOpenAI {
		t.Fatalf("unexpected provider: %q", perr.Provider)
	}
	if !strings.Contains(err.Error(), "invalid api key") {
		t.Fatalf("expected upstream message, got %q", err.Error())
	}
}

func TestOllamaGenerateJoinsStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/x-ndjson")
		io.WriteString(w, `{"model":"llama3","response":"Top region ","done":false}`+"\n")
		io.WriteString(w, `{"model":"llama3","response":"is EMEA.","done":true,"done_reason":"stop"}`+"\n")
	}))
	defer srv.Close()

	p, err := NewOllama(Options{Model: "llama3", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewOllama: %v", err)
	}

	got, err := p.Generate(context.Background(), "Which region leads?")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "Top region is EMEA." {
		t.Fatalf("unexpected answer: %q", got)
	}
}

func TestOllamaRejectsBadHost(t *testing.T) {
	if _, err := NewOllama(Options{BaseURL: "http://bad host:1"}); err == nil {
		t.Fatalf("expected error for invalid host")
	}
}

func TestAnthropicGenerateJoinsTextBlocks(t *testing.T) {
	var gotPrompt, gotModel, gotKey string
	var gotMaxTokens int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			http.NotFound(w, r)
			return
		}
		gotKey = r.Header.Get("X-Api-Key")

		var req struct {
			Model     string `json:"model"`
			MaxTokens int64  `json:"max_tokens"`
			Messages  []struct {
				Content []struct {
					Text string `json:"text"`
				} `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		gotModel, gotMaxTokens = req.Model, req.MaxTokens
		if len(req.Messages) > 0 && len(req.Messages[0].Content) > 0 {
			gotPrompt = req.Messages[0].Content[0].Text
		}

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"msg_1","type":"message","role":"assistant","model":"claude-test",
			"content":[{"type":"text","text":"Revenue "},{"type":"text","text":"grew 12%."}],
			"stop_reason":"end_turn","stop_sequence":null,"usage":{"input_tokens":5,"output_tokens":4}}`)
	}))
	defer srv.Close()

	p, err := NewAnthropic(Options{APIKey: "sk-ant-test", Model: "claude-test", BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatalf("NewAnthropic: %v", err)
	}

	got, err := p.Generate(context.Background(), "How did revenue change?")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "Revenue grew 12%." {
		t.Fatalf("unexpected answer: %q", got)
	}
	if gotPrompt != "How did revenue change?" || gotModel != "claude-test" {
		t.Fatalf("unexpected request: model=%q prompt=%q", gotModel, gotPrompt)
	}
	if gotMaxTokens != defaultAnthropicMaxTokens {
		t.Fatalf("unexpected max tokens: %d", gotMaxTokens)
	}
	if gotKey != "sk-ant-test" {
		t.Fatalf("unexpected api key header: %q", gotKey)
	}
}

func TestAnthropicGenerateWrapsAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`)
	}))
	defer srv.Close()

	p, err := NewAnthropic(Options{APIKey: "bad", BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatalf("NewAnthropic: %v", err)
	}

	_, err = p.Generate(context.Background(), "hi")
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ProviderError, got %T: %v", err, err)
	}
	if perr.Provider != ProviderAnthropic {
		t.Fatalf("unexpected provider: %q", perr.Provider)
	}
}

func TestGeminiText(t *testing.T) {
	cases := []struct {
		name string
		resp *genai.GenerateContentResponse
		want string
	}{
		{name: "nil response", resp: nil, want: ""},
		{name: "no candidates", resp: &genai.GenerateContentResponse{}, want: ""},
		{
			name: "joins text parts",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				{Content: &genai.Content{Parts: []genai.Part{genai.Text("Top region "), genai.Text("is EMEA.")}}},
			}},
			want: "Top region is EMEA.",
		},
		{
			name: "skips empty candidates and non-text parts",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				nil,
				{Content: nil},
				{Content: &genai.Content{Parts: []genai.Part{
					genai.Blob{MIMEType: "image/png", Data: []byte{0x89}},
					genai.Text("42 rows"),
				}}},
				{Content: &genai.Content{Parts: []genai.Part{genai.Text("ignored")}}},
			}},
			want: "42 rows",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := geminiText(tc.resp); got != tc.want {
				t.Fatalf("unexpected text: %q", got)
			}
		})
	}
}
