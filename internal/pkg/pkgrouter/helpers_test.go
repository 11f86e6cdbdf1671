package pkgrouter

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
)

func TestSanitizeCID(t *testing.T) {
	if got := sanitizeCID("  abc  "); got != "abc" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
	if got := sanitizeCID("\n"); got != "" {
		t.Fatalf("expected empty for newline, got %q", got)
	}
	long := strings.Repeat("a", 200)
	if got := sanitizeCID(long); len(got) != 128 {
		t.Fatalf("expected length 128, got %d", len(got))
	}
}

func TestMaskHeaders(t *testing.T) {
	headers := http.Header{}
	headers.Set("Authorization", "secret")
	headers.Set("X-Trace", "ok")

	masked := maskHeaders(headers)
	if got := masked.Get("Authorization"); got != "***" {
		t.Fatalf("expected masked authorization, got %q", got)
	}
	if got := masked.Get("X-Trace"); got != "ok" {
		t.Fatalf("expected X-Trace to stay, got %q", got)
	}
	if got := headers.Get("Authorization"); got != "secret" {
		t.Fatalf("expected original headers unchanged, got %q", got)
	}
}

func TestMaskData(t *testing.T) {
	input := map[string]any{
		"api_key":    "secret",
		"user_query": "total revenue?",
		"provider": map[string]any{
			"access_token": "token",
		},
		"items": []any{
			map[string]any{
				"token": "t",
			},
		},
	}

	out := maskData(input).(map[string]any)
	if out["api_key"] != "***" {
		t.Fatalf("expected masked api_key")
	}
	if out["user_query"] != "total revenue?" {
		t.Fatalf("expected user_query to stay")
	}
	if out["provider"].(map[string]any)["access_token"] != "***" {
		t.Fatalf("expected masked access_token")
	}
	items := out["items"].([]any)
	if items[0].(map[string]any)["token"] != "***" {
		t.Fatalf("expected masked token")
	}
}

func TestParseAndMaskBodyJSON(t *testing.T) {
	body := []byte(`{"api_key":"secret","name":"bob"}`)
	parsed := parseAndMaskBody("application/json", body)

	m, ok := parsed.(map[string]any)
	if !ok {
		encoded, _ := json.Marshal(parsed)
		t.Fatalf("expected map, got %s", string(encoded))
	}
	if m["api_key"] != "***" {
		t.Fatalf("expected masked api_key")
	}
	if m["name"] != "bob" {
		t.Fatalf("expected name to remain")
	}
}

func TestParseAndMaskBodyForm(t *testing.T) {
	body := []byte("apikey=secret&name=bob")
	parsed := parseAndMaskBody("application/x-www-form-urlencoded", body)

	m, ok := parsed.(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", parsed)
	}
	if m["apikey"] != "***" {
		t.Fatalf("expected masked apikey")
	}
	if m["name"] != "bob" {
		t.Fatalf("expected name to remain")
	}
}

func TestParseAndMaskBodyBinary(t *testing.T) {
	body := []byte{0xff, 0xfe, 0xfd}
	parsed := parseAndMaskBody("text/plain", body)
	if !reflect.DeepEqual(parsed, "<binary body omitted>") {
		t.Fatalf("expected binary body omission, got %v", parsed)
	}
}

func TestParseAndMaskBodyTruncatesLongText(t *testing.T) {
	body := []byte(strings.Repeat("a", maxLoggedBodyBytes+10))
	parsed, ok := parseAndMaskBody("text/plain", body).(string)
	if !ok {
		t.Fatalf("expected string body")
	}
	if !strings.HasSuffix(parsed, "...(truncated)") {
		t.Fatalf("expected truncated marker")
	}
}

func TestPeekBodyKeepsFullStream(t *testing.T) {
	payload := strings.Repeat("x", maxLoggedBodyBytes*2)
	head, body := peekBody(io.NopCloser(strings.NewReader(payload)))

	if len(head) != maxLoggedBodyBytes+1 {
		t.Fatalf("expected peek of %d bytes, got %d", maxLoggedBodyBytes+1, len(head))
	}
	rest, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(rest) != payload {
		t.Fatalf("expected handler to see the full payload, got %d bytes", len(rest))
	}
}

func TestIsMultipart(t *testing.T) {
	if !isMultipart("multipart/form-data; boundary=abc") {
		t.Fatalf("expected multipart")
	}
	if isMultipart("application/json") {
		t.Fatalf("did not expect multipart")
	}
}

func TestMaskHeadersHidesAPIKeys(t *testing.T) {
	headers := http.Header{}
	headers.Set("X-Goog-Api-Key", "secret")

	if got := maskHeaders(headers).Get("X-Goog-Api-Key"); got != "***" {
		t.Fatalf("expected masked api key, got %q", got)
	}
}

func TestResponseRecorderCapsLoggedBody(t *testing.T) {
	rec := &responseRecorder{ResponseWriter: httptest.NewRecorder()}
	payload := strings.Repeat("y", maxLoggedBodyBytes+5)

	n, err := rec.Write([]byte(payload))
	if err != nil || n != len(payload) {
		t.Fatalf("Write() = %d, %v", n, err)
	}
	if rec.statusCode() != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.statusCode())
	}

	logged, ok := rec.loggedBody().(map[string]any)
	if !ok || logged["truncated"] != true {
		t.Fatalf("expected truncated marker, got %T", rec.loggedBody())
	}
	if got := len(logged["body"].(string)); got != maxLoggedBodyBytes {
		t.Fatalf("expected %d logged bytes, got %d", maxLoggedBodyBytes, got)
	}
}
