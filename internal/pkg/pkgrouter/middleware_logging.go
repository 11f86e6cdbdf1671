package pkgrouter

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/julienschmidt/httprouter"
)

const (
	maxLoggedBodyBytes = 64 * 1024
	masked             = "***"
	omittedBinary      = "<binary body omitted>"
	omittedMultipart   = "<multipart body omitted>"
)

// secretKeys are header, JSON and form keys whose values never reach the logs.
//
//nolint:gochecknoglobals // read-only lookup table
var secretKeys = map[string]struct{}{
	"authorization":       {},
	"proxy-authorization": {},
	"cookie":              {},
	"set-cookie":          {},
	"api_key":             {},
	"apikey":              {},
	"token":               {},
	"access_token":        {},
	"x-api-key":           {},
	"x-goog-api-key":      {},
}

func isSecret(key string) bool {
	_, ok := secretKeys[strings.ToLower(key)]
	return ok
}

func maskHeaders(headers http.Header) http.Header {
	out := headers.Clone()
	for key := range out {
		if isSecret(key) {
			out.Set(key, masked)
		}
	}
	return out
}

func maskData(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if isSecret(k) {
				out[k] = masked
				continue
			}
			out[k] = maskData(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = maskData(inner)
		}
		return out
	default:
		return v
	}
}

func maskForm(values url.Values) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		switch {
		case isSecret(k):
			out[k] = masked
		case len(v) == 1:
			out[k] = v[0]
		default:
			out[k] = v
		}
	}
	return out
}

// responseRecorder captures the status, size and a bounded copy of the body.
type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	body   bytes.Buffer
	capped bool
}

func (w *responseRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseRecorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	if room := maxLoggedBodyBytes - w.body.Len(); room < len(p) {
		w.capped = true
		if room > 0 {
			w.body.Write(p[:room])
		}
	} else {
		w.body.Write(p)
	}

	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

func (w *responseRecorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

//nolint:err113 // it use dynamic error
func (w *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	return h.Hijack()
}

func (w *responseRecorder) statusCode() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func (w *responseRecorder) loggedBody() any {
	var body any
	raw := w.body.Bytes()

	var decoded any
	switch {
	case len(raw) == 0:
	case json.Unmarshal(raw, &decoded) == nil:
		body = maskData(decoded)
	case utf8.Valid(raw):
		body = string(raw)
	default:
		body = omittedBinary
	}

	if w.capped {
		return map[string]any{"body": body, "truncated": true}
	}
	return body
}

func matchedRoutePath(r *http.Request) string {
	if pattern := httprouter.ParamsFromContext(r.Context()).MatchedRoutePath(); pattern != "" {
		return pattern
	}
	return r.URL.Path
}

func isMultipart(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "multipart/")
}

// replayBody serves the peeked prefix first and then the untouched remainder.
type replayBody struct {
	io.Reader
	io.Closer
}

// peekBody reads at most maxLoggedBodyBytes+1 bytes for logging and returns a
// body that still yields the full stream to the handler.
func peekBody(body io.ReadCloser) ([]byte, io.ReadCloser) {
	//nolint:errcheck // best effort for logging only, the handler sees the same error
	head, _ := io.ReadAll(io.LimitReader(body, maxLoggedBodyBytes+1))
	return head, replayBody{Reader: io.MultiReader(bytes.NewReader(head), body), Closer: body}
}

func parseAndMaskBody(contentType string, body []byte) any {
	if len(body) == 0 {
		return nil
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err == nil {
		return maskData(decoded)
	}

	if strings.HasPrefix(strings.ToLower(contentType), "application/x-www-form-urlencoded") {
		if values, err := url.ParseQuery(string(body)); err == nil {
			return maskForm(values)
		}
	}

	if !utf8.Valid(body) {
		return omittedBinary
	}
	if len(body) > maxLoggedBodyBytes {
		return string(body[:maxLoggedBodyBytes]) + "...(truncated)"
	}
	return string(body)
}

// middlewareLogging logs one line when a request arrives and one when its
// response is written. Multipart uploads are never read here so a large CSV
// streams straight to the handler.
func middlewareLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := matchedRoutePath(r)
		start := time.Now()
		contentType := r.Header.Get("Content-Type")

		var reqBody any
		switch {
		case isMultipart(contentType):
			reqBody = omittedMultipart
		case r.Body != nil && r.Body != http.NoBody:
			head, body := peekBody(r.Body)
			r.Body = body
			reqBody = parseAndMaskBody(contentType, head)
		}

		slog.InfoContext(r.Context(), "request received",
			"method", r.Method,
			"route", route,
			"path", r.URL.Path,
			"content_length", r.ContentLength,
			"headers", maskHeaders(r.Header),
			"body", reqBody,
		)

		rec := &responseRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		slog.InfoContext(r.Context(), "response sent",
			"method", r.Method,
			"route", route,
			"path", r.URL.Path,
			"status", rec.statusCode(),
			"bytes", rec.bytes,
			"latency_ms", time.Since(start).Milliseconds(),
			"body", rec.loggedBody(),
		)
	})
}
