package pkgrouter

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/shandysiswandi/csvchat/internal/pkg/pkgerror"
)

type bodyLimitKey struct{}

type bodyLimitState struct {
	limit    int64
	exceeded atomic.Bool
}

// cappedBody records that the cap was hit so callers can still tell after a
// parser (multipart, textproto) has replaced the *http.MaxBytesError.
type cappedBody struct {
	io.ReadCloser
	state *bodyLimitState
}

func (b *cappedBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	var maxErr *http.MaxBytesError
	if err != nil && errors.As(err, &maxErr) {
		b.state.exceeded.Store(true)
	}
	return n, err
}

// BodyLimit rejects requests whose declared Content-Length exceeds limit
// before the handler runs, and caps the body stream for requests that do
// not declare one. Reads past the cap fail with *http.MaxBytesError and are
// reported by BodyLimitExceeded on the request context.
//
// A non-positive limit disables the check.
func BodyLimit(limit int64) Middleware {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				writeError(r.Context(), w, pkgerror.NewPayloadTooLarge(limit))
				return
			}

			state := &bodyLimitState{limit: limit}
			r.Body = &cappedBody{ReadCloser: http.MaxBytesReader(w, r.Body, limit), state: state}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), bodyLimitKey{}, state)))
		})
	}
}

// BodyLimitExceeded reports whether a read of the request body ran past the
// cap installed by BodyLimit, along with that cap.
func BodyLimitExceeded(ctx context.Context) (int64, bool) {
	state, ok := ctx.Value(bodyLimitKey{}).(*bodyLimitState)
	if !ok || !state.exceeded.Load() {
		return 0, false
	}
	return state.limit, true
}
