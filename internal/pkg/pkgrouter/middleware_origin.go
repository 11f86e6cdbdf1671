package pkgrouter

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/shandysiswandi/csvchat/internal/pkg/pkgerror"
)

// AllowAllOrigins is the allow-list entry that disables origin checks.
const AllowAllOrigins = "*"

// NormalizeOrigins lowercases origins and strips surrounding spaces and
// trailing slashes, dropping blanks. A list that ends up empty or holds "*"
// becomes {"*"}.
func NormalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.ToLower(strings.TrimRight(strings.TrimSpace(o), "/"))
		if o == AllowAllOrigins {
			return []string{AllowAllOrigins}
		}
		if o != "" {
			out = append(out, o)
		}
	}

	if len(out) == 0 {
		return []string{AllowAllOrigins}
	}
	return out
}

// AllowOrigins rejects any request whose Origin header is not in origins.
// Requests without an Origin header (curl, server to server) pass through.
//
// An empty list or one containing "*" allows everything.
func AllowOrigins(origins []string) Middleware {
	origins = NormalizeOrigins(origins)
	if len(origins) == 1 && origins[0] == AllowAllOrigins {
		return func(next http.Handler) http.Handler { return next }
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}

	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			if _, ok := allowed[strings.ToLower(origin)]; !ok {
				slog.WarnContext(r.Context(), "origin rejected by cors allow-list", "origin", origin, "path", r.URL.Path)
				writeError(r.Context(), w, pkgerror.NewForbidden("Not allowed by CORS"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
