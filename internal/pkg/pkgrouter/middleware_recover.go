package pkgrouter

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"runtime/debug"
	"strings"
)

//nolint:contextcheck // the request context is the right one to log with
func middlewareRecoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				//nolint:err113,errorlint // this must compare directly
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				slog.ErrorContext(r.Context(), "panic on the server", "because", rvr)
				printStackTrace(os.Stderr, debug.Stack())

				if r.Header.Get("Connection") == "Upgrade" {
					return
				}

				writeJSON(w, errorResponse{Detail: "Internal server error", Error: fmt.Sprint(rvr)}, http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// printStackTrace writes only the frames that belong to this module.
func printStackTrace(out io.Writer, stack []byte) {
	fmt.Fprintln(out, "===== ===== START ===== =====")
	for _, line := range strings.Split(string(stack), "\n") {
		line = strings.TrimSpace(line)
		idx := strings.Index(line, "/internal/")
		if idx == -1 || !strings.Contains(line, ".go:") {
			continue
		}
		frame := line[idx+1:]
		if sp := strings.Index(frame, " "); sp != -1 {
			frame = frame[:sp]
		}
		fmt.Fprintln(out, "stack trace: ", frame)
	}
	fmt.Fprintln(out, "===== ===== END ===== =====")
}
