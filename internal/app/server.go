package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

// closeOrder lists closers that must run in sequence during Stop. Closers
// not listed run afterwards.
var closeOrder = []string{"HTTP Server", "CSV Chat", "AI Provider", "Config"}

func (a *App) Start() <-chan struct{} {
	terminateChan := make(chan struct{})

	go func() {
		slog.Info("http server listening", "address", a.httpServer.Addr)

		if err := a.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to listen and serve http server", "error", err)
			os.Exit(1)
		}
	}()

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

		sig := <-sigint
		slog.Info("termination signal received", "signal", sig.String())

		terminateChan <- struct{}{}
		close(terminateChan)
	}()

	return terminateChan
}

// Stop drains in-flight requests first, then cancels background work such as
// the upload retention sweeper, and finally releases the AI client and config.
func (a *App) Stop(ctx context.Context) {
	closers := make(map[string]func(context.Context) error, len(a.closerFn))
	for name, fn := range a.closerFn {
		closers[name] = fn
	}

	if fn, ok := closers["HTTP Server"]; ok {
		if err := fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", "HTTP Server", "error", err)
		}
		delete(closers, "HTTP Server")
	}

	if a.cancel != nil {
		a.cancel()
	}

	slog.InfoContext(ctx, "waiting for all goroutine to finish")
	if err := a.goroutine.Wait(); err != nil {
		slog.ErrorContext(ctx, "error from goroutines executions", "error", err)
	}

	for _, name := range closeOrder {
		if fn, ok := closers[name]; ok {
			a.close(ctx, name, fn)
			delete(closers, name)
		}
	}
	for name, fn := range closers {
		a.close(ctx, name, fn)
	}

	slog.InfoContext(ctx, "application gracefully shutdown")
}

func (a *App) close(ctx context.Context, name string, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to close resources", "name", name, "error", err)
	}
}
