package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/shandysiswandi/csvchat/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/csvchat/internal/pkg/pkgllm"
	"github.com/shandysiswandi/csvchat/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/csvchat/internal/pkg/pkgroutine"
	"github.com/shandysiswandi/csvchat/internal/pkg/pkguid"
)

// loadDotEnv copies a local .env file into the process environment. Variables
// already set are left alone.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}
}

func (a *App) initConfig() {
	path := "/config/config.yaml"
	if os.Getenv("LOCAL") == "true" {
		path = "./config/config.yaml"
	}

	cfg, err := pkgconfig.NewViper(path)
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	if err := applyConfigDefaults(cfg); err != nil {
		slog.Error("failed to bind config env", "error", err)
		os.Exit(1)
	}

	if tz := cfg.GetString("tz"); tz != "" {
		//nolint:errcheck,gosec // ignore error
		os.Setenv("TZ", tz)
	}

	slog.Info("config loaded", "path", path, "from_file", cfg.FromFile())

	a.config = cfg
}

func (a *App) initLibraries() {
	a.goroutine = pkgroutine.NewManager(100)
	a.uuid = pkguid.NewUUID()

	sf, err := pkguid.NewSnowflake(-1)
	if err != nil {
		slog.Error("failed to init snowflake", "error", err)
		os.Exit(1)
	}
	a.snowflake = sf
}

func (a *App) initAI() {
	provider, err := pkgllm.New(a.ctx, pkgllm.Options{
		Provider:  a.config.GetString("ai.provider"),
		Model:     a.config.GetString("ai.model"),
		APIKey:    a.config.GetString("ai.api_key"),
		BaseURL:   a.config.GetString("ai.base_url"),
		MaxTokens: int(a.config.GetInt("ai.max_tokens")),
		Timeout:   a.config.GetDuration("ai.timeout"),
	})
	if err != nil {
		slog.Error("failed to init ai provider", "provider", a.config.GetString("ai.provider"), "error", err)
		os.Exit(1)
	}

	slog.Info("ai provider ready", "provider", provider.Name(), "model", provider.Model())

	a.ai = provider
}

func (a *App) initHTTPServer() {
	a.router = pkgrouter.NewRouter(a.uuid)

	// rs/cors and the allow-list middleware must agree on every entry.
	origins := pkgrouter.NormalizeOrigins(a.config.GetArray("cors.allowed_origins"))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{pkgrouter.HeaderCorrelationID},
	})

	handler := pkgrouter.Chain(a.router, pkgrouter.AllowOrigins(origins))

	a.httpServer = &http.Server{
		Addr:              net.JoinHostPort(a.config.GetString("server.host"), strconv.FormatInt(a.config.GetInt("server.port"), 10)),
		Handler:           corsHandler.Handler(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

//nolint:unparam // is always nil
func (a *App) initClosers() {
	if a.closerFn == nil {
		a.closerFn = map[string]func(context.Context) error{}
	}

	a.closerFn["HTTP Server"] = func(ctx context.Context) error {
		return a.httpServer.Shutdown(ctx)
	}
	a.closerFn["AI Provider"] = func(context.Context) error {
		return a.ai.Close()
	}
	a.closerFn["Config"] = func(context.Context) error {
		return a.config.Close()
	}
}
