package app

import (
	"time"

	"github.com/shandysiswandi/csvchat/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/csvchat/internal/pkg/pkgllm"
)

type configurable interface {
	SetDefault(key string, value any)
	BindEnv(key string, envs ...string) error
}

// configDefaults applies when neither the config file nor the environment
// set a key.
var configDefaults = map[string]any{
	"server.port":                  5000,
	"server.host":                  "",
	"cors.allowed_origins":         "*",
	"upload.dir":                   "uploads",
	"upload.max_bytes":             5 << 20,
	"upload.require_csv_extension": true,
	"upload.retention":             time.Duration(0),
	"upload.sweep_interval":        time.Hour,
	"ai.provider":                  pkgllm.ProviderGemini,
	"ai.max_tokens":                1024,
	"ai.timeout":                   time.Duration(0),
	"chat.preview.format":          "json",
	"chat.preview.rows":            0,
	"modules.csvchat.enabled":      true,
}

// configEnv lists explicit variables for keys whose env name does not
// follow the automatic "a.b_c" -> "A_B_C" rule, or that have aliases.
var configEnv = map[string][]string{
	"server.port":          {"PORT", "SERVER_PORT"},
	"server.host":          {"SERVER_HOST"},
	"cors.allowed_origins": {"CORS_ALLOWED_ORIGINS"},
	"ai.api_key":           {"AI_API_KEY", "GEMINI_API_KEY"},
}

func applyConfigDefaults(cfg configurable) error {
	for key, value := range configDefaults {
		cfg.SetDefault(key, value)
	}
	for key, envs := range configEnv {
		if err := cfg.BindEnv(key, envs...); err != nil {
			return err
		}
	}
	return nil
}

var _ configurable = (*pkgconfig.Viper)(nil)
