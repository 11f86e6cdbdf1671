package app

import (
	"context"
	"log/slog"
	"os"

	"github.com/shandysiswandi/csvchat/internal/csvchat"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.csvchat.enabled") {
		closer, err := csvchat.New(csvchat.Dependency{
			Config:    a.config,
			Router:    a.router,
			Goroutine: a.goroutine,
			Context:   a.ctx,
			AI:        a.ai,
			Version:   a.snowflake,
		})
		if err != nil {
			slog.Error("failed to init module csvchat", "error", err)
			os.Exit(1)
		}
		if closer != nil {
			if a.closerFn == nil {
				a.closerFn = map[string]func(context.Context) error{}
			}
			a.closerFn["CSV Chat"] = closer
		}
	}
}
