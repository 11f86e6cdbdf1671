package app

import (
	"context"
	"net/http"

	"github.com/shandysiswandi/csvchat/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/csvchat/internal/pkg/pkgllm"
	"github.com/shandysiswandi/csvchat/internal/pkg/pkglog"
	"github.com/shandysiswandi/csvchat/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/csvchat/internal/pkg/pkgroutine"
	"github.com/shandysiswandi/csvchat/internal/pkg/pkguid"
)

type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config pkgconfig.Config

	// libraries
	uuid      pkguid.StringID
	snowflake pkguid.NumberID
	goroutine *pkgroutine.Manager

	// resources
	ai pkgllm.Provider

	// server
	router     *pkgrouter.Router
	httpServer *http.Server

	//
	closerFn map[string]func(context.Context) error
}

func New() *App {
	loadDotEnv()
	pkglog.InitLogging()

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initLibraries()
	app.initAI()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
