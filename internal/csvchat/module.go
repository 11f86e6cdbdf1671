package csvchat

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/csvchat/internal/csvchat/inbound"
	"github.com/shandysiswandi/csvchat/internal/csvchat/store"
	"github.com/shandysiswandi/csvchat/internal/csvchat/usecase"
	"github.com/shandysiswandi/csvchat/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/csvchat/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/csvchat/internal/pkg/pkgroutine"
	"github.com/shandysiswandi/csvchat/internal/pkg/pkguid"
)

type Dependency struct {
	Config    pkgconfig.Config
	Goroutine *pkgroutine.Manager
	Router    *pkgrouter.Router
	Context   context.Context
	AI        usecase.Generator
	Version   pkguid.NumberID
}

func New(dep Dependency) (func(context.Context) error, error) {
	if dep.Config == nil || dep.Router == nil || dep.AI == nil {
		return nil, errors.New("csvchat: config, router and ai are required")
	}
	if dep.Context == nil {
		dep.Context = context.Background()
	}

	if dep.Version == nil {
		sf, err := pkguid.NewSnowflake(-1)
		if err != nil {
			return nil, err
		}
		dep.Version = sf
	}

	cfg := usecase.Config{
		RequireCSVExtension: dep.Config.GetBool("upload.require_csv_extension"),
		PreviewFormat:       dep.Config.GetString("chat.preview.format"),
		PreviewRows:         int(dep.Config.GetInt("chat.preview.rows")),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	files := store.NewDiskStore(dep.Config.GetString("upload.dir"))

	uc := usecase.New(usecase.Dependency{
		Datasets: store.NewInMemoryStore(),
		Files:    files,
		AI:       dep.AI,
		Version:  dep.Version,
		Config:   cfg,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, dep.Config.GetInt("upload.max_bytes"))

	if retention := dep.Config.GetDuration("upload.retention"); retention > 0 && dep.Goroutine != nil {
		dep.Goroutine.Loop(dep.Context, "upload-retention", dep.Config.GetDuration("upload.sweep_interval"), func(ctx context.Context) error {
			_, err := files.Sweep(ctx, retention)
			return err
		})
	}

	slog.Info("csvchat module ready",
		"upload_dir", files.Dir(),
		"require_csv_extension", cfg.RequireCSVExtension,
		"preview_format", cfg.PreviewFormat,
	)

	return nil, nil
}
