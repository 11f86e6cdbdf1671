package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/shandysiswandi/csvchat/internal/csvchat/entity"
	"github.com/shandysiswandi/csvchat/internal/pkg/pkgerror"
	"github.com/shandysiswandi/csvchat/internal/pkg/pkguid"
)

//nolint:staticcheck // messages are rendered verbatim in responses
var (
	errNoFile     = errors.New("No file uploaded")
	errNotCSV     = errors.New("Only CSV files are allowed")
	errNoQuery    = errors.New("Query is required")
	errMissingDep = errors.New("missing dependency")
)

const (
	msgUploadFailed = "File upload failed"
	msgChatFailed   = "Failed to get AI response"
)

type DatasetStore interface {
	Replace(ctx context.Context, ds entity.Dataset) error
	Current(ctx context.Context) (entity.Dataset, error)
}

type FileStore interface {
	Save(ctx context.Context, name string, r io.Reader) (entity.StoredFile, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Clock interface {
	Now() time.Time
}

// Config holds the behaviour switches of the upload and chat flows.
type Config struct {
	RequireCSVExtension bool
	PreviewFormat       string
	PreviewRows         int
}

// Validate normalizes the preview format and rejects unknown ones.
func (c *Config) Validate() error {
	c.PreviewFormat = strings.ToLower(strings.TrimSpace(c.PreviewFormat))
	switch c.PreviewFormat {
	case "":
		c.PreviewFormat = PreviewJSON
	case PreviewJSON, PreviewPairs:
	default:
		return fmt.Errorf("unknown preview format %q", c.PreviewFormat)
	}
	if c.PreviewRows < 0 {
		c.PreviewRows = 0
	}
	return nil
}

type Dependency struct {
	Datasets DatasetStore
	Files    FileStore
	AI       Generator
	Version  pkguid.NumberID
	Clock    Clock
	Config   Config
}

type Usecase struct {
	datasets DatasetStore
	files    FileStore
	ai       Generator
	version  pkguid.NumberID
	clock    Clock
	cfg      Config
}

func New(dep Dependency) *Usecase {
	clock := dep.Clock
	if clock == nil {
		clock = realClock{}
	}

	cfg := dep.Config
	if err := cfg.Validate(); err != nil {
		slog.Warn("falling back to json preview", "error", err)
		cfg.PreviewFormat = PreviewJSON
	}

	return &Usecase{
		datasets: dep.Datasets,
		files:    dep.Files,
		ai:       dep.AI,
		version:  dep.Version,
		clock:    clock,
		cfg:      cfg,
	}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// Upload stores the file, parses it and, only when parsing succeeds,
// replaces the active dataset with the result.
func (u *Usecase) Upload(ctx context.Context, in UploadInput) (UploadResult, error) {
	if u.datasets == nil || u.files == nil || u.version == nil {
		return UploadResult{}, pkgerror.NewServer(errMissingDep)
	}

	name := baseName(in.Filename)
	if name == "" || in.Body == nil {
		return UploadResult{}, pkgerror.NewInvalidInput(errNoFile)
	}
	if u.cfg.RequireCSVExtension && !strings.EqualFold(filepath.Ext(name), ".csv") {
		return UploadResult{}, pkgerror.NewInvalidInput(errNotCSV)
	}

	stored, err := u.files.Save(ctx, name, in.Body)
	if err != nil {
		slog.ErrorContext(ctx, "failed to store upload", "filename", name, "error", err)
		return UploadResult{}, pkgerror.NewInternal(msgUploadFailed, err)
	}

	columns, rows, err := u.parseStored(ctx, stored.Name)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse upload", "filename", name, "error", err)
		return UploadResult{}, pkgerror.NewInternal(msgUploadFailed, err)
	}

	ds := entity.Dataset{
		Version:    u.version.Generate(),
		Filename:   stored.Name,
		Columns:    columns,
		Rows:       rows,
		UploadedAt: u.clock.Now().Unix(),
	}
	if err := u.datasets.Replace(ctx, ds); err != nil {
		slog.ErrorContext(ctx, "failed to replace dataset", "filename", name, "error", err)
		return UploadResult{}, pkgerror.NewInternal(msgUploadFailed, err)
	}

	slog.InfoContext(ctx, "dataset replaced",
		"filename", ds.Filename,
		"rows", len(ds.Rows),
		"columns", len(ds.Columns),
		"bytes", stored.Size,
		"version", ds.Version,
	)

	return UploadResult{Filename: ds.Filename, Rows: len(ds.Rows), Version: ds.Version}, nil
}

func (u *Usecase) parseStored(ctx context.Context, name string) ([]string, []entity.Row, error) {
	f, err := u.files.Open(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	return parseCSV(ctx, f)
}

// Chat answers query using a preview of the active dataset as context.
func (u *Usecase) Chat(ctx context.Context, query string) (ChatResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return ChatResult{}, pkgerror.NewInvalidInput(errNoQuery)
	}

	if u.datasets == nil || u.ai == nil {
		return ChatResult{}, pkgerror.NewServer(errMissingDep)
	}

	ds, err := u.datasets.Current(ctx)
	if err != nil {
		return ChatResult{}, pkgerror.NewServer(err)
	}

	preview, n, err := buildPreview(ds, u.cfg.PreviewFormat, u.cfg.PreviewRows)
	if err != nil {
		return ChatResult{}, pkgerror.NewServer(err)
	}

	answer, err := u.ai.Generate(ctx, buildPrompt(preview, query))
	if err != nil {
		slog.ErrorContext(ctx, "ai provider call failed", "version", ds.Version, "error", err)
		return ChatResult{}, pkgerror.NewInternal(msgChatFailed, err)
	}
	if strings.TrimSpace(answer) == "" {
		answer = noAnswer
	}

	slog.InfoContext(ctx, "chat answered", "version", ds.Version, "preview_rows", n, "answer_len", len(answer))

	return ChatResult{Answer: answer}, nil
}

// Dataset describes the active dataset; zero values mean nothing was uploaded.
func (u *Usecase) Dataset(ctx context.Context) (DatasetResult, error) {
	if u.datasets == nil {
		return DatasetResult{}, pkgerror.NewServer(errMissingDep)
	}

	ds, err := u.datasets.Current(ctx)
	if err != nil {
		return DatasetResult{}, pkgerror.NewServer(err)
	}

	return DatasetResult{
		Filename:   ds.Filename,
		Rows:       len(ds.Rows),
		Columns:    ds.Columns,
		Version:    ds.Version,
		UploadedAt: ds.UploadedAt,
	}, nil
}

// baseName strips any client supplied directories from name.
func baseName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, `\`, "/"))
	if name == "" {
		return ""
	}
	name = filepath.Base(name)
	if name == "." || name == ".." || name == "/" {
		return ""
	}
	return name
}
