package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shandysiswandi/csvchat/internal/csvchat/entity"
)

// ErrInvalidName is returned for names that are not a plain file name.
var ErrInvalidName = errors.New("invalid file name")

const tempSuffix = ".tmp"

// DiskStore keeps uploaded files in one flat directory. A file is stored
// under its own name, replacing any earlier file with that name.
type DiskStore struct {
	dir string
	now func() time.Time
}

func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dir: dir, now: time.Now}
}

// Dir returns the upload directory.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Save streams r into the directory under name. The bytes land in a temp
// file first and are renamed into place, so a failed or concurrent upload
// never leaves a half-written file under name.
func (s *DiskStore) Save(ctx context.Context, name string, r io.Reader) (entity.StoredFile, error) {
	if err := validName(name); err != nil {
		return entity.StoredFile{}, err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return entity.StoredFile{}, fmt.Errorf("create upload dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".*"+tempSuffix)
	if err != nil {
		return entity.StoredFile{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	size, copyErr := io.Copy(tmp, &ctxReader{ctx: ctx, r: r})
	closeErr := tmp.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(tmpName)
		return entity.StoredFile{}, fmt.Errorf("write upload: %w", err)
	}

	path := filepath.Join(s.dir, name)
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return entity.StoredFile{}, fmt.Errorf("store upload: %w", err)
	}

	return entity.StoredFile{Name: name, Path: path, Size: size}, nil
}

// Open opens a previously saved file.
func (s *DiskStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := validName(name); err != nil {
		return nil, err
	}

	return os.Open(filepath.Join(s.dir, name))
}

// Sweep removes files last modified more than maxAge ago and returns how
// many were deleted. A missing directory is not an error.
func (s *DiskStore) Sweep(ctx context.Context, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := s.now().Add(-maxAge)
	removed := 0
	var errs []error

	for _, e := range entries {
		if ctx.Err() != nil {
			return removed, ctx.Err()
		}
		if !e.Type().IsRegular() {
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
	}

	if removed > 0 {
		slog.InfoContext(ctx, "expired uploads removed", "dir", s.dir, "removed", removed, "max_age", maxAge.String())
	}

	return removed, errors.Join(errs...)
}

func validName(name string) error {
	if name == "" || name == "." || name == ".." || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
