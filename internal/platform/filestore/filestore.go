// Package filestore keeps course images and lecture videos on a filesystem.
// Videos are uploaded to a pending area and moved to the public area when a
// lecture is approved.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/coursehub/coursehub-api/internal/config"
	"github.com/coursehub/coursehub-api/internal/platform/logger"
	"github.com/coursehub/coursehub-api/internal/service"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// ErrInvalidName is returned for names that are not a plain file name.
var ErrInvalidName = errors.New("invalid file name")

// Store implements service.FileStore on an afero filesystem.
type Store struct {
	fs         afero.Fs
	imageDir   string
	pendingDir string
	publicDir  string
	logger     *slog.Logger
}

var _ service.FileStore = (*Store)(nil)

// New creates a Store on fs and makes sure the configured directories exist.
func New(fs afero.Fs, cfg config.StorageConfig, l *slog.Logger) (*Store, error) {
	if l == nil {
		l = slog.Default()
	}
	s := &Store{
		fs:         fs,
		imageDir:   cfg.UploadDir,
		pendingDir: cfg.PendingVideoDir,
		publicDir:  cfg.PublicVideoDir,
		logger:     l.With(slog.String("component", "filestore")),
	}
	for _, dir := range []string{s.imageDir, s.pendingDir, s.publicDir} {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return s, nil
}

// NewOS creates a Store on the operating system filesystem.
func NewOS(cfg config.StorageConfig, l *slog.Logger) (*Store, error) {
	return New(afero.NewOsFs(), cfg, l)
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// SaveImage implements service.FileStore.
func (s *Store) SaveImage(ctx context.Context, originalName string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	name := uuid.NewString() + ext

	if err := afero.WriteFile(s.fs, filepath.Join(s.imageDir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Debug("image stored",
		slog.String("name", name),
		slog.Int("bytes", len(data)))
	return name, nil
}

// DeleteImage implements service.FileStore.
func (s *Store) DeleteImage(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	err := s.fs.Remove(filepath.Join(s.imageDir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// DeleteVideo implements service.FileStore.
func (s *Store) DeleteVideo(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	for _, dir := range []string{s.pendingDir, s.publicDir} {
		err := s.fs.Remove(filepath.Join(dir, name))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to delete video: %w", err)
		}
	}
	return nil
}

// PublishVideo implements service.FileStore.
func (s *Store) PublishVideo(ctx context.Context, name string) error {
	return s.move(ctx, name, s.pendingDir, s.publicDir)
}

// UnpublishVideo implements service.FileStore.
func (s *Store) UnpublishVideo(ctx context.Context, name string) error {
	return s.move(ctx, name, s.publicDir, s.pendingDir)
}

// move renames name from one directory to another, never overwriting an
// existing file. When rename fails, for example across devices, the file is
// copied and the source removed.
func (s *Store) move(ctx context.Context, name, fromDir, toDir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkName(name); err != nil {
		return err
	}
	src := filepath.Join(fromDir, name)
	dst := filepath.Join(toDir, name)

	if _, err := s.fs.Stat(src); err != nil {
		return fmt.Errorf("source %s: %w", src, err)
	}
	if _, err := s.fs.Stat(dst); err == nil {
		return fmt.Errorf("destination %s: %w", dst, os.ErrExist)
	}

	err := s.fs.Rename(src, dst)
	if err == nil {
		return nil
	}
	logger.FromContextOrDefault(ctx, s.logger).Warn("rename failed, copying instead",
		slog.String("src", src),
		slog.String("dst", dst),
		slog.String("error", err.Error()))

	if err := s.copyFile(src, dst); err != nil {
		_ = s.fs.Remove(dst)
		return err
	}
	if err := s.fs.Remove(src); err != nil {
		return fmt.Errorf("failed to remove %s after copy: %w", src, err)
	}
	return nil
}

func (s *Store) copyFile(src, dst string) error {
	in, err := s.fs.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := s.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}
