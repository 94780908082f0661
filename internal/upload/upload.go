// Package upload stores image attachments on the local filesystem.
// Stored names are random xids plus the original extension; the two
// default profile images are reserved names that are never written or
// removed.
package upload

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/xid"

	"github.com/vellt/eduinfo-api/internal/apperror"
)

// MaxImageSize caps uploaded images at 5 MiB.
const MaxImageSize = 5 << 20

// DefaultAvatar and DefaultBanner are the shared fallback images every
// fresh profile points at.
const (
	DefaultAvatar = "default_avatar.jpg"
	DefaultBanner = "default_banner.jpg"
)

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Store writes and removes files under a single upload directory.
type Store struct {
	dir    string
	logger *slog.Logger

	// newName is swapped out in tests for deterministic filenames.
	newName func() string
}

// NewStore creates the upload directory if needed.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload: creating directory %q: %w", dir, err)
	}
	return &Store{dir: dir, logger: logger, newName: func() string { return xid.New().String() }}, nil
}

// Dir returns the directory the store writes into; the server mounts
// it for static serving.
func (s *Store) Dir() string {
	return s.dir
}

// SaveImage validates and persists one multipart image, returning the
// generated filename. Size and extension violations come back as
// validation errors for the client.
func (s *Store) SaveImage(file multipart.File, header *multipart.FileHeader) (string, error) {
	if header.Size > MaxImageSize {
		return "", apperror.ValidationFailed([]string{"a kép mérete legfeljebb 5 MB lehet"})
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExt[ext] {
		return "", apperror.ValidationFailed([]string{"nem támogatott képformátum"})
	}

	filename := s.newName() + ext
	dst, err := os.Create(filepath.Join(s.dir, filename))
	if err != nil {
		return "", fmt.Errorf("upload: creating %q: %w", filename, err)
	}
	defer dst.Close()

	// The size header is client-supplied; the copy is capped too.
	written, err := io.Copy(dst, io.LimitReader(file, MaxImageSize+1))
	if err != nil {
		os.Remove(filepath.Join(s.dir, filename))
		return "", fmt.Errorf("upload: writing %q: %w", filename, err)
	}
	if written > MaxImageSize {
		os.Remove(filepath.Join(s.dir, filename))
		return "", apperror.ValidationFailed([]string{"a kép mérete legfeljebb 5 MB lehet"})
	}

	return filename, nil
}

// Remove deletes a stored file best-effort. The reserved default
// images are shared between every profile and are left alone; a failed
// removal is logged, never surfaced, since the database is already
// consistent by the time cleanup runs.
func (s *Store) Remove(filename string) {
	if filename == "" || Reserved(filename) {
		return
	}

	path := filepath.Join(s.dir, filepath.Base(filename))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove upload", slog.String("file", filename), slog.String("error", err.Error()))
	}
}

// Reserved reports whether the filename is one of the shared defaults.
func Reserved(filename string) bool {
	return filename == DefaultAvatar || filename == DefaultBanner
}
