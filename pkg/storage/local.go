// Package storage writes generated files to the local media directory.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Local stores files below a directory served under a public URL prefix.
type Local struct {
	dir     string
	baseURL string
	logger  zerolog.Logger
}

// NewLocal constructs a local store, creating dir when missing.
func NewLocal(dir, baseURL string, logger zerolog.Logger) (*Local, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("storage directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	return &Local{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.With().Str("component", "local_storage").Logger(),
	}, nil
}

// Dir returns the directory files are written to.
func (l *Local) Dir() string {
	return l.dir
}

// Upload writes reader to name inside the directory, replacing an existing
// file, and returns the public URL of the result.
func (l *Local) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "", fmt.Errorf("invalid file name %q", name)
	}

	tmp, err := os.CreateTemp(l.dir, "."+base+"-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, reader); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write %s: %w", base, err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), filepath.Join(l.dir, base)); err != nil {
		return "", fmt.Errorf("store %s: %w", base, err)
	}

	l.logger.Debug().Str("file", base).Msg("file stored")
	return l.baseURL + "/" + base, nil
}
