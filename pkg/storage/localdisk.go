package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
)

// localDisk writes blobs into a directory on the local filesystem. References
// are URL paths under the configured prefix, servable as static assets.
type localDisk struct {
	dir       string
	urlPrefix string
}

func newLocalDisk(dir, urlPrefix string) (Backend, error) {
	if dir == "" {
		return nil, fmt.Errorf("local storage directory not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &localDisk{dir: dir, urlPrefix: urlPrefix}, nil
}

// Persist writes the blob to a temp file and renames it into place, so a
// partially written blob is never visible under its final name. Filenames are
// uuid-based, so two concurrent uploads never collide or overwrite.
func (l *localDisk) Persist(ctx context.Context, reader io.Reader, size int64, contentType string) (string, error) {
	name := uuid.NewString() + extensionFor(contentType)

	tmp, err := os.CreateTemp(l.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("sync blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close blob: %w", err)
	}

	final := filepath.Join(l.dir, name)
	if err := os.Rename(tmp.Name(), final); err != nil {
		return "", fmt.Errorf("rename blob into place: %w", err)
	}

	return path.Join(l.urlPrefix, name), nil
}

func (l *localDisk) Close() error {
	return nil
}
