package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"time"
)

// Backend durably persists a binary blob and returns a retrieval reference:
// a relative path servable as a static asset, or a time-limited signed URL,
// depending on the adapter. On error no reference is ever returned.
type Backend interface {
	Persist(ctx context.Context, reader io.Reader, size int64, contentType string) (string, error)
	Close() error
}

// Config contains the information required to construct a Backend.
type Config struct {
	Provider     string
	LocalDir     string
	URLPrefix    string
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	UseSSL       bool
	SignedURLTTL time.Duration
}

// New creates a storage backend based on the given configuration.
func New(cfg Config) (Backend, error) {
	switch cfg.Provider {
	case "local":
		return newLocalDisk(cfg.LocalDir, cfg.URLPrefix)
	case "minio", "s3":
		return newObjectStore(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.Provider)
	}
}

// extensionFor picks a filename extension for the given content type.
// Recordings arrive as audio/webm, audio/ogg and the like; anything
// unrecognized falls back to a neutral extension.
func extensionFor(contentType string) string {
	switch contentType {
	case "audio/webm", "video/webm":
		return ".webm"
	case "audio/ogg":
		return ".ogg"
	case "audio/mpeg":
		return ".mp3"
	case "audio/wav", "audio/x-wav":
		return ".wav"
	case "video/mp4", "audio/mp4":
		return ".mp4"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}
