package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalDiskPersist(t *testing.T) {
	dir := t.TempDir()
	backend, err := New(Config{Provider: "local", LocalDir: dir, URLPrefix: "/uploads"})
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}

	blob := []byte("fake webm payload")
	ref, err := backend.Persist(context.Background(), strings.NewReader(string(blob)), int64(len(blob)), "audio/webm")
	if err != nil {
		t.Fatalf("persist: %v", err)
	}

	if !strings.HasPrefix(ref, "/uploads/") {
		t.Fatalf("ref=%q, want /uploads/ prefix", ref)
	}
	if !strings.HasSuffix(ref, ".webm") {
		t.Fatalf("ref=%q, want .webm extension", ref)
	}

	data, err := os.ReadFile(filepath.Join(dir, filepath.Base(ref)))
	if err != nil {
		t.Fatalf("read stored blob: %v", err)
	}
	if string(data) != string(blob) {
		t.Fatalf("stored=%q, want %q", data, blob)
	}
}

func TestLocalDiskDistinctReferences(t *testing.T) {
	dir := t.TempDir()
	backend, err := New(Config{Provider: "local", LocalDir: dir, URLPrefix: "/uploads"})
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		ref, err := backend.Persist(context.Background(), strings.NewReader("x"), 1, "audio/ogg")
		if err != nil {
			t.Fatalf("persist %d: %v", i, err)
		}
		if seen[ref] {
			t.Fatalf("colliding reference %q", ref)
		}
		seen[ref] = true
	}
}

func TestLocalDiskNoPartialFiles(t *testing.T) {
	dir := t.TempDir()
	backend, err := New(Config{Provider: "local", LocalDir: dir, URLPrefix: "/uploads"})
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}

	if _, err := backend.Persist(context.Background(), failingReader{}, 10, "audio/webm"); err == nil {
		t.Fatal("persist with failing reader succeeded")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), ".upload-") {
			t.Fatalf("partial blob exposed as %q", e.Name())
		}
	}
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	if _, err := New(Config{Provider: "carrier-pigeon"}); err == nil {
		t.Fatal("unknown provider accepted")
	}
}

func TestExtensionFor(t *testing.T) {
	cases := map[string]string{
		"audio/webm":               ".webm",
		"video/webm":               ".webm",
		"audio/ogg":                ".ogg",
		"audio/mpeg":               ".mp3",
		"application/x-no-such-ct": ".bin",
	}
	for ct, want := range cases {
		if got := extensionFor(ct); got != want {
			t.Errorf("extensionFor(%q)=%q, want %q", ct, got, want)
		}
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, os.ErrClosed
}
