package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestLocal(t *testing.T) *Local {
	t.Helper()
	s, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestLocalRoundTrip(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	if err := WriteAll(ctx, s, "scores/ode.json", []byte(`{"songs":[]}`)); err != nil {
		t.Fatal(err)
	}
	got, err := ReadAll(ctx, s, "scores/ode.json")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"songs":[]}` {
		t.Fatalf("ReadAll = %q", got)
	}

	// Overwrite with shorter content.
	if err := WriteAll(ctx, s, "scores/ode.json", []byte("{}")); err != nil {
		t.Fatal(err)
	}
	got, _ = ReadAll(ctx, s, "scores/ode.json")
	if string(got) != "{}" {
		t.Fatalf("ReadAll after overwrite = %q", got)
	}

	entries, err := os.ReadDir(filepath.Join(s.Root(), "scores"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("scores dir has %d entries, want 1 (temp files left behind?)", len(entries))
	}
}

func TestLocalMissing(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	if _, err := s.Read(ctx, "missing.json"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Read error = %v, want os.ErrNotExist", err)
	}
	ok, err := s.Exists(ctx, "missing.json")
	if err != nil || ok {
		t.Fatalf("Exists = %v, %v", ok, err)
	}
	if err := s.Delete(ctx, "missing.json"); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
}

func TestLocalDelete(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	if err := WriteAll(ctx, s, "a.yaml", []byte("songs: []")); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.Exists(ctx, "a.yaml"); !ok {
		t.Fatal("Exists = false after write")
	}
	if err := s.Delete(ctx, "a.yaml"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.Exists(ctx, "a.yaml"); ok {
		t.Fatal("Exists = true after delete")
	}
}

func TestLocalRejectsEscapes(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()
	for _, p := range []string{"", "/etc/passwd", "../x", "a/../../x", "."} {
		if _, err := s.Read(ctx, p); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("Read(%q) error = %v, want ErrInvalidPath", p, err)
		}
	}
	if _, err := s.Write(ctx, "a/../b.json"); err != nil {
		t.Errorf("Write(a/../b.json) = %v, want ok", err)
	}
}

func TestNewLocalCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "dir")
	s, err := NewLocal(dir)
	if err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(s.Root())
	if err != nil {
		t.Fatal(err)
	}
	if !info.IsDir() {
		t.Fatal("root is not a directory")
	}
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		"a.json":      "application/json",
		"a.YML":       "application/yaml",
		"a.musicxml":  "application/vnd.recordare.musicxml+xml",
		"a.mxl":       "application/vnd.recordare.musicxml",
		"out/a.mid":   "audio/midi",
		"unknown.bin": "application/octet-stream",
	}
	for p, want := range tests {
		if got := contentType(p); got != want {
			t.Errorf("contentType(%q) = %q, want %q", p, got, want)
		}
	}
}
