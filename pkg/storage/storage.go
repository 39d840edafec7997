// Package storage reads and writes score files on local disk or in an
// S3-compatible object store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// ErrInvalidPath is returned for paths that are absolute or climb out of the
// store root.
var ErrInvalidPath = errors.New("storage: invalid path")

// FileStore is a flat file namespace.
//
// Paths use forward slashes and are relative to the store root.
// Implementations are safe for concurrent use.
type FileStore interface {
	// Read opens a file. A missing file yields an error wrapping
	// os.ErrNotExist. The caller closes the reader.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write creates or truncates a file. Data is durable once Close returns
	// nil.
	Write(ctx context.Context, path string) (io.WriteCloser, error)

	// Delete removes a file. Deleting a missing file is not an error.
	Delete(ctx context.Context, path string) error

	// Exists reports whether a file exists.
	Exists(ctx context.Context, path string) (bool, error)
}

// ReadAll returns the contents of a file.
func ReadAll(ctx context.Context, fs FileStore, name string) ([]byte, error) {
	r, err := fs.Read(ctx, name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", name, err)
	}
	return data, nil
}

// WriteAll replaces the contents of a file with data.
func WriteAll(ctx context.Context, fs FileStore, name string, data []byte) error {
	w, err := fs.Write(ctx, name)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("storage: write %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("storage: write %s: %w", name, err)
	}
	return nil
}

// clean validates a store path and returns its canonical form.
func clean(p string) (string, error) {
	if p == "" || strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	c := path.Clean(p)
	if c == "." || c == ".." || strings.HasPrefix(c, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	return c, nil
}

// contentType guesses the MIME type of a score file from its extension.
func contentType(p string) string {
	switch strings.ToLower(path.Ext(p)) {
	case ".json":
		return "application/json"
	case ".yaml", ".yml":
		return "application/yaml"
	case ".musicxml", ".xml":
		return "application/vnd.recordare.musicxml+xml"
	case ".mxl":
		return "application/vnd.recordare.musicxml"
	case ".mid", ".midi":
		return "audio/midi"
	default:
		return "application/octet-stream"
	}
}
