// Package songfile loads and saves score files through a storage.FileStore,
// choosing the codec by file extension.
package songfile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/haivivi/songbook/pkg/codec"
	"github.com/haivivi/songbook/pkg/musicxml"
	"github.com/haivivi/songbook/pkg/score"
	"github.com/haivivi/songbook/pkg/storage"
)

// Format identifies a score file format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMusicXML Format = "musicxml"
	FormatMXL      Format = "mxl"
)

// ErrUnknownFormat is returned for extensions no codec handles.
var ErrUnknownFormat = errors.New("songfile: unknown format")

// DetectFormat picks the format of name from its extension.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".musicxml", ".xml":
		return FormatMusicXML, nil
	case ".mxl":
		return FormatMXL, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// LoadOptions configures Load.
type LoadOptions struct {
	// Format overrides extension detection.
	Format Format

	// RepairJSON retries malformed JSON through jsonrepair.
	RepairJSON bool

	// Validate checks JSON and YAML documents against codec.Schema before
	// decoding.
	Validate bool

	// Logger is optional. If nil, uses slog.Default().
	Logger *slog.Logger
}

// Load reads the songs stored in name. MusicXML files yield one song.
func Load(ctx context.Context, fs storage.FileStore, name string, opts *LoadOptions) ([]*score.Song, error) {
	var o LoadOptions
	if opts != nil {
		o = *opts
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	format := o.Format
	if format == "" {
		var err error
		if format, err = DetectFormat(name); err != nil {
			return nil, err
		}
	}
	data, err := storage.ReadAll(ctx, fs, name)
	if err != nil {
		return nil, err
	}
	o.Logger.Debug("songfile: loading", "path", name, "format", format, "bytes", len(data))
	return Parse(data, format, &o)
}

// Parse decodes data in the given format.
func Parse(data []byte, format Format, opts *LoadOptions) ([]*score.Song, error) {
	var o LoadOptions
	if opts != nil {
		o = *opts
	}
	switch format {
	case FormatMusicXML, FormatMXL:
		song, err := musicxml.ImportBytes(data, &musicxml.Options{Logger: o.Logger})
		if err != nil {
			return nil, err
		}
		return []*score.Song{song}, nil
	case FormatJSON, FormatYAML:
		parse := &codec.ParseOptions{Repair: o.RepairJSON}
		if !o.Validate {
			return codec.Unmarshal(data, codec.Format(format), parse)
		}
		doc, err := codec.Parse(data, codec.Format(format), parse)
		if err != nil {
			return nil, err
		}
		if err := codec.Validate(doc); err != nil {
			return nil, err
		}
		return codec.Decode(doc)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Save writes songs to name as JSON or YAML.
func Save(ctx context.Context, fs storage.FileStore, name string, songs []*score.Song) error {
	format, err := DetectFormat(name)
	if err != nil {
		return err
	}
	data, err := Marshal(songs, format)
	if err != nil {
		return err
	}
	return storage.WriteAll(ctx, fs, name, data)
}

// Marshal encodes songs as JSON or YAML.
func Marshal(songs []*score.Song, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return codec.Marshal(songs, codec.FormatJSON)
	case FormatYAML:
		return codec.Marshal(songs, codec.FormatYAML)
	}
	return nil, fmt.Errorf("songfile: cannot save as %s", format)
}
