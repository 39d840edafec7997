package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
)

// OutputFormat selects how command results are printed.
type OutputFormat string

const (
	// FormatYAML is the default.
	FormatYAML OutputFormat = "yaml"
	FormatJSON OutputFormat = "json"
	// FormatRaw writes strings and byte slices as is and falls back to YAML.
	FormatRaw OutputFormat = "raw"
)

// OutputOptions configures Output.
type OutputOptions struct {
	Format OutputFormat

	// File is the output path. Empty means Writer, else stdout.
	File string

	// Indent for JSON. Defaults to two spaces.
	Indent string

	Writer io.Writer
}

// Output writes result in the requested format.
func Output(result any, opts OutputOptions) error {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	if opts.File != "" {
		f, err := os.Create(opts.File)
		if err != nil {
			return fmt.Errorf("cli: create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch opts.Format {
	case FormatYAML, "":
		return outputYAML(w, result)
	case FormatJSON:
		enc := json.NewEncoder(w)
		indent := opts.Indent
		if indent == "" {
			indent = "  "
		}
		enc.SetIndent("", indent)
		return enc.Encode(result)
	case FormatRaw:
		switch v := result.(type) {
		case []byte:
			_, err := w.Write(v)
			return err
		case string:
			_, err := io.WriteString(w, v)
			return err
		}
		return outputYAML(w, result)
	default:
		return fmt.Errorf("cli: unsupported output format %q", opts.Format)
	}
}

func outputYAML(w io.Writer, result any) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("cli: format output: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// PrintSuccess prints a check-marked line to w.
func PrintSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "✓ "+format+"\n", args...)
}

// PrintWarning prints a warning line to w.
func PrintWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "⚠ "+format+"\n", args...)
}
