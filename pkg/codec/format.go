package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kaptinlin/jsonrepair"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/haivivi/songbook/pkg/score"
)

// Format is a textual framing of the document tree.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseOptions configures ParseJSON.
type ParseOptions struct {
	// Repair retries a document that fails with a JSON syntax error after
	// running it through jsonrepair (trailing commas, single quotes,
	// unquoted keys, truncated input).
	Repair bool
}

// ParseJSON parses data into a document tree.
func ParseJSON(data []byte, opts *ParseOptions) (any, error) {
	var doc any
	err := json.Unmarshal(data, &doc)
	if err == nil {
		return doc, nil
	}
	var syntaxErr *json.SyntaxError
	if opts != nil && opts.Repair && errors.As(err, &syntaxErr) {
		fixed, rerr := jsonrepair.JSONRepair(string(data))
		if rerr == nil {
			if err = json.Unmarshal([]byte(fixed), &doc); err == nil {
				return doc, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: json: %v", score.ErrMalformedDocument, err)
}

// ParseYAML parses data into a document tree.
func ParseYAML(data []byte) (any, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: yaml: %v", score.ErrMalformedDocument, err)
	}
	return doc, nil
}

// Parse parses data in the given format into a document tree.
func Parse(data []byte, format Format, opts *ParseOptions) (any, error) {
	switch format {
	case FormatJSON:
		return ParseJSON(data, opts)
	case FormatYAML:
		return ParseYAML(data)
	}
	return nil, fmt.Errorf("codec: unsupported format %q", format)
}

// Unmarshal parses and decodes a document in the given format.
func Unmarshal(data []byte, format Format, opts *ParseOptions) ([]*score.Song, error) {
	doc, err := Parse(data, format, opts)
	if err != nil {
		return nil, err
	}
	return Decode(doc)
}

// Marshal encodes songs as a document in the given format.
func Marshal(songs []*score.Song, format Format) ([]byte, error) {
	doc := Encode(songs)
	switch format {
	case FormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatYAML:
		return yaml.Marshal(doc)
	default:
		return nil, fmt.Errorf("codec: unsupported format %q", format)
	}
}

// MarshalSong encodes one song object as msgpack.
func MarshalSong(s *score.Song) ([]byte, error) {
	return msgpack.Marshal(EncodeSong(s))
}

// UnmarshalSong decodes a msgpack song object.
func UnmarshalSong(data []byte) (*score.Song, error) {
	var obj map[string]any
	if err := msgpack.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("%w: msgpack: %v", score.ErrMalformedDocument, err)
	}
	return DecodeSong(obj)
}
