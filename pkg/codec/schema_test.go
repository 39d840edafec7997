package codec_test

import (
	"errors"
	"testing"

	"github.com/haivivi/songbook/pkg/codec"
	"github.com/haivivi/songbook/pkg/score"
)

func TestValidate(t *testing.T) {
	doc, err := codec.ParseJSON([]byte(scenarioJSON), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := codec.Validate(doc); err != nil {
		t.Errorf("Validate(scenario) = %v", err)
	}

	encoded := codec.Encode([]*score.Song{sampleSong(t)})
	if err := codec.Validate(encoded); err != nil {
		t.Errorf("Validate(encoded) = %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing id", mutate(t, `"id":"00000000-0000-0000-0000-000000000000",`, ``)},
		{"unknown type", mutate(t, `"type":"note"`, `"type":"unknown"`)},
		{"tempo string", mutate(t, `"tempo":120`, `"tempo":"fast"`)},
		{"no songs", `{"tracks":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := codec.ParseJSON([]byte(tt.doc), nil)
			if err != nil {
				t.Fatal(err)
			}
			if err := codec.Validate(doc); !errors.Is(err, score.ErrMalformedDocument) {
				t.Errorf("Validate error = %v, want ErrMalformedDocument", err)
			}
		})
	}
}
