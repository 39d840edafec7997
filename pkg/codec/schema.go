package codec

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/haivivi/songbook/pkg/score"
)

func prop(typ string) *jsonschema.Schema { return &jsonschema.Schema{Type: typ} }

func arrayOf(items *jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "array", Items: items}
}

func ref(name string) *jsonschema.Schema { return &jsonschema.Schema{Ref: "#/$defs/" + name} }

// Schema returns the JSON Schema of a persisted document.
func Schema() *jsonschema.Schema {
	valueProps := func(extra map[string]*jsonschema.Schema) map[string]*jsonschema.Schema {
		m := map[string]*jsonschema.Schema{
			keyType:         prop("string"),
			keyDuration:     prop("number"),
			keyDurationChar: prop("string"),
			keyDotted:       prop("integer"),
			keyTied:         prop("boolean"),
			keyLyric:        prop("string"),
		}
		for k, v := range extra {
			m[k] = v
		}
		return m
	}
	note := &jsonschema.Schema{
		Type: "object",
		Properties: valueProps(map[string]*jsonschema.Schema{
			keyPitch:      prop("number"),
			keyMIDINumber: prop("integer"),
			keyNoteName:   prop("string"),
		}),
	}
	element := &jsonschema.Schema{
		Type:     "object",
		Required: []string{keyType},
		Properties: valueProps(map[string]*jsonschema.Schema{
			keyType:            {Type: "string", Enum: []any{"note", "rest", "chord", "tuplet"}},
			keyPitch:           prop("number"),
			keyMIDINumber:      prop("integer"),
			keyNoteName:        prop("string"),
			keyNotes:           arrayOf(ref("note")),
			keySubdivisions:    prop("integer"),
			keyImpliedDivision: prop("integer"),
			keyElements:        arrayOf(ref("element")),
		}),
	}
	measure := &jsonschema.Schema{
		Type:     "object",
		Required: []string{keyKeySignature, keyTimeNumerator, keyTimeDenominator, keyTempo, keyMusicElements},
		Properties: map[string]*jsonschema.Schema{
			keyKeySignature:    prop("integer"),
			keyTimeNumerator:   prop("integer"),
			keyTimeDenominator: prop("integer"),
			keyTempo:           prop("integer"),
			keyMusicElements:   arrayOf(ref("element")),
		},
	}
	staff := &jsonschema.Schema{
		Type:     "object",
		Required: []string{keyClefType, keyMeasures},
		Properties: map[string]*jsonschema.Schema{
			keyClefType: prop("string"),
			keyMeasures: arrayOf(measure),
		},
	}
	sheet := &jsonschema.Schema{
		Type:     "object",
		Required: []string{keyInstrument, keyStaves},
		Properties: map[string]*jsonschema.Schema{
			keyInstrument: {
				Type:     "object",
				Required: []string{keyInstrumentName, keyClefTypes},
				Properties: map[string]*jsonschema.Schema{
					keyInstrumentName: prop("string"),
					keyClefTypes:      arrayOf(prop("string")),
				},
			},
			keyStaves: arrayOf(staff),
		},
	}
	song := &jsonschema.Schema{
		Type:     "object",
		Required: []string{keyID, keyTitle, keyComposer, keyPublisher, keyPickUp, keySheetMusic},
		Properties: map[string]*jsonschema.Schema{
			keyID:         prop("string"),
			keyTitle:      prop("string"),
			keyComposer:   prop("string"),
			keyPublisher:  prop("string"),
			keyPickUp:     prop("integer"),
			keySheetMusic: arrayOf(sheet),
		},
	}
	return &jsonschema.Schema{
		Schema:   "https://json-schema.org/draft/2020-12/schema",
		Title:    "songbook document",
		Type:     "object",
		Required: []string{keySongs},
		Properties: map[string]*jsonschema.Schema{
			keySongs: arrayOf(song),
		},
		Defs: map[string]*jsonschema.Schema{
			"note":    note,
			"element": element,
		},
	}
}

var (
	resolveOnce sync.Once
	resolved    *jsonschema.Resolved
	resolveErr  error
)

// Validate checks doc against Schema. The tree is normalized through JSON
// first so YAML and msgpack trees validate the same way. Failures match
// score.ErrMalformedDocument.
func Validate(doc any) error {
	resolveOnce.Do(func() {
		resolved, resolveErr = Schema().Resolve(nil)
	})
	if resolveErr != nil {
		return fmt.Errorf("codec: resolve schema: %w", resolveErr)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", score.ErrMalformedDocument, err)
	}
	var normalized any
	if err := json.Unmarshal(data, &normalized); err != nil {
		return fmt.Errorf("%w: %v", score.ErrMalformedDocument, err)
	}
	if err := resolved.Validate(normalized); err != nil {
		return fmt.Errorf("%w: %v", score.ErrMalformedDocument, err)
	}
	return nil
}
