package codec_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/haivivi/songbook/pkg/codec"
	"github.com/haivivi/songbook/pkg/score"
)

const scenarioJSON = `{"songs":[{"id":"00000000-0000-0000-0000-000000000000","title":"T","composer":"C","publisher":"11111111-1111-1111-1111-111111111111","pickUp":0,"sheetMusic":[{"instrument":{"instrumentName":"Piano","clefTypes":["treble"]},"staves":[{"clefType":"treble","measures":[{"keySignature":0,"timeSignatureNumerator":4,"timeSignatureDenominator":4,"tempo":120,"musicElements":[{"type":"note","pitch":440,"midiNumber":69,"noteName":"A4","duration":1,"durationChar":"w","dotted":0,"tied":false,"lyric":""}]}]}]}]}]}`

func decodeJSON(t *testing.T, text string) ([]*score.Song, error) {
	t.Helper()
	return codec.Unmarshal([]byte(text), codec.FormatJSON, nil)
}

func TestDecodeScenario(t *testing.T) {
	songs, err := decodeJSON(t, scenarioJSON)
	if err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if len(songs) != 1 {
		t.Fatalf("len(songs) = %d, want 1", len(songs))
	}
	s := songs[0]
	if s.ID != uuid.Nil {
		t.Errorf("ID = %v, want nil uuid", s.ID)
	}
	if s.PublisherID.String() != "11111111-1111-1111-1111-111111111111" {
		t.Errorf("PublisherID = %v", s.PublisherID)
	}
	if s.Title != "T" || s.Composer != "C" {
		t.Errorf("Title, Composer = %q, %q", s.Title, s.Composer)
	}
	m := s.SheetMusic[0].Staves[0].Measures[0]
	if len(m.Elements) != 1 {
		t.Fatalf("len(Elements) = %d, want 1", len(m.Elements))
	}
	n, ok := m.Elements[0].(*score.Note)
	if !ok {
		t.Fatalf("element = %T, want *score.Note", m.Elements[0])
	}
	if n.MIDI != 69 || n.Name != "A4" || n.Symbol != "w" || n.Duration != 1 {
		t.Errorf("note = %+v", n)
	}
}

func mutate(t *testing.T, from, to string) string {
	t.Helper()
	if !strings.Contains(scenarioJSON, from) {
		t.Fatalf("scenario has no %q", from)
	}
	return strings.Replace(scenarioJSON, from, to, 1)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"unknown type", mutate(t, `"type":"note"`, `"type":"unknown"`), score.ErrUnknownElementType},
		{"missing id", mutate(t, `"id":"00000000-0000-0000-0000-000000000000",`, ``), score.ErrMissingField},
		{"missing songs", `{}`, score.ErrMissingField},
		{"title not string", mutate(t, `"title":"T"`, `"title":7`), score.ErrTypeMismatch},
		{"bad uuid", mutate(t, `"id":"00000000-0000-0000-0000-000000000000"`, `"id":"nope"`), score.ErrTypeMismatch},
		{"clefTypes not array", mutate(t, `"clefTypes":["treble"]`, `"clefTypes":"treble"`), score.ErrTypeMismatch},
		{"tempo fractional", mutate(t, `"tempo":120`, `"tempo":120.5`), score.ErrTypeMismatch},
		{"negative dotted", mutate(t, `"dotted":0`, `"dotted":-1`), score.ErrInvalidDotted},
		{"zero duration", mutate(t, `"duration":1,"durationChar":"w",`, `"duration":0,`), score.ErrInvalidDuration},
		{"large duration", mutate(t, `"duration":1,"durationChar":"w",`, `"duration":3,`), score.ErrInvalidDuration},
		{"no tone", mutate(t, `"pitch":440,"midiNumber":69,"noteName":"A4",`, ``), score.ErrMissingField},
		{"midi out of range", mutate(t, `"midiNumber":69`, `"midiNumber":128`), score.ErrInvalidPitch},
		{"bad name", mutate(t, `"pitch":440,"midiNumber":69,"noteName":"A4"`, `"noteName":"H4"`), score.ErrInvalidNoteName},
		{"not json", `{"songs":`, score.ErrMalformedDocument},
		{"null song", `{"songs":[null]}`, score.ErrMissingField},
		{"root array", `[]`, score.ErrTypeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeJSON(t, tt.doc)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecodeErrorPath(t *testing.T) {
	_, err := decodeJSON(t, mutate(t, `"type":"note"`, `"type":"unknown"`))
	var e *score.Error
	if !errors.As(err, &e) {
		t.Fatalf("error = %T, want *score.Error", err)
	}
	want := "songs[0].sheetMusic[0].staves[0].measures[0].musicElements[0].type"
	if e.Path != want {
		t.Errorf("Path = %q, want %q", e.Path, want)
	}
}

func TestDecodeNormalizes(t *testing.T) {
	// midiNumber wins over pitch and name, durationChar wins over duration.
	doc := mutate(t, `"pitch":440,"midiNumber":69,"noteName":"A4","duration":1,"durationChar":"w"`,
		`"pitch":100,"midiNumber":60,"noteName":"B2","duration":0.5,"durationChar":"q"`)
	songs, err := decodeJSON(t, doc)
	if err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	n := songs[0].SheetMusic[0].Staves[0].Measures[0].Elements[0].(*score.Note)
	if n.Name != "C4" || n.Symbol != "q" || n.Duration != 0.25 {
		t.Errorf("note = %+v, want C4 q 0.25", n)
	}
}

func TestDecodeEmptyDurationChar(t *testing.T) {
	songs, err := decodeJSON(t, mutate(t, `"duration":1,"durationChar":"w"`, `"duration":0.5,"durationChar":""`))
	if err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	n := songs[0].SheetMusic[0].Staves[0].Measures[0].Elements[0].(*score.Note)
	if n.Symbol != "h" || n.Duration != 0.5 {
		t.Errorf("note = %s %v, want h 0.5", n.Symbol, n.Duration)
	}

	_, err = decodeJSON(t, mutate(t, `"duration":1,"durationChar":"w",`, `"durationChar":"",`))
	if !errors.Is(err, score.ErrMissingField) {
		t.Errorf("empty durationChar alone: error = %v, want ErrMissingField", err)
	}
}

func TestDecodeMeasureDefaults(t *testing.T) {
	doc := mutate(t, `"keySignature":0,"timeSignatureNumerator":4,"timeSignatureDenominator":4`,
		`"keySignature":9,"timeSignatureNumerator":3,"timeSignatureDenominator":5`)
	songs, err := decodeJSON(t, doc)
	if err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	m := songs[0].SheetMusic[0].Staves[0].Measures[0]
	if m.KeySignature != 0 || m.TimeNumerator != 4 || m.TimeDenominator != 4 {
		t.Errorf("measure = %d %d/%d, want 0 4/4", m.KeySignature, m.TimeNumerator, m.TimeDenominator)
	}
}

func mustNote(t *testing.T, name string, v score.Value, lyric string) *score.Note {
	t.Helper()
	n, err := score.NewNoteFromName(name, v, lyric)
	if err != nil {
		t.Fatalf("NewNoteFromName(%q) error: %v", name, err)
	}
	return n
}

func sampleSong(t *testing.T) *score.Song {
	t.Helper()
	rest, err := score.NewRest(score.Value{Symbol: "q", Dotted: 1}, "")
	if err != nil {
		t.Fatal(err)
	}
	inner, err := score.NewTuplet(3, 2,
		mustNote(t, "E4", score.Value{Symbol: "s"}, ""),
		mustNote(t, "F4", score.Value{Symbol: "s"}, ""),
		mustNote(t, "G4", score.Value{Symbol: "s"}, ""),
	)
	if err != nil {
		t.Fatal(err)
	}
	tuplet, err := score.NewTuplet(3, 2,
		mustNote(t, "C4", score.Value{Symbol: "i"}, "la"),
		mustNote(t, "D4", score.Value{Symbol: "i", Tied: true}, ""),
		inner,
	)
	if err != nil {
		t.Fatal(err)
	}
	chord := score.NewChord("chord",
		mustNote(t, "C4", score.Value{Symbol: "h"}, ""),
		mustNote(t, "E4", score.Value{Symbol: "h"}, ""),
		mustNote(t, "G4", score.Value{Symbol: "h"}, ""),
	)

	s := score.NewSong("Round", "Trip", uuid.New())
	s.PickUp = 1
	s.SheetMusic = []score.SheetMusic{{
		Instrument: score.Instrument{Name: "Piano", ClefTypes: []score.ClefType{score.ClefTreble, score.ClefBass}},
		Staves: []score.Staff{
			{Clef: score.ClefTreble, Measures: []score.Measure{
				score.NewMeasure(2, 4, 4, 96, mustNote(t, "A4", score.Value{Symbol: "q", Tied: true}, "hi"), mustNote(t, "A4", score.Value{Symbol: "q"}, ""), chord),
				score.NewMeasure(2, 4, 4, -10, tuplet, rest),
			}},
			{Clef: score.ClefBass, Measures: []score.Measure{
				score.NewMeasure(-3, 6, 8, 60, mustNote(t, "C2", score.Value{Symbol: "h", Dotted: 1}, "")),
			}},
		},
	}}
	return s
}

func TestRoundTrip(t *testing.T) {
	want := []*score.Song{sampleSong(t)}

	for _, format := range []codec.Format{codec.FormatJSON, codec.FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			data, err := codec.Marshal(want, format)
			if err != nil {
				t.Fatalf("Marshal error: %v", err)
			}
			got, err := codec.Unmarshal(data, format, nil)
			if err != nil {
				t.Fatalf("Unmarshal error: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("msgpack", func(t *testing.T) {
		data, err := codec.MarshalSong(want[0])
		if err != nil {
			t.Fatalf("MarshalSong error: %v", err)
		}
		got, err := codec.UnmarshalSong(data)
		if err != nil {
			t.Fatalf("UnmarshalSong error: %v", err)
		}
		if diff := cmp.Diff(want[0], got); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("tree", func(t *testing.T) {
		got, err := codec.Decode(codec.Encode(want))
		if err != nil {
			t.Fatalf("Decode error: %v", err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestEncodeRestOmitsTone(t *testing.T) {
	rest, err := score.NewRest(score.Value{Symbol: "h"}, "")
	if err != nil {
		t.Fatal(err)
	}
	s := score.NewSong("R", "R", uuid.New())
	s.SheetMusic = []score.SheetMusic{{
		Instrument: score.Instrument{Name: "Piano", ClefTypes: []score.ClefType{score.ClefTreble}},
		Staves:     []score.Staff{{Clef: score.ClefTreble, Measures: []score.Measure{score.NewMeasure(0, 4, 4, 120, rest)}}},
	}}
	doc := codec.EncodeSong(s)
	el := doc["sheetMusic"].([]any)[0].(map[string]any)["staves"].([]any)[0].(map[string]any)["measures"].([]any)[0].(map[string]any)["musicElements"].([]any)[0].(map[string]any)
	for _, key := range []string{"pitch", "midiNumber", "noteName"} {
		if _, ok := el[key]; ok {
			t.Errorf("rest carries %q", key)
		}
	}
	if el["type"] != "rest" || el["durationChar"] != "h" {
		t.Errorf("rest = %v", el)
	}
}

func TestParseJSONRepair(t *testing.T) {
	broken := strings.TrimSuffix(scenarioJSON, "}") + ",}"
	broken = strings.Replace(broken, `"title":"T"`, `'title':'T'`, 1)

	if _, err := codec.ParseJSON([]byte(broken), nil); !errors.Is(err, score.ErrMalformedDocument) {
		t.Fatalf("ParseJSON without repair error = %v, want ErrMalformedDocument", err)
	}
	songs, err := codec.Unmarshal([]byte(broken), codec.FormatJSON, &codec.ParseOptions{Repair: true})
	if err != nil {
		t.Fatalf("Unmarshal with repair error: %v", err)
	}
	if songs[0].Title != "T" {
		t.Errorf("Title = %q, want T", songs[0].Title)
	}
}

func TestUnmarshalSongMalformed(t *testing.T) {
	if _, err := codec.UnmarshalSong([]byte{0xc1}); !errors.Is(err, score.ErrMalformedDocument) {
		t.Errorf("UnmarshalSong error = %v, want ErrMalformedDocument", err)
	}
}

func TestParseFormats(t *testing.T) {
	for _, format := range []codec.Format{codec.FormatJSON, codec.FormatYAML} {
		doc, err := codec.Parse([]byte(`{"songs": []}`), format, nil)
		if err != nil {
			t.Fatalf("Parse(%s) error: %v", format, err)
		}
		if _, ok := doc.(map[string]any); !ok {
			t.Errorf("Parse(%s) = %T, want map[string]any", format, doc)
		}
	}
	if _, err := codec.Parse([]byte(`{}`), "xml", nil); err == nil {
		t.Error("Parse(xml) succeeded, want error")
	}
}
