package songfile_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/haivivi/songbook/pkg/score"
	"github.com/haivivi/songbook/pkg/songfile"
	"github.com/haivivi/songbook/pkg/storage"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		want songfile.Format
	}{
		{"a.json", songfile.FormatJSON},
		{"dir/a.YAML", songfile.FormatYAML},
		{"a.yml", songfile.FormatYAML},
		{"a.musicxml", songfile.FormatMusicXML},
		{"a.xml", songfile.FormatMusicXML},
		{"a.mxl", songfile.FormatMXL},
	}
	for _, tt := range tests {
		got, err := songfile.DetectFormat(tt.name)
		if err != nil || got != tt.want {
			t.Errorf("DetectFormat(%q) = %q, %v; want %q", tt.name, got, err, tt.want)
		}
	}
	if _, err := songfile.DetectFormat("a.mp3"); !errors.Is(err, songfile.ErrUnknownFormat) {
		t.Errorf("DetectFormat(a.mp3) error = %v, want ErrUnknownFormat", err)
	}
}

func sample(t *testing.T) []*score.Song {
	t.Helper()
	n, err := score.NewNoteFromName("D4", score.Value{Symbol: "h", Dotted: 1}, "do")
	if err != nil {
		t.Fatal(err)
	}
	r, err := score.NewRest(score.Value{Symbol: "q"}, "")
	if err != nil {
		t.Fatal(err)
	}
	s := score.NewSong("Sample", "Anon", uuid.New())
	s.SheetMusic = []score.SheetMusic{{
		Instrument: score.Instrument{Name: "Voice", ClefTypes: []score.ClefType{score.ClefTreble}},
		Staves:     []score.Staff{{Clef: score.ClefTreble, Measures: []score.Measure{score.NewMeasure(1, 4, 4, 100, n, r)}}},
	}}
	return []*score.Song{s}
}

func TestSaveLoad(t *testing.T) {
	fs, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	want := sample(t)

	for _, name := range []string{"out/sample.json", "out/sample.yaml"} {
		t.Run(name, func(t *testing.T) {
			if err := songfile.Save(ctx, fs, name, want); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := songfile.Load(ctx, fs, name, &songfile.LoadOptions{Validate: true})
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Load mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if err := songfile.Save(ctx, fs, "out/sample.musicxml", want); err == nil {
		t.Error("Save as musicxml succeeded")
	}
}

func TestLoadMusicXML(t *testing.T) {
	fs, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	doc := `<score-partwise><movement-title>Tiny</movement-title><part id="P1"><measure number="1">
<note><pitch><step>C</step><octave>4</octave></pitch><duration>4</duration><type>whole</type></note>
</measure></part></score-partwise>`
	if err := storage.WriteAll(ctx, fs, "tiny.musicxml", []byte(doc)); err != nil {
		t.Fatal(err)
	}
	songs, err := songfile.Load(ctx, fs, "tiny.musicxml", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(songs) != 1 || songs[0].Title != "Tiny" {
		t.Fatalf("songs = %+v", songs)
	}
}

func TestLoadErrors(t *testing.T) {
	fs, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if _, err := songfile.Load(ctx, fs, "missing.json", nil); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load missing error = %v, want os.ErrNotExist", err)
	}

	if err := storage.WriteAll(ctx, fs, "bad.json", []byte(`{"songs":[{"title":"x"}]}`)); err != nil {
		t.Fatal(err)
	}
	if _, err := songfile.Load(ctx, fs, "bad.json", nil); !errors.Is(err, score.ErrMissingField) {
		t.Errorf("Load bad error = %v, want ErrMissingField", err)
	}
	if _, err := songfile.Load(ctx, fs, "bad.json", &songfile.LoadOptions{Validate: true}); !errors.Is(err, score.ErrMalformedDocument) {
		t.Errorf("Load bad with validation error = %v, want ErrMalformedDocument", err)
	}

	if err := storage.WriteAll(ctx, fs, "trailing.json", []byte(`{"songs":[],}`)); err != nil {
		t.Fatal(err)
	}
	if _, err := songfile.Load(ctx, fs, "trailing.json", nil); !errors.Is(err, score.ErrMalformedDocument) {
		t.Errorf("Load trailing comma error = %v, want ErrMalformedDocument", err)
	}
	songs, err := songfile.Load(ctx, fs, "trailing.json", &songfile.LoadOptions{RepairJSON: true})
	if err != nil || len(songs) != 0 {
		t.Errorf("Load repaired = %v, %v", songs, err)
	}
	songs, err = songfile.Load(ctx, fs, "trailing.json", &songfile.LoadOptions{RepairJSON: true, Validate: true})
	if err != nil || len(songs) != 0 {
		t.Errorf("Load repaired with validation = %v, %v", songs, err)
	}
}
