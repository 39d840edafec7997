package midifile

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/haivivi/songbook/pkg/score"
)

type noteEvent struct {
	Tick uint32
	On   bool
	Ch   uint8
	Key  uint8
}

func noteEvents(tr smf.Track) []noteEvent {
	var out []noteEvent
	var tick uint32
	for _, ev := range tr {
		tick += ev.Delta
		msg := midi.Message(ev.Message)
		var ch, key, vel uint8
		switch {
		case msg.GetNoteStart(&ch, &key, &vel):
			out = append(out, noteEvent{tick, true, ch, key})
		case msg.GetNoteEnd(&ch, &key):
			out = append(out, noteEvent{tick, false, ch, key})
		}
	}
	return out
}

func note(t *testing.T, name, symbol string, tied bool) *score.Note {
	t.Helper()
	n, err := score.NewNoteFromName(name, score.Value{Symbol: symbol, Tied: tied}, "")
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func song(staves ...score.Staff) *score.Song {
	s := score.NewSong("Test", "Anon", uuid.New())
	s.SheetMusic = []score.SheetMusic{{
		Instrument: score.Instrument{Name: "Piano", ClefTypes: []score.ClefType{score.ClefTreble}},
		Staves:     staves,
	}}
	return s
}

func roundTrip(t *testing.T, s *score.Song) *smf.SMF {
	t.Helper()
	var buf bytes.Buffer
	if err := Write(&buf, s, nil); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	got, err := smf.ReadFrom(&buf)
	if err != nil {
		t.Fatalf("ReadFrom error: %v", err)
	}
	return got
}

func TestWriteTiesAndTempo(t *testing.T) {
	st := score.Staff{Clef: score.ClefTreble, Measures: []score.Measure{
		score.NewMeasure(0, 4, 4, 90,
			note(t, "A4", "q", true),
			note(t, "A4", "q", false),
			note(t, "C4", "h", false),
		),
		score.NewMeasure(0, 3, 4, -5, note(t, "E4", "h", false)),
	}}
	got := roundTrip(t, song(st))
	if len(got.Tracks) != 2 {
		t.Fatalf("len(Tracks) = %d, want 2", len(got.Tracks))
	}

	want := []noteEvent{
		{0, true, 0, 69},
		{1920, false, 0, 69},
		{1920, true, 0, 60},
		{3840, false, 0, 60},
		{3840, true, 0, 64},
		{5760, false, 0, 64},
	}
	if diff := cmp.Diff(want, noteEvents(got.Tracks[1])); diff != "" {
		t.Errorf("note events mismatch (-want +got):\n%s", diff)
	}

	var tempos []float64
	var meters [][2]uint8
	for _, ev := range got.Tracks[0] {
		var bpm float64
		var num, den uint8
		if ev.Message.GetMetaTempo(&bpm) {
			tempos = append(tempos, bpm)
		}
		if ev.Message.GetMetaMeter(&num, &den) {
			meters = append(meters, [2]uint8{num, den})
		}
	}
	if diff := cmp.Diff([]float64{90, 120}, tempos); diff != "" {
		t.Errorf("tempos mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][2]uint8{{4, 4}, {3, 4}}, meters); diff != "" {
		t.Errorf("meters mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteChordAndTuplet(t *testing.T) {
	triplet, err := score.NewTuplet(3, 2, note(t, "C5", "i", false), note(t, "D5", "i", false), note(t, "E5", "i", false))
	if err != nil {
		t.Fatal(err)
	}
	st := score.Staff{Clef: score.ClefTreble, Measures: []score.Measure{
		score.NewMeasure(0, 2, 4, 120,
			score.NewChord("", note(t, "C4", "q", false), note(t, "E4", "q", false)),
			triplet,
		),
	}}
	got := roundTrip(t, song(st))
	want := []noteEvent{
		{0, true, 0, 60},
		{0, true, 0, 64},
		{960, false, 0, 60},
		{960, false, 0, 64},
		{960, true, 0, 72},
		{1280, false, 0, 72},
		{1280, true, 0, 74},
		{1600, false, 0, 74},
		{1600, true, 0, 76},
		{1920, false, 0, 76},
	}
	if diff := cmp.Diff(want, noteEvents(got.Tracks[1])); diff != "" {
		t.Errorf("note events mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteTieIntoChord(t *testing.T) {
	st := score.Staff{Clef: score.ClefTreble, Measures: []score.Measure{
		score.NewMeasure(0, 4, 4, 120,
			note(t, "G4", "h", true),
			score.NewChord("", note(t, "G4", "q", false), note(t, "B4", "q", false)),
			note(t, "D5", "q", true),
		),
	}}
	got := roundTrip(t, song(st))
	want := []noteEvent{
		{0, true, 0, 67},
		{1920, true, 0, 71},
		{2880, false, 0, 67},
		{2880, false, 0, 71},
		{2880, true, 0, 74},
		{3840, false, 0, 74},
	}
	if diff := cmp.Diff(want, noteEvents(got.Tracks[1])); diff != "" {
		t.Errorf("note events mismatch (-want +got):\n%s", diff)
	}
}

func TestChannelFor(t *testing.T) {
	tests := []struct {
		index int
		clef  score.ClefType
		want  uint8
	}{
		{0, score.ClefTreble, 0},
		{8, score.ClefBass, 8},
		{9, score.ClefTreble, 10},
		{14, score.ClefTreble, 15},
		{15, score.ClefTreble, 0},
		{3, score.ClefPercussion, 9},
	}
	for _, tt := range tests {
		if got := channelFor(tt.index, tt.clef); got != tt.want {
			t.Errorf("channelFor(%d, %s) = %d, want %d", tt.index, tt.clef, got, tt.want)
		}
	}
}

func TestBuildTrackNames(t *testing.T) {
	s := song(score.Staff{Clef: score.ClefTreble}, score.Staff{Clef: score.ClefBass})
	got, err := Build(s, &Options{TicksPerQuarter: 480})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if len(got.Tracks) != 3 {
		t.Fatalf("len(Tracks) = %d, want 3", len(got.Tracks))
	}
	if tf, ok := got.TimeFormat.(smf.MetricTicks); !ok || tf != 480 {
		t.Errorf("TimeFormat = %v, want 480 ticks", got.TimeFormat)
	}
	var name string
	if !got.Tracks[1][0].Message.GetMetaTrackName(&name) || name != "Piano" {
		t.Errorf("track name = %q, want Piano", name)
	}
}
