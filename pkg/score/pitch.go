package score

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Tuning reference: A4 is MIDI 69 at 440 Hz, twelve-tone equal temperament.
const (
	ReferencePitch = 440.0
	ReferenceMIDI  = 69

	MinMIDI = 0
	MaxMIDI = 127
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var letterOffsets = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// MIDIFromPitch returns the nearest MIDI number for a frequency in Hz.
func MIDIFromPitch(pitch float64) (int, error) {
	if pitch <= 0 || math.IsNaN(pitch) || math.IsInf(pitch, 0) {
		return 0, Errorf(ErrInvalidPitch, "", "pitch %v must be positive", pitch)
	}
	midi := int(math.Round(ReferenceMIDI + 12*math.Log2(pitch/ReferencePitch)))
	if midi < MinMIDI || midi > MaxMIDI {
		return 0, Errorf(ErrInvalidPitch, "", "pitch %v Hz is outside the MIDI range", pitch)
	}
	return midi, nil
}

// PitchFromMIDI returns the equal-tempered frequency of a MIDI number.
func PitchFromMIDI(midi int) float64 {
	return ReferencePitch * math.Pow(2, float64(midi-ReferenceMIDI)/12)
}

// NameFromMIDI returns the sharp-spelled note name of a MIDI number, e.g.
// 69 => "A4", 61 => "C#4", 0 => "C-1".
func NameFromMIDI(midi int) string {
	pc := ((midi % 12) + 12) % 12
	octave := floorDiv(midi, 12) - 1
	return noteNames[pc] + strconv.Itoa(octave)
}

// MIDIFromName parses a note name made of a letter A-G, any number of '#' or
// 'b' accidentals and a signed octave number.
func MIDIFromName(name string) (int, error) {
	s := strings.TrimSpace(name)
	if s == "" {
		return 0, Errorf(ErrInvalidNoteName, "", "empty note name")
	}
	base, ok := letterOffsets[upper(s[0])]
	if !ok {
		return 0, Errorf(ErrInvalidNoteName, "", "%q: unknown letter", name)
	}
	i := 1
	alter := 0
	for i < len(s) && (s[i] == '#' || s[i] == 'b') {
		if s[i] == '#' {
			alter++
		} else {
			alter--
		}
		i++
	}
	octave, err := strconv.Atoi(s[i:])
	if err != nil {
		return 0, Errorf(ErrInvalidNoteName, "", "%q: missing or bad octave", name)
	}
	midi := (octave+1)*12 + base + alter
	if midi < MinMIDI || midi > MaxMIDI {
		return 0, Errorf(ErrInvalidNoteName, "", "%q is outside the MIDI range", name)
	}
	return midi, nil
}

// Tone is the agreed triple of pitch, MIDI number and note name.
type Tone struct {
	Pitch float64
	MIDI  int
	Name  string
}

// ToneFromMIDI derives a Tone from a MIDI number.
func ToneFromMIDI(midi int) (Tone, error) {
	if midi < MinMIDI || midi > MaxMIDI {
		return Tone{}, Errorf(ErrInvalidPitch, "", "MIDI number %d outside 0..127", midi)
	}
	return Tone{Pitch: PitchFromMIDI(midi), MIDI: midi, Name: NameFromMIDI(midi)}, nil
}

// ToneFromPitch derives a Tone from a frequency. The stored pitch is snapped
// to the equal-tempered frequency of the nearest MIDI number.
func ToneFromPitch(pitch float64) (Tone, error) {
	midi, err := MIDIFromPitch(pitch)
	if err != nil {
		return Tone{}, err
	}
	return ToneFromMIDI(midi)
}

// ToneFromName derives a Tone from a note name.
func ToneFromName(name string) (Tone, error) {
	midi, err := MIDIFromName(name)
	if err != nil {
		return Tone{}, err
	}
	return ToneFromMIDI(midi)
}

func (t Tone) String() string {
	return fmt.Sprintf("%s(%d, %.2fHz)", t.Name, t.MIDI, t.Pitch)
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
