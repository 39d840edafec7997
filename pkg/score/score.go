// Package score models a musical score as a typed document tree:
//
//	Song -> SheetMusic -> Staff -> Measure -> Element (Note, Rest, Chord, Tuplet)
//
// It also holds the pitch and duration arithmetic the converters share:
// frequency, MIDI number and note name are interchangeable (A4 = 440 Hz =
// MIDI 69), and every duration is spelled by a symbol from the table
// w=1, h=1/2, q=1/4, i=1/8, s=1/16 (fractions of a whole note).
//
// Trees are plain values. Producers (codec, musicxml, explicit construction)
// build them wholesale; consumers never mutate them.
package score

import (
	"strings"

	"github.com/google/uuid"
)

type (
	// Song is the root of a score.
	Song struct {
		ID       uuid.UUID
		Title    string
		Composer string
		// PublisherID refers to the publishing user. It is a lookup key,
		// the song does not own the publisher.
		PublisherID uuid.UUID
		// PickUp is the number of beats in the partial measure before the
		// first full one.
		PickUp     int
		SheetMusic []SheetMusic
	}

	// SheetMusic is the part of one instrument.
	SheetMusic struct {
		Instrument Instrument
		Staves     []Staff
	}

	// Instrument names the part and the clefs it can be notated in.
	Instrument struct {
		Name      string
		ClefTypes []ClefType
	}

	// Staff is one notational voice line.
	Staff struct {
		Clef     ClefType
		Measures []Measure
	}

	// Measure holds the elements of one bar together with the key, meter and
	// tempo in effect for it.
	Measure struct {
		// KeySignature counts sharps (positive) or flats (negative), -7..7.
		KeySignature    int
		TimeNumerator   int
		TimeDenominator int
		// Tempo in beats per minute. Not validated: zero and negative values
		// are representable.
		Tempo    int
		Elements []Element
	}
)

// ClefType names a clef.
type ClefType string

const (
	ClefTreble     ClefType = "treble"
	ClefBass       ClefType = "bass"
	ClefAlto       ClefType = "alto"
	ClefTenor      ClefType = "tenor"
	ClefPercussion ClefType = "percussion"
)

// ParseClef lower-cases s; the empty string means treble.
func ParseClef(s string) ClefType {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ClefTreble
	}
	return ClefType(s)
}

// Defaults for measures whose attributes are missing or invalid.
const (
	DefaultTempo           = 120
	DefaultTimeNumerator   = 4
	DefaultTimeDenominator = 4
)

// NewSong returns an empty song with a fresh id.
func NewSong(title, composer string, publisher uuid.UUID) *Song {
	return &Song{
		ID:          uuid.New(),
		Title:       title,
		Composer:    composer,
		PublisherID: publisher,
	}
}

// NewMeasure returns a measure with key and time normalized.
func NewMeasure(key, numerator, denominator, tempo int, elements ...Element) Measure {
	m := Measure{
		KeySignature:    key,
		TimeNumerator:   numerator,
		TimeDenominator: denominator,
		Tempo:           tempo,
		Elements:        elements,
	}
	m.Normalize()
	return m
}

// Normalize resets an out-of-range key signature to 0 and an invalid time
// signature to 4/4. The denominator must be a power of two and the numerator
// positive.
func (m *Measure) Normalize() {
	if m.KeySignature < -7 || m.KeySignature > 7 {
		m.KeySignature = 0
	}
	if m.TimeNumerator <= 0 || !isPowerOfTwo(m.TimeDenominator) {
		m.TimeNumerator = DefaultTimeNumerator
		m.TimeDenominator = DefaultTimeDenominator
	}
}

// Length is the nominal length of the measure in whole notes.
func (m Measure) Length() float64 {
	if m.TimeDenominator == 0 {
		return 0
	}
	return float64(m.TimeNumerator) / float64(m.TimeDenominator)
}

// Seconds is the play time of the measure at its tempo. A non-positive
// tempo plays at DefaultTempo.
func (m Measure) Seconds() float64 {
	tempo := m.Tempo
	if tempo <= 0 {
		tempo = DefaultTempo
	}
	beats := m.Length() * float64(m.TimeDenominator)
	return beats * 60 / float64(tempo)
}

// Content is the summed length of the measure's elements.
func (m Measure) Content() float64 {
	return sumLength(m.Elements)
}

// AddClef adds c to the instrument's clef set, keeping insertion order.
func (i *Instrument) AddClef(c ClefType) {
	for _, have := range i.ClefTypes {
		if have == c {
			return
		}
	}
	i.ClefTypes = append(i.ClefTypes, c)
}

// Staves returns every staff of the song in sheet music order. The index of
// a staff in this slice is its playback voice.
func (s *Song) Staves() []Staff {
	var out []Staff
	for _, sm := range s.SheetMusic {
		out = append(out, sm.Staves...)
	}
	return out
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
