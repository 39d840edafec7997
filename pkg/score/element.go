package score

import "fmt"

// ElementKind is the discriminator persisted in the "type" field.
type ElementKind string

const (
	KindNote   ElementKind = "note"
	KindRest   ElementKind = "rest"
	KindChord  ElementKind = "chord"
	KindTuplet ElementKind = "tuplet"
)

// Element is one entry of a Measure. The set of implementations is closed:
// *Note, *Rest, *Chord and *Tuplet.
type Element interface {
	Kind() ElementKind
	// Length is the fraction of a whole note the element occupies.
	Length() float64
	isElement()
}

// Durational is implemented by the elements that carry their own value:
// notes and rests.
type Durational interface {
	Element
	Value() Value
	Text() string
}

type (
	// Note is a pitched event. Pitch, MIDI and Name always agree, as do
	// Duration and Symbol.
	Note struct {
		Pitch    float64
		MIDI     int
		Name     string
		Duration float64
		Symbol   string
		Dotted   int
		Tied     bool
		Lyric    string
	}

	// Rest is a silent event with the same value shape as a Note.
	Rest struct {
		Duration float64
		Symbol   string
		Dotted   int
		Tied     bool
		Lyric    string
	}

	// Chord is a set of notes with a simultaneous onset.
	Chord struct {
		Lyric string
		Notes []*Note
	}

	// Tuplet fits its elements into a different division: Subdivisions
	// (actual notes) are played in the time of ImpliedDivision (normal
	// notes). Duration is the aggregate, already scaled.
	Tuplet struct {
		Subdivisions    int
		ImpliedDivision int
		Duration        float64
		Elements        []Element
	}
)

// NewNote builds a note from a tone and a value.
func NewNote(t Tone, v Value, lyric string) (*Note, error) {
	tone, err := ToneFromMIDI(t.MIDI)
	if err != nil {
		return nil, err
	}
	rv, err := v.Resolve()
	if err != nil {
		return nil, err
	}
	n := &Note{Pitch: tone.Pitch, MIDI: tone.MIDI, Name: tone.Name, Lyric: lyric}
	n.setValue(rv)
	return n, nil
}

// NewNoteFromMIDI builds a note from its MIDI number.
func NewNoteFromMIDI(midi int, v Value, lyric string) (*Note, error) {
	t, err := ToneFromMIDI(midi)
	if err != nil {
		return nil, err
	}
	return NewNote(t, v, lyric)
}

// NewNoteFromPitch builds a note from a frequency in Hz.
func NewNoteFromPitch(pitch float64, v Value, lyric string) (*Note, error) {
	t, err := ToneFromPitch(pitch)
	if err != nil {
		return nil, err
	}
	return NewNote(t, v, lyric)
}

// NewNoteFromName builds a note from a name such as "C#4".
func NewNoteFromName(name string, v Value, lyric string) (*Note, error) {
	t, err := ToneFromName(name)
	if err != nil {
		return nil, err
	}
	return NewNote(t, v, lyric)
}

// NewRest builds a rest.
func NewRest(v Value, lyric string) (*Rest, error) {
	rv, err := v.Resolve()
	if err != nil {
		return nil, err
	}
	r := &Rest{Lyric: lyric}
	r.setValue(rv)
	return r, nil
}

// NewChord groups notes into a chord.
func NewChord(lyric string, notes ...*Note) *Chord {
	return &Chord{Lyric: lyric, Notes: notes}
}

// NewTuplet builds a tuplet and computes its aggregate duration.
func NewTuplet(subdivisions, impliedDivision int, elements ...Element) (*Tuplet, error) {
	if subdivisions <= 0 || impliedDivision <= 0 {
		return nil, Errorf(ErrInvalidDuration, "", "tuplet ratio %d:%d must be positive", subdivisions, impliedDivision)
	}
	t := &Tuplet{
		Subdivisions:    subdivisions,
		ImpliedDivision: impliedDivision,
		Elements:        elements,
	}
	t.Duration = float64(impliedDivision) * sumLength(elements) / float64(subdivisions)
	return t, nil
}

func (*Note) Kind() ElementKind   { return KindNote }
func (*Rest) Kind() ElementKind   { return KindRest }
func (*Chord) Kind() ElementKind  { return KindChord }
func (*Tuplet) Kind() ElementKind { return KindTuplet }

func (n *Note) Length() float64 { return n.Value().Length() }
func (r *Rest) Length() float64 { return r.Value().Length() }

// Length of a chord is its longest note.
func (c *Chord) Length() float64 {
	longest := 0.0
	for _, n := range c.Notes {
		longest = max(longest, n.Length())
	}
	return longest
}

func (t *Tuplet) Length() float64 { return t.Duration }

// Tone returns the pitch triple of the note.
func (n *Note) Tone() Tone { return Tone{Pitch: n.Pitch, MIDI: n.MIDI, Name: n.Name} }

func (n *Note) Value() Value {
	return Value{Duration: n.Duration, Symbol: n.Symbol, Dotted: n.Dotted, Tied: n.Tied}
}

func (r *Rest) Value() Value {
	return Value{Duration: r.Duration, Symbol: r.Symbol, Dotted: r.Dotted, Tied: r.Tied}
}

func (n *Note) Text() string { return n.Lyric }
func (r *Rest) Text() string { return r.Lyric }

func (n *Note) setValue(v Value) {
	n.Duration, n.Symbol, n.Dotted, n.Tied = v.Duration, v.Symbol, v.Dotted, v.Tied
}

func (r *Rest) setValue(v Value) {
	r.Duration, r.Symbol, r.Dotted, r.Tied = v.Duration, v.Symbol, v.Dotted, v.Tied
}

func (*Note) isElement()   {}
func (*Rest) isElement()   {}
func (*Chord) isElement()  {}
func (*Tuplet) isElement() {}

// Scale is the factor applied to the children of a tuplet.
func (t *Tuplet) Scale() float64 {
	if t.Subdivisions == 0 {
		return 0
	}
	return float64(t.ImpliedDivision) / float64(t.Subdivisions)
}

func sumLength(elements []Element) float64 {
	total := 0.0
	for _, e := range elements {
		total += e.Length()
	}
	return total
}

func (n *Note) String() string {
	return fmt.Sprintf("%s/%s", n.Name, n.Symbol)
}

// Walk visits elements depth first, parents before their chord notes and
// tuplet children. Returning false from fn skips the children of e.
func Walk(elements []Element, fn func(e Element) bool) {
	for _, e := range elements {
		if !fn(e) {
			continue
		}
		switch v := e.(type) {
		case *Chord:
			for _, n := range v.Notes {
				fn(n)
			}
		case *Tuplet:
			Walk(v.Elements, fn)
		}
	}
}
