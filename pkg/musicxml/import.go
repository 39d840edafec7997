// Package musicxml imports partwise MusicXML scores, plain or compressed
// (.mxl), into the score model.
//
// Each (part, voice) pair becomes one staff. Voices missing from a measure
// are filled with a single full-measure rest so every staff keeps the same
// number of measures. The importer is best effort: unparsable numeric fields
// fall back to defaults (divisions 1, tempo 120, 4/4, no key) and only an
// unreadable document fails.
package musicxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/net/html/charset"

	"github.com/haivivi/songbook/pkg/score"
)

const (
	DefaultTitle      = "Converted Song"
	DefaultComposer   = "Unknown"
	DefaultInstrument = "Piano"

	defaultDivisions = 1
)

// Options configures an import.
type Options struct {
	// Logger is optional. If nil, uses slog.Default().
	Logger *slog.Logger

	// NewID generates the song and publisher ids. Defaults to uuid.New.
	NewID func() uuid.UUID
}

// Import reads a MusicXML or compressed MusicXML document from r.
func Import(r io.Reader, opts *Options) (*score.Song, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("musicxml: read: %w", err)
	}
	return ImportBytes(data, opts)
}

// ImportBytes imports a MusicXML or compressed MusicXML document.
func ImportBytes(data []byte, opts *Options) (*score.Song, error) {
	if IsCompressed(data) {
		root, err := extractRoot(data)
		if err != nil {
			return nil, err
		}
		data = root
	}

	var doc document
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: musicxml: %v", score.ErrMalformedDocument, err)
	}

	im := newImporter(opts)
	return im.song(&doc), nil
}

type importer struct {
	logger *slog.Logger
	newID  func() uuid.UUID
}

func newImporter(opts *Options) *importer {
	im := &importer{logger: slog.Default(), newID: uuid.New}
	if opts != nil {
		if opts.Logger != nil {
			im.logger = opts.Logger
		}
		if opts.NewID != nil {
			im.newID = opts.NewID
		}
	}
	return im
}

func (im *importer) song(doc *document) *score.Song {
	title := strings.TrimSpace(doc.Work.Title)
	if title == "" {
		title = strings.TrimSpace(doc.MovementTitle)
	}
	if title == "" {
		title = DefaultTitle
	}
	composer := ""
	for _, c := range doc.Identification.Creators {
		if c.Type == "composer" {
			composer = strings.TrimSpace(c.Name)
			break
		}
	}
	if composer == "" {
		composer = DefaultComposer
	}

	s := &score.Song{
		ID:          im.newID(),
		Title:       title,
		Composer:    composer,
		PublisherID: im.newID(),
	}

	instrument := score.Instrument{Name: DefaultInstrument, ClefTypes: []score.ClefType{}}
	if len(doc.PartList.ScoreParts) > 0 {
		if name := strings.TrimSpace(doc.PartList.ScoreParts[0].Name); name != "" {
			instrument.Name = name
		}
	}
	sm := score.SheetMusic{Instrument: instrument, Staves: []score.Staff{}}
	for _, p := range doc.Parts {
		for _, st := range im.part(&p) {
			sm.Instrument.AddClef(st.Clef)
			sm.Staves = append(sm.Staves, st)
		}
		if len(p.Measures) > 0 && p.Measures[0].Implicit {
			s.PickUp = 1
		}
	}
	if len(sm.Instrument.ClefTypes) == 0 {
		sm.Instrument.AddClef(score.ClefTreble)
	}
	s.SheetMusic = []score.SheetMusic{sm}
	return s
}

// state holds the attribute values carried from measure to measure.
type state struct {
	divisions int
	fifths    int
	beats     int
	beatType  int
	tempo     int
	clefs     map[string]score.ClefType
}

// part returns one staff per voice of p, in order of first appearance.
func (im *importer) part(p *part) []score.Staff {
	var voices []string
	voiceStaff := make(map[string]string)
	for _, m := range p.Measures {
		for i := range m.Notes {
			n := &m.Notes[i]
			v := n.voice()
			if _, ok := voiceStaff[v]; !ok {
				voices = append(voices, v)
				voiceStaff[v] = n.staff()
			}
		}
	}
	if len(voices) == 0 {
		voices = []string{"1"}
		voiceStaff["1"] = "1"
	}

	st := state{
		divisions: defaultDivisions,
		beats:     score.DefaultTimeNumerator,
		beatType:  score.DefaultTimeDenominator,
		tempo:     score.DefaultTempo,
		clefs:     make(map[string]score.ClefType),
	}
	staves := make([]score.Staff, len(voices))
	for i := range staves {
		staves[i].Measures = []score.Measure{}
	}
	for mi := range p.Measures {
		m := &p.Measures[mi]
		im.attributes(&st, m)

		byVoice := make(map[string][]*note)
		for i := range m.Notes {
			n := &m.Notes[i]
			byVoice[n.voice()] = append(byVoice[n.voice()], n)
		}
		for vi, v := range voices {
			measure := score.NewMeasure(st.fifths, st.beats, st.beatType, st.tempo)
			notes, ok := byVoice[v]
			if ok {
				measure.Elements = im.elements(notes, &st, &measure)
			} else {
				im.logger.Debug("musicxml: filling missing voice", "part", p.ID, "measure", m.Number, "voice", v)
				measure.Elements = []score.Element{im.measureRest(&measure)}
			}
			staves[vi].Measures = append(staves[vi].Measures, measure)
		}
	}
	for vi, v := range voices {
		clef, ok := st.clefs[voiceStaff[v]]
		if !ok {
			clef = score.ClefTreble
		}
		staves[vi].Clef = clef
	}
	return staves
}

// attributes applies the attribute blocks and tempo marks of m to st.
func (im *importer) attributes(st *state, m *measure) {
	for _, a := range m.Attributes {
		if a.Divisions != "" {
			st.divisions = im.atoi("divisions", a.Divisions, defaultDivisions)
			if st.divisions <= 0 {
				st.divisions = defaultDivisions
			}
		}
		for _, k := range a.Keys {
			if k.Fifths != "" {
				st.fifths = im.atoi("fifths", k.Fifths, 0)
			}
		}
		for _, t := range a.Times {
			if t.Beats != "" {
				st.beats = im.atoi("beats", t.Beats, score.DefaultTimeNumerator)
			}
			if t.BeatType != "" {
				st.beatType = im.atoi("beat-type", t.BeatType, score.DefaultTimeDenominator)
			}
		}
		for _, c := range a.Clefs {
			number := strings.TrimSpace(c.Number)
			if number == "" {
				number = "1"
			}
			if _, ok := st.clefs[number]; !ok {
				st.clefs[number] = clefType(c)
			}
		}
	}
	if m.Tempo != "" {
		tempo, err := strconv.ParseFloat(strings.TrimSpace(m.Tempo), 64)
		if err != nil || tempo <= 0 || math.IsInf(tempo, 0) {
			im.logger.Debug("musicxml: bad tempo, using default", "value", m.Tempo)
			st.tempo = score.DefaultTempo
		} else {
			st.tempo = int(math.Round(tempo))
		}
	}
}

func (im *importer) atoi(field, s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		im.logger.Debug("musicxml: bad number, using default", "field", field, "value", s, "default", def)
		return def
	}
	return n
}

func clefType(c clef) score.ClefType {
	switch strings.ToUpper(strings.TrimSpace(c.Sign)) {
	case "F":
		return score.ClefBass
	case "C":
		if strings.TrimSpace(c.Line) == "4" {
			return score.ClefTenor
		}
		return score.ClefAlto
	case "PERCUSSION":
		return score.ClefPercussion
	default:
		return score.ClefTreble
	}
}

// elements groups the notes of one voice in one measure into tuplets,
// chords and single notes or rests.
func (im *importer) elements(notes []*note, st *state, m *score.Measure) []score.Element {
	out := []score.Element{}
	for i := 0; i < len(notes); {
		n := notes[i]
		switch {
		case n.Grace != nil:
			im.logger.Debug("musicxml: skipping grace note")
			i++
		case n.Chord != nil:
			im.logger.Debug("musicxml: skipping orphan chord note", "voice", n.voice())
			i++
		case n.tuplet("start"):
			end := i
			for end < len(notes)-1 && !notes[end].tuplet("stop") {
				end++
			}
			if e := im.tuplet(notes[i:end+1], st, m); e != nil {
				out = append(out, e)
			}
			i = end + 1
		default:
			e, next := im.group(notes, i, 1, st, m)
			if e != nil {
				out = append(out, e)
			}
			i = next
		}
	}
	return out
}

// group reads the element starting at notes[i]: a bare note or rest, or a
// chord when chord continuations follow. It returns the index after the
// group. scale converts sounding ticks to written ticks inside a tuplet.
func (im *importer) group(notes []*note, i int, scale float64, st *state, m *score.Measure) (score.Element, int) {
	head := notes[i]
	end := i + 1
	for end < len(notes) && notes[end].Chord != nil && notes[end].Grace == nil {
		end++
	}
	if end == i+1 || head.Rest != nil {
		return im.single(head, scale, st, m), i + 1
	}
	chord := &score.Chord{Lyric: head.lyric(), Notes: make([]*score.Note, 0, end-i)}
	for _, n := range notes[i:end] {
		if n.Rest != nil {
			continue
		}
		if e, ok := im.single(n, scale, st, m).(*score.Note); ok {
			e.Lyric = ""
			chord.Notes = append(chord.Notes, e)
		}
	}
	return chord, end
}

func (im *importer) tuplet(notes []*note, st *state, m *score.Measure) score.Element {
	actual, normal := 3, 2
	if tm := notes[0].TimeMod; tm != nil {
		actual = im.atoi("actual-notes", tm.ActualNotes, 3)
		normal = im.atoi("normal-notes", tm.NormalNotes, 2)
	}
	if actual <= 0 || normal <= 0 {
		actual, normal = 3, 2
	}
	var children []score.Element
	for i := 0; i < len(notes); {
		if notes[i].Grace != nil || notes[i].Chord != nil {
			i++
			continue
		}
		e, next := im.group(notes, i, float64(actual)/float64(normal), st, m)
		if e != nil {
			children = append(children, e)
		}
		i = next
	}
	if len(children) == 0 {
		return nil
	}
	t, err := score.NewTuplet(actual, normal, children...)
	if err != nil {
		im.logger.Debug("musicxml: dropping tuplet", "error", err)
		return nil
	}
	return t
}

// single converts one note element.
func (im *importer) single(n *note, scale float64, st *state, m *score.Measure) score.Element {
	value, full := im.value(n, scale, st)
	if n.Rest != nil {
		if full {
			return im.measureRest(m)
		}
		r, err := score.NewRest(value, n.lyric())
		if err != nil {
			return im.measureRest(m)
		}
		return r
	}
	midi := im.midi(n.Pitch)
	out, err := score.NewNoteFromMIDI(midi, value, n.lyric())
	if err != nil {
		im.logger.Debug("musicxml: bad note, using quarter", "error", err)
		out, _ = score.NewNoteFromMIDI(midi, score.Value{Symbol: score.SymbolQuarter}, n.lyric())
	}
	return out
}

var typeSymbols = map[string]string{
	"breve":   score.SymbolWhole + score.SymbolWhole,
	"whole":   score.SymbolWhole,
	"half":    score.SymbolHalf,
	"quarter": score.SymbolQuarter,
	"eighth":  score.SymbolEighth,
	"16th":    score.SymbolSixteenth,
	"32nd":    score.SymbolSixteenth,
	"64th":    score.SymbolSixteenth,
	"128th":   score.SymbolSixteenth,
	"256th":   score.SymbolSixteenth,
}

// value derives the duration of n. full reports a whole-measure rest whose
// length is the measure's: a typeless rest marked measure="yes", or a rest
// with neither type nor usable duration. Without a type the symbol comes
// from the tick duration multiplied by scale.
func (im *importer) value(n *note, scale float64, st *state) (v score.Value, full bool) {
	v.Dotted = len(n.Dots)
	v.Tied = n.tied()
	if sym, ok := typeSymbols[strings.TrimSpace(n.Type)]; ok {
		v.Symbol = sym
		return v, false
	}
	if n.Rest != nil && n.Rest.Measure == "yes" {
		return v, true
	}
	ticks, err := strconv.Atoi(strings.TrimSpace(n.Duration))
	if err != nil || ticks <= 0 {
		if n.Rest != nil {
			im.logger.Debug("musicxml: rest without type or duration, filling measure", "duration", n.Duration)
			return v, true
		}
		im.logger.Debug("musicxml: no usable type or duration, using quarter", "type", n.Type, "duration", n.Duration)
		v.Symbol = score.SymbolQuarter
		return v, false
	}
	v.Dotted = 0
	v.Symbol = score.SymbolFromDuration(float64(ticks) * scale / float64(st.divisions*4))
	return v, false
}

var steps = map[string]int{"C": 0, "D": 2, "E": 4, "F": 5, "G": 7, "A": 9, "B": 11}

func (im *importer) midi(p *pitch) int {
	if p == nil {
		im.logger.Debug("musicxml: unpitched note, using middle C")
		return 60
	}
	step, ok := steps[strings.ToUpper(strings.TrimSpace(p.Step))]
	if !ok {
		im.logger.Debug("musicxml: bad step, using C", "step", p.Step)
	}
	octave := im.atoi("octave", p.Octave, 4)
	alter := 0.0
	if s := strings.TrimSpace(p.Alter); s != "" {
		a, err := strconv.ParseFloat(s, 64)
		if err != nil {
			im.logger.Debug("musicxml: bad alter, ignoring", "alter", p.Alter)
		} else {
			alter = a
		}
	}
	midi := (octave+1)*12 + step + int(math.Round(alter))
	return max(score.MinMIDI, min(score.MaxMIDI, midi))
}

// measureRest builds the rest that fills a whole measure of m's time.
func (im *importer) measureRest(m *score.Measure) *score.Rest {
	v := RestValue(m.TimeNumerator, m.TimeDenominator)
	r, err := score.NewRest(v, "")
	if err != nil {
		im.logger.Debug("musicxml: measure rest too long, using whole", "numerator", m.TimeNumerator, "denominator", m.TimeDenominator)
		r, _ = score.NewRest(score.Value{Symbol: score.SymbolWhole}, "")
	}
	return r
}

// RestValue returns the value of a rest filling a measure of the given time
// signature: 4/4 is a whole rest, 6/8 a dotted half, x/8 and x/16 are runs
// of x eighths or sixteenths, anything else a quarter.
func RestValue(numerator, denominator int) score.Value {
	switch {
	case numerator == 4 && denominator == 4:
		return score.Value{Symbol: score.SymbolWhole}
	case numerator == 6 && denominator == 8:
		return score.Value{Symbol: score.SymbolHalf, Dotted: 1}
	case denominator == 8 && numerator > 0:
		return score.Value{Symbol: strings.Repeat(score.SymbolEighth, numerator)}
	case denominator == 16 && numerator > 0:
		return score.Value{Symbol: strings.Repeat(score.SymbolSixteenth, numerator)}
	default:
		return score.Value{Symbol: score.SymbolQuarter}
	}
}
