package codec

import (
	"github.com/google/uuid"

	"github.com/haivivi/songbook/pkg/score"
)

// Decode decodes a whole document: an object whose "songs" key holds an array
// of songs.
func Decode(doc any) ([]*score.Song, error) {
	root, err := asObject(doc, "")
	if err != nil {
		return nil, err
	}
	items, err := root.array(keySongs)
	if err != nil {
		return nil, err
	}
	songs := make([]*score.Song, 0, len(items))
	for i, item := range items {
		s, err := decodeSong(item, index(keySongs, i))
		if err != nil {
			return nil, err
		}
		songs = append(songs, s)
	}
	return songs, nil
}

// DecodeSong decodes a single song object.
func DecodeSong(v any) (*score.Song, error) {
	return decodeSong(v, "")
}

func decodeSong(v any, path string) (*score.Song, error) {
	o, err := asObject(v, path)
	if err != nil {
		return nil, err
	}
	id, err := decodeUUID(o, keyID)
	if err != nil {
		return nil, err
	}
	title, err := o.str(keyTitle)
	if err != nil {
		return nil, err
	}
	composer, err := o.str(keyComposer)
	if err != nil {
		return nil, err
	}
	publisher, err := decodeUUID(o, keyPublisher)
	if err != nil {
		return nil, err
	}
	pickUp, err := o.integer(keyPickUp)
	if err != nil {
		return nil, err
	}
	items, err := o.array(keySheetMusic)
	if err != nil {
		return nil, err
	}
	song := &score.Song{
		ID:          id,
		Title:       title,
		Composer:    composer,
		PublisherID: publisher,
		PickUp:      pickUp,
		SheetMusic:  make([]score.SheetMusic, 0, len(items)),
	}
	for i, item := range items {
		sm, err := decodeSheetMusic(item, index(o.at(keySheetMusic), i))
		if err != nil {
			return nil, err
		}
		song.SheetMusic = append(song.SheetMusic, sm)
	}
	return song, nil
}

func decodeUUID(o object, key string) (uuid.UUID, error) {
	s, err := o.str(key)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, score.Errorf(score.ErrTypeMismatch, o.at(key), "%q is not a UUID", s)
	}
	return id, nil
}

func decodeSheetMusic(v any, path string) (score.SheetMusic, error) {
	o, err := asObject(v, path)
	if err != nil {
		return score.SheetMusic{}, err
	}
	in, err := o.child(keyInstrument)
	if err != nil {
		return score.SheetMusic{}, err
	}
	instrument, err := decodeInstrument(in)
	if err != nil {
		return score.SheetMusic{}, err
	}
	items, err := o.array(keyStaves)
	if err != nil {
		return score.SheetMusic{}, err
	}
	sm := score.SheetMusic{Instrument: instrument, Staves: make([]score.Staff, 0, len(items))}
	for i, item := range items {
		st, err := decodeStaff(item, index(o.at(keyStaves), i))
		if err != nil {
			return score.SheetMusic{}, err
		}
		sm.Staves = append(sm.Staves, st)
	}
	return sm, nil
}

func decodeInstrument(o object) (score.Instrument, error) {
	name, err := o.str(keyInstrumentName)
	if err != nil {
		return score.Instrument{}, err
	}
	clefs, err := o.array(keyClefTypes)
	if err != nil {
		return score.Instrument{}, err
	}
	in := score.Instrument{Name: name, ClefTypes: make([]score.ClefType, 0, len(clefs))}
	for i, c := range clefs {
		s, ok := c.(string)
		if !ok {
			return score.Instrument{}, mismatch(index(o.at(keyClefTypes), i), "string", c)
		}
		in.AddClef(score.ParseClef(s))
	}
	return in, nil
}

func decodeStaff(v any, path string) (score.Staff, error) {
	o, err := asObject(v, path)
	if err != nil {
		return score.Staff{}, err
	}
	clef, err := o.str(keyClefType)
	if err != nil {
		return score.Staff{}, err
	}
	items, err := o.array(keyMeasures)
	if err != nil {
		return score.Staff{}, err
	}
	st := score.Staff{Clef: score.ParseClef(clef), Measures: make([]score.Measure, 0, len(items))}
	for i, item := range items {
		m, err := decodeMeasure(item, index(o.at(keyMeasures), i))
		if err != nil {
			return score.Staff{}, err
		}
		st.Measures = append(st.Measures, m)
	}
	return st, nil
}

func decodeMeasure(v any, path string) (score.Measure, error) {
	o, err := asObject(v, path)
	if err != nil {
		return score.Measure{}, err
	}
	var ints [4]int
	for i, key := range []string{keyKeySignature, keyTimeNumerator, keyTimeDenominator, keyTempo} {
		if ints[i], err = o.integer(key); err != nil {
			return score.Measure{}, err
		}
	}
	elements, err := decodeElements(o, keyMusicElements)
	if err != nil {
		return score.Measure{}, err
	}
	return score.NewMeasure(ints[0], ints[1], ints[2], ints[3], elements...), nil
}

func decodeElements(o object, key string) ([]score.Element, error) {
	items, err := o.array(key)
	if err != nil {
		return nil, err
	}
	out := make([]score.Element, 0, len(items))
	for i, item := range items {
		e, err := decodeElement(item, index(o.at(key), i))
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func decodeElement(v any, path string) (score.Element, error) {
	o, err := asObject(v, path)
	if err != nil {
		return nil, err
	}
	kind, err := o.str(keyType)
	if err != nil {
		return nil, err
	}
	switch score.ElementKind(kind) {
	case score.KindNote:
		return decodeNote(o)
	case score.KindRest:
		return decodeRest(o)
	case score.KindChord:
		return decodeChord(o)
	case score.KindTuplet:
		return decodeTuplet(o)
	default:
		return nil, score.Errorf(score.ErrUnknownElementType, o.at(keyType), "%q", kind)
	}
}

func decodeNote(o object) (*score.Note, error) {
	var (
		tone score.Tone
		err  error
	)
	switch {
	case o.has(keyMIDINumber):
		var midi int
		if midi, err = o.integer(keyMIDINumber); err != nil {
			return nil, err
		}
		tone, err = score.ToneFromMIDI(midi)
		err = reroot(err, o.at(keyMIDINumber))
	case o.has(keyPitch):
		var pitch float64
		if pitch, err = o.number(keyPitch); err != nil {
			return nil, err
		}
		tone, err = score.ToneFromPitch(pitch)
		err = reroot(err, o.at(keyPitch))
	case o.has(keyNoteName):
		var name string
		if name, err = o.str(keyNoteName); err != nil {
			return nil, err
		}
		tone, err = score.ToneFromName(name)
		err = reroot(err, o.at(keyNoteName))
	default:
		return nil, score.Errorf(score.ErrMissingField, o.at(keyMIDINumber), "note needs one of %q, %q or %q", keyMIDINumber, keyPitch, keyNoteName)
	}
	if err != nil {
		return nil, err
	}
	value, lyric, err := decodeValue(o)
	if err != nil {
		return nil, err
	}
	n, err := score.NewNote(tone, value, lyric)
	return n, reroot(err, o.path)
}

func decodeRest(o object) (*score.Rest, error) {
	value, lyric, err := decodeValue(o)
	if err != nil {
		return nil, err
	}
	r, err := score.NewRest(value, lyric)
	return r, reroot(err, o.path)
}

// decodeValue reads the fields notes and rests share. durationChar wins over
// duration when both are present; an empty durationChar counts as absent.
func decodeValue(o object) (score.Value, string, error) {
	var (
		v   score.Value
		err error
	)
	if v.Symbol, err = o.optStr(keyDurationChar, ""); err != nil {
		return v, "", err
	}
	switch {
	case v.Symbol != "":
		if o.has(keyDuration) {
			if _, err = o.number(keyDuration); err != nil {
				return v, "", err
			}
		}
	case o.has(keyDuration):
		if v.Duration, err = o.number(keyDuration); err != nil {
			return v, "", err
		}
		if v.Duration <= 0 || v.Duration > score.MaxDuration {
			return v, "", score.Errorf(score.ErrInvalidDuration, o.at(keyDuration), "%v outside (0,%v]", v.Duration, score.MaxDuration)
		}
	default:
		return v, "", score.Errorf(score.ErrMissingField, o.at(keyDuration), "needs %q or %q", keyDuration, keyDurationChar)
	}
	if v.Dotted, err = o.optInteger(keyDotted, 0); err != nil {
		return v, "", err
	}
	if v.Dotted < 0 {
		return v, "", score.Errorf(score.ErrInvalidDotted, o.at(keyDotted), "%d is negative", v.Dotted)
	}
	if v.Tied, err = o.optBool(keyTied, false); err != nil {
		return v, "", err
	}
	lyric, err := o.optStr(keyLyric, "")
	if err != nil {
		return v, "", err
	}
	return v, lyric, nil
}

func decodeChord(o object) (*score.Chord, error) {
	lyric, err := o.optStr(keyLyric, "")
	if err != nil {
		return nil, err
	}
	items, err := o.array(keyNotes)
	if err != nil {
		return nil, err
	}
	c := &score.Chord{Lyric: lyric, Notes: make([]*score.Note, 0, len(items))}
	for i, item := range items {
		no, err := asObject(item, index(o.at(keyNotes), i))
		if err != nil {
			return nil, err
		}
		if no.has(keyType) {
			kind, err := no.str(keyType)
			if err != nil {
				return nil, err
			}
			if score.ElementKind(kind) != score.KindNote {
				return nil, score.Errorf(score.ErrTypeMismatch, no.at(keyType), "chords hold notes, got %q", kind)
			}
		}
		n, err := decodeNote(no)
		if err != nil {
			return nil, err
		}
		c.Notes = append(c.Notes, n)
	}
	return c, nil
}

// decodeTuplet recomputes the aggregate duration from the children; a stored
// "duration" is only type checked.
func decodeTuplet(o object) (*score.Tuplet, error) {
	subdivisions, err := o.integer(keySubdivisions)
	if err != nil {
		return nil, err
	}
	implied, err := o.integer(keyImpliedDivision)
	if err != nil {
		return nil, err
	}
	if o.has(keyDuration) {
		if _, err := o.number(keyDuration); err != nil {
			return nil, err
		}
	}
	elements, err := decodeElements(o, keyElements)
	if err != nil {
		return nil, err
	}
	t, err := score.NewTuplet(subdivisions, implied, elements...)
	return t, reroot(err, o.path)
}

func reroot(err error, path string) error {
	if err == nil {
		return nil
	}
	return score.At(err, path)
}
