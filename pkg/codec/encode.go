package codec

import (
	"github.com/haivivi/songbook/pkg/score"
)

// Encode encodes songs as a document with a single "songs" key.
func Encode(songs []*score.Song) map[string]any {
	items := make([]any, 0, len(songs))
	for _, s := range songs {
		items = append(items, EncodeSong(s))
	}
	return map[string]any{keySongs: items}
}

// EncodeSong encodes one song object.
func EncodeSong(s *score.Song) map[string]any {
	sheets := make([]any, 0, len(s.SheetMusic))
	for _, sm := range s.SheetMusic {
		sheets = append(sheets, encodeSheetMusic(sm))
	}
	return map[string]any{
		keyID:         s.ID.String(),
		keyTitle:      s.Title,
		keyComposer:   s.Composer,
		keyPublisher:  s.PublisherID.String(),
		keyPickUp:     s.PickUp,
		keySheetMusic: sheets,
	}
}

func encodeSheetMusic(sm score.SheetMusic) map[string]any {
	clefs := make([]any, 0, len(sm.Instrument.ClefTypes))
	for _, c := range sm.Instrument.ClefTypes {
		clefs = append(clefs, string(c))
	}
	staves := make([]any, 0, len(sm.Staves))
	for _, st := range sm.Staves {
		staves = append(staves, encodeStaff(st))
	}
	return map[string]any{
		keyInstrument: map[string]any{
			keyInstrumentName: sm.Instrument.Name,
			keyClefTypes:      clefs,
		},
		keyStaves: staves,
	}
}

func encodeStaff(st score.Staff) map[string]any {
	measures := make([]any, 0, len(st.Measures))
	for _, m := range st.Measures {
		measures = append(measures, map[string]any{
			keyKeySignature:    m.KeySignature,
			keyTimeNumerator:   m.TimeNumerator,
			keyTimeDenominator: m.TimeDenominator,
			keyTempo:           m.Tempo,
			keyMusicElements:   encodeElements(m.Elements),
		})
	}
	return map[string]any{
		keyClefType: string(st.Clef),
		keyMeasures: measures,
	}
}

func encodeElements(elements []score.Element) []any {
	out := make([]any, 0, len(elements))
	for _, e := range elements {
		if v := encodeElement(e); v != nil {
			out = append(out, v)
		}
	}
	return out
}

// encodeElement returns nil for element types outside the closed set; they
// cannot come out of Decode.
func encodeElement(e score.Element) map[string]any {
	switch v := e.(type) {
	case *score.Note:
		return encodeNote(v)
	case *score.Rest:
		return map[string]any{
			keyType:         string(score.KindRest),
			keyDuration:     v.Duration,
			keyDurationChar: v.Symbol,
			keyDotted:       v.Dotted,
			keyTied:         v.Tied,
			keyLyric:        v.Lyric,
		}
	case *score.Chord:
		notes := make([]any, 0, len(v.Notes))
		for _, n := range v.Notes {
			notes = append(notes, encodeNote(n))
		}
		return map[string]any{
			keyType:  string(score.KindChord),
			keyLyric: v.Lyric,
			keyNotes: notes,
		}
	case *score.Tuplet:
		return map[string]any{
			keyType:            string(score.KindTuplet),
			keySubdivisions:    v.Subdivisions,
			keyImpliedDivision: v.ImpliedDivision,
			keyDuration:        v.Duration,
			keyElements:        encodeElements(v.Elements),
		}
	}
	return nil
}

func encodeNote(n *score.Note) map[string]any {
	return map[string]any{
		keyType:         string(score.KindNote),
		keyPitch:        n.Pitch,
		keyMIDINumber:   n.MIDI,
		keyNoteName:     n.Name,
		keyDuration:     n.Duration,
		keyDurationChar: n.Symbol,
		keyDotted:       n.Dotted,
		keyTied:         n.Tied,
		keyLyric:        n.Lyric,
	}
}
