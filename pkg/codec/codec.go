// Package codec maps score trees to and from the persisted document tree:
// nested map[string]any / []any values as produced by encoding/json, YAML
// or msgpack decoders.
//
// The document shape is
//
//	{ "songs": [ { "id", "title", "composer", "publisher", "pickUp",
//	               "sheetMusic": [ { "instrument": {"instrumentName", "clefTypes"},
//	                                 "staves": [ { "clefType", "measures": [ {
//	                                   "keySignature", "timeSignatureNumerator",
//	                                   "timeSignatureDenominator", "tempo",
//	                                   "musicElements": [ {"type": ...} ] } ] } ] } ] } ] }
//
// Decode validates as it goes and fails on the first problem with a
// *score.Error locating it. Encode is total and never mutates its input;
// Decode(Encode(x)) is structurally equal to x for every decoded x.
package codec

// Document keys.
const (
	keySongs = "songs"

	keyID         = "id"
	keyTitle      = "title"
	keyComposer   = "composer"
	keyPublisher  = "publisher"
	keyPickUp     = "pickUp"
	keySheetMusic = "sheetMusic"

	keyInstrument     = "instrument"
	keyInstrumentName = "instrumentName"
	keyClefTypes      = "clefTypes"
	keyStaves         = "staves"

	keyClefType = "clefType"
	keyMeasures = "measures"

	keyKeySignature    = "keySignature"
	keyTimeNumerator   = "timeSignatureNumerator"
	keyTimeDenominator = "timeSignatureDenominator"
	keyTempo           = "tempo"
	keyMusicElements   = "musicElements"

	keyType         = "type"
	keyPitch        = "pitch"
	keyMIDINumber   = "midiNumber"
	keyNoteName     = "noteName"
	keyDuration     = "duration"
	keyDurationChar = "durationChar"
	keyDotted       = "dotted"
	keyTied         = "tied"
	keyLyric        = "lyric"

	keyNotes           = "notes"
	keySubdivisions    = "subdivisions"
	keyImpliedDivision = "impliedDivision"
	keyElements        = "elements"
)
