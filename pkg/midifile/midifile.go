// Package midifile renders a song as a Standard MIDI File.
//
// The file is format 1: a conductor track with the tempo and meter of the
// first staff, then one track per staff. Measures are placed by their
// nominal length (numerator/denominator of a whole note), tuplet children
// are scaled by their tuplet ratio and tied notes of equal pitch are merged
// into one sounding note.
package midifile

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/haivivi/songbook/pkg/score"
)

const (
	DefaultTicksPerQuarter = 960
	DefaultVelocity        = 100

	percussionChannel = 9
)

// Options configures Write. The zero value is usable.
type Options struct {
	TicksPerQuarter uint16
	Velocity        uint8

	// Logger is optional. If nil, uses slog.Default().
	Logger *slog.Logger
}

func (o *Options) withDefaults() Options {
	var out Options
	if o != nil {
		out = *o
	}
	if out.TicksPerQuarter == 0 {
		out.TicksPerQuarter = DefaultTicksPerQuarter
	}
	if out.Velocity == 0 {
		out.Velocity = DefaultVelocity
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	return out
}

// Write encodes song to w.
func Write(w io.Writer, song *score.Song, opts *Options) error {
	s, err := Build(song, opts)
	if err != nil {
		return err
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("midifile: write: %w", err)
	}
	return nil
}

// Build returns the SMF representation of song.
func Build(song *score.Song, opts *Options) (*smf.SMF, error) {
	o := opts.withDefaults()
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(o.TicksPerQuarter)

	staves := song.Staves()
	var first score.Staff
	if len(staves) > 0 {
		first = staves[0]
	}
	if err := s.Add(conductor(song.Title, first, o)); err != nil {
		return nil, fmt.Errorf("midifile: conductor track: %w", err)
	}

	idx := 0
	for _, sm := range song.SheetMusic {
		for _, st := range sm.Staves {
			tr, err := staffTrack(sm.Instrument.Name, channelFor(idx, st.Clef), st, o)
			if err != nil {
				return nil, fmt.Errorf("midifile: staff %d: %w", idx, err)
			}
			if err := s.Add(tr); err != nil {
				return nil, fmt.Errorf("midifile: staff %d: %w", idx, err)
			}
			idx++
		}
	}
	o.Logger.Debug("midifile: built", "title", song.Title, "tracks", len(s.Tracks))
	return s, nil
}

// channelFor maps a staff to a channel, keeping the percussion channel for
// percussion staves.
func channelFor(index int, clef score.ClefType) uint8 {
	if clef == score.ClefPercussion {
		return percussionChannel
	}
	ch := index % 15
	if ch >= percussionChannel {
		ch++
	}
	return uint8(ch)
}

func tempoOf(m score.Measure) float64 {
	if m.Tempo <= 0 {
		return score.DefaultTempo
	}
	return float64(m.Tempo)
}

func wholeTicks(o Options) float64 { return float64(o.TicksPerQuarter) * 4 }

func measureTicks(m score.Measure, o Options) uint32 {
	return uint32(math.Round(wholeTicks(o) * float64(m.TimeNumerator) / float64(m.TimeDenominator)))
}

func conductor(title string, st score.Staff, o Options) smf.Track {
	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName(title))
	var (
		delta uint32
		tempo float64
		num   int
		den   int
	)
	for i, m := range st.Measures {
		if i == 0 || tempoOf(m) != tempo {
			tempo = tempoOf(m)
			tr.Add(delta, smf.MetaTempo(tempo))
			delta = 0
		}
		if i == 0 || m.TimeNumerator != num || m.TimeDenominator != den {
			num, den = m.TimeNumerator, m.TimeDenominator
			tr.Add(delta, smf.MetaMeter(uint8(num), uint8(den)))
			delta = 0
		}
		delta += measureTicks(m, o)
	}
	if len(st.Measures) == 0 {
		tr.Add(0, smf.MetaTempo(score.DefaultTempo))
	}
	tr.Close(delta)
	return tr
}

type event struct {
	tick uint32
	on   bool
	msg  midi.Message
}

// sequencer lays out the notes of one staff on an absolute tick axis.
type sequencer struct {
	o       Options
	channel uint8
	events  []event
	// open holds the start tick of tied notes waiting for a continuation.
	open map[uint8]uint32
}

func (q *sequencer) noteOn(tick uint32, key uint8) {
	q.events = append(q.events, event{tick: tick, on: true, msg: midi.NoteOn(q.channel, key, q.o.Velocity)})
}

func (q *sequencer) noteOff(tick uint32, key uint8) {
	q.events = append(q.events, event{tick: tick, msg: midi.NoteOff(q.channel, key)})
}

// closeExcept ends every open tie whose key is not in keep.
func (q *sequencer) closeExcept(tick uint32, keep map[uint8]bool) {
	for key := range q.open {
		if !keep[key] {
			q.noteOff(tick, key)
			delete(q.open, key)
		}
	}
}

func (q *sequencer) ticks(length, scale float64) uint32 {
	return uint32(math.Round(length * scale * wholeTicks(q.o)))
}

// step places e at tick and returns the tick after it.
func (q *sequencer) step(e score.Element, tick uint32, scale float64) (uint32, error) {
	switch e := e.(type) {
	case *score.Note:
		key := uint8(e.MIDI)
		q.closeExcept(tick, map[uint8]bool{key: true})
		end := tick + q.ticks(e.Length(), scale)
		q.sound(key, tick, end, e.Tied)
		return end, nil
	case *score.Rest:
		q.closeExcept(tick, nil)
		return tick + q.ticks(e.Length(), scale), nil
	case *score.Chord:
		keep := make(map[uint8]bool, len(e.Notes))
		for _, n := range e.Notes {
			keep[uint8(n.MIDI)] = true
		}
		q.closeExcept(tick, keep)
		end := tick
		for _, n := range e.Notes {
			nend := tick + q.ticks(n.Length(), scale)
			q.sound(uint8(n.MIDI), tick, nend, n.Tied)
			end = max(end, nend)
		}
		return end, nil
	case *score.Tuplet:
		inner := scale * e.Scale()
		for _, child := range e.Elements {
			var err error
			if tick, err = q.step(child, tick, inner); err != nil {
				return tick, err
			}
		}
		return tick, nil
	default:
		return tick, score.Errorf(score.ErrUnsupportedElementType, "", "%T", e)
	}
}

// sound plays key from start to end, continuing an open tie of the same key.
func (q *sequencer) sound(key uint8, start, end uint32, tied bool) {
	if _, ok := q.open[key]; !ok {
		q.noteOn(start, key)
	}
	if tied {
		q.open[key] = start
		return
	}
	delete(q.open, key)
	q.noteOff(end, key)
}

func staffTrack(name string, channel uint8, st score.Staff, o Options) (smf.Track, error) {
	q := &sequencer{o: o, channel: channel, open: make(map[uint8]uint32)}
	var start uint32
	for _, m := range st.Measures {
		tick := start
		for _, e := range m.Elements {
			var err error
			if tick, err = q.step(e, tick, 1); err != nil {
				return nil, err
			}
		}
		start += measureTicks(m, o)
		if tick > start {
			start = tick
		}
	}
	q.closeExcept(start, nil)

	sort.SliceStable(q.events, func(i, j int) bool {
		a, b := q.events[i], q.events[j]
		if a.tick != b.tick {
			return a.tick < b.tick
		}
		return !a.on && b.on
	})

	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName(name))
	var last uint32
	for _, ev := range q.events {
		tr.Add(ev.tick-last, ev.msg)
		last = ev.tick
	}
	tr.Close(0)
	return tr, nil
}
