package cli

import (
	"math"

	"github.com/haivivi/songbook/pkg/score"
)

// SongInfo summarizes a song for display.
type SongInfo struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Composer    string   `json:"composer" yaml:"composer"`
	PublisherID string   `json:"publisherId" yaml:"publisherId"`
	Instruments []string `json:"instruments" yaml:"instruments"`
	Staves      int      `json:"staves" yaml:"staves"`
	Measures    int      `json:"measures" yaml:"measures"`
	Notes       int      `json:"notes" yaml:"notes"`
	// Seconds is the play time of the longest staff.
	Seconds float64 `json:"seconds" yaml:"seconds"`
	// Irregular counts measures whose content does not fill their time
	// signature exactly.
	Irregular int `json:"irregular" yaml:"irregular"`
}

// Summarize counts the parts of song.
func Summarize(song *score.Song) SongInfo {
	info := SongInfo{
		ID:          song.ID.String(),
		Title:       song.Title,
		Composer:    song.Composer,
		PublisherID: song.PublisherID.String(),
		Instruments: []string{},
	}
	for _, sm := range song.SheetMusic {
		info.Instruments = append(info.Instruments, sm.Instrument.Name)
	}
	for _, st := range song.Staves() {
		info.Staves++
		info.Measures = max(info.Measures, len(st.Measures))
		var seconds float64
		for _, m := range st.Measures {
			seconds += m.Seconds()
			if math.Abs(m.Content()-m.Length()) > 1e-9 {
				info.Irregular++
			}
			score.Walk(m.Elements, func(e score.Element) bool {
				if _, ok := e.(*score.Note); ok {
					info.Notes++
				}
				return true
			})
		}
		info.Seconds = max(info.Seconds, seconds)
	}
	return info
}
