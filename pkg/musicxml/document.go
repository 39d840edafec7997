package musicxml

import (
	"encoding/xml"
	"strings"
)

// Numeric fields are kept as text so a single bad value can fall back to a
// default instead of failing the whole document.

type document struct {
	XMLName        xml.Name       `xml:"score-partwise"`
	Work           work           `xml:"work"`
	MovementTitle  string         `xml:"movement-title"`
	Identification identification `xml:"identification"`
	PartList       partList       `xml:"part-list"`
	Parts          []part         `xml:"part"`
}

type work struct {
	Title string `xml:"work-title"`
}

type identification struct {
	Creators []creator `xml:"creator"`
}

type creator struct {
	Type string `xml:"type,attr"`
	Name string `xml:",chardata"`
}

type partList struct {
	ScoreParts []scorePart `xml:"score-part"`
}

type scorePart struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"part-name"`
}

type part struct {
	ID       string    `xml:"id,attr"`
	Measures []measure `xml:"measure"`
}

// measure keeps its children in document order.
type measure struct {
	Number     string
	Implicit   bool
	Attributes []attributes
	Tempo      string
	Notes      []note
}

func (m *measure) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		switch attr.Name.Local {
		case "number":
			m.Number = attr.Value
		case "implicit":
			m.Implicit = attr.Value == "yes"
		}
	}
	for {
		token, err := d.Token()
		if err != nil {
			return err
		}
		switch t := token.(type) {
		case xml.EndElement:
			return nil
		case xml.StartElement:
			switch t.Name.Local {
			case "attributes":
				var a attributes
				if err := d.DecodeElement(&a, &t); err != nil {
					return err
				}
				m.Attributes = append(m.Attributes, a)
			case "note":
				var n note
				if err := d.DecodeElement(&n, &t); err != nil {
					return err
				}
				m.Notes = append(m.Notes, n)
			case "sound":
				var s sound
				if err := d.DecodeElement(&s, &t); err != nil {
					return err
				}
				if s.Tempo != "" {
					m.Tempo = s.Tempo
				}
			case "direction":
				var dir direction
				if err := d.DecodeElement(&dir, &t); err != nil {
					return err
				}
				for _, s := range dir.Sounds {
					if s.Tempo != "" {
						m.Tempo = s.Tempo
					}
				}
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		}
	}
}

type attributes struct {
	Divisions string    `xml:"divisions"`
	Keys      []key     `xml:"key"`
	Times     []timeSig `xml:"time"`
	Clefs     []clef    `xml:"clef"`
}

type key struct {
	Fifths string `xml:"fifths"`
}

type timeSig struct {
	Beats    string `xml:"beats"`
	BeatType string `xml:"beat-type"`
}

type clef struct {
	Number string `xml:"number,attr"`
	Sign   string `xml:"sign"`
	Line   string `xml:"line"`
}

type sound struct {
	Tempo string `xml:"tempo,attr"`
}

type direction struct {
	Sounds []sound `xml:"sound"`
}

type note struct {
	Grace     *struct{}         `xml:"grace"`
	Chord     *struct{}         `xml:"chord"`
	Pitch     *pitch            `xml:"pitch"`
	Rest      *rest             `xml:"rest"`
	Duration  string            `xml:"duration"`
	Ties      []tie             `xml:"tie"`
	Voice     string            `xml:"voice"`
	Type      string            `xml:"type"`
	Dots      []struct{}        `xml:"dot"`
	TimeMod   *timeModification `xml:"time-modification"`
	Staff     string            `xml:"staff"`
	Notations []notations       `xml:"notations"`
	Lyrics    []lyric           `xml:"lyric"`
}

type pitch struct {
	Step   string `xml:"step"`
	Alter  string `xml:"alter"`
	Octave string `xml:"octave"`
}

type rest struct {
	Measure string `xml:"measure,attr"`
}

type tie struct {
	Type string `xml:"type,attr"`
}

type timeModification struct {
	ActualNotes string `xml:"actual-notes"`
	NormalNotes string `xml:"normal-notes"`
	NormalType  string `xml:"normal-type"`
}

type notations struct {
	Tuplets []tupletMark `xml:"tuplet"`
	Tied    []tie        `xml:"tied"`
}

type tupletMark struct {
	Type string `xml:"type,attr"`
}

type lyric struct {
	Text string `xml:"text"`
}

func (n *note) voice() string {
	if v := strings.TrimSpace(n.Voice); v != "" {
		return v
	}
	return "1"
}

func (n *note) staff() string {
	if s := strings.TrimSpace(n.Staff); s != "" {
		return s
	}
	return "1"
}

func (n *note) tied() bool {
	for _, t := range n.Ties {
		if t.Type == "start" {
			return true
		}
	}
	for _, nt := range n.Notations {
		for _, t := range nt.Tied {
			if t.Type == "start" {
				return true
			}
		}
	}
	return false
}

func (n *note) tuplet(kind string) bool {
	for _, nt := range n.Notations {
		for _, t := range nt.Tuplets {
			if t.Type == kind {
				return true
			}
		}
	}
	return false
}

func (n *note) lyric() string {
	for _, l := range n.Lyrics {
		if l.Text != "" {
			return l.Text
		}
	}
	return ""
}
