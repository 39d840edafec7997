// Package pattern compiles a score into the playback notation consumed by
// the sequencer.
//
// Every staff becomes one voice string:
//
//	V<index> R <token> <token> ...
//
// A token is a note name or R, an optional tie-in prefix "-", the duration
// symbol, one "." per dot and an optional tie-out suffix "-". Chord notes are
// joined with "+". Tokens inside a tuplet carry a "*<subdivisions>:<implied>"
// suffix; nested tuplets multiply their ratios into a single suffix.
//
// A tied pair therefore reads "A4q-" followed by "A4-q": the continuation
// puts "-" between the name and the symbol, never before the name.
//
// Voice strings are joined with single spaces, in staff order across all
// sheet music of the song.
package pattern

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/haivivi/songbook/pkg/score"
)

// Compile renders every staff of song.
func Compile(song *score.Song) (string, error) {
	var voices []string
	for i, staff := range song.Staves() {
		v, err := CompileStaff(i, staff)
		if err != nil {
			return "", err
		}
		voices = append(voices, v)
	}
	return strings.Join(voices, " "), nil
}

// CompileStaff renders one staff as voice index.
func CompileStaff(index int, staff score.Staff) (string, error) {
	tokens, err := Tokens(staff)
	if err != nil {
		return "", fmt.Errorf("pattern: staff %d: %w", index, err)
	}
	var b strings.Builder
	b.WriteString("V")
	b.WriteString(strconv.Itoa(index))
	b.WriteString(" R")
	for _, t := range tokens {
		b.WriteByte(' ')
		b.WriteString(t)
	}
	return b.String(), nil
}

// Tokens returns the playback tokens of a staff in order. Ties carry across
// measure boundaries.
func Tokens(staff score.Staff) ([]string, error) {
	c := &compiler{}
	for mi, m := range staff.Measures {
		for ei, e := range m.Elements {
			if err := c.element(e, unity, position{measure: mi, index: ei}); err != nil {
				return nil, err
			}
		}
	}
	return c.out, nil
}

// ratio is the accumulated tuplet scale of the current nesting level.
type ratio struct{ sub, implied int }

var unity = ratio{1, 1}

func (r ratio) mul(sub, implied int) ratio {
	return ratio{r.sub * sub, r.implied * implied}
}

func (r ratio) suffix() string {
	if r == unity {
		return ""
	}
	return "*" + strconv.Itoa(r.sub) + ":" + strconv.Itoa(r.implied)
}

// position locates an element within a staff. It is only rendered when an
// error is reported.
type position struct {
	parent         *position
	measure, index int
}

func (p position) String() string {
	if p.parent == nil {
		return fmt.Sprintf("measures[%d].musicElements[%d]", p.measure, p.index)
	}
	return fmt.Sprintf("%s.elements[%d]", p.parent, p.index)
}

// restKey is the sounding key of a rest in the carry set.
const restKey = -1

type compiler struct {
	out []string
	// carry holds the sounding keys of the tied occurrences produced by the
	// previous step.
	carry []int
}

func (c *compiler) tiedIn(key int) bool {
	for _, k := range c.carry {
		if k == key {
			return true
		}
	}
	return false
}

func (c *compiler) element(e score.Element, r ratio, pos position) error {
	switch e := e.(type) {
	case *score.Note:
		tok, tied := c.value(e.Name, e.MIDI, e.Value())
		c.carry = c.carry[:0]
		if tied {
			c.carry = append(c.carry, e.MIDI)
		}
		c.out = append(c.out, tok+r.suffix())
	case *score.Rest:
		tok, tied := c.value("R", restKey, e.Value())
		c.carry = c.carry[:0]
		if tied {
			c.carry = append(c.carry, restKey)
		}
		c.out = append(c.out, tok+r.suffix())
	case *score.Chord:
		parts := make([]string, 0, len(e.Notes))
		var next []int
		for _, n := range e.Notes {
			tok, tied := c.value(n.Name, n.MIDI, n.Value())
			if tied {
				next = append(next, n.MIDI)
			}
			parts = append(parts, tok)
		}
		c.carry = next
		if len(parts) > 0 {
			c.out = append(c.out, strings.Join(parts, "+")+r.suffix())
		}
	case *score.Tuplet:
		inner := r.mul(e.Subdivisions, e.ImpliedDivision)
		for i, child := range e.Elements {
			if err := c.element(child, inner, position{parent: &pos, index: i}); err != nil {
				return err
			}
		}
	default:
		return score.Errorf(score.ErrUnsupportedElementType, pos.String(), "%T", e)
	}
	return nil
}

// value renders a note or rest token without tuplet suffix and reports
// whether it ties into the next step.
func (c *compiler) value(name string, key int, v score.Value) (string, bool) {
	var b strings.Builder
	b.WriteString(name)
	if c.tiedIn(key) {
		b.WriteByte('-')
	}
	b.WriteString(v.Symbol)
	b.WriteString(strings.Repeat(".", v.Dotted))
	if v.Tied {
		b.WriteByte('-')
	}
	return b.String(), v.Tied
}
