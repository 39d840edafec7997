package score

import (
	"math"
	"strings"
)

// Duration symbols, in table order. Durations are fractions of a whole note.
const (
	SymbolWhole     = "w"
	SymbolHalf      = "h"
	SymbolQuarter   = "q"
	SymbolEighth    = "i"
	SymbolSixteenth = "s"
)

// MaxDuration is the longest single element value accepted (a breve).
const MaxDuration = 2.0

type symbolEntry struct {
	symbol   byte
	duration float64
}

// The iteration order decides ties in SymbolFromDuration.
var symbolTable = []symbolEntry{
	{'w', 1.0},
	{'h', 0.5},
	{'q', 0.25},
	{'i', 0.125},
	{'s', 0.0625},
}

// SymbolFromDuration returns the table symbol whose duration is nearest to d.
// On equal distance the earlier table entry wins.
func SymbolFromDuration(d float64) string {
	best := symbolTable[0]
	bestDiff := math.Abs(d - best.duration)
	for _, e := range symbolTable[1:] {
		if diff := math.Abs(d - e.duration); diff < bestDiff {
			best, bestDiff = e, diff
		}
	}
	return string(best.symbol)
}

// DurationFromSymbol looks up a symbol's duration. A run of known symbols
// ("iii", "ww") sums its parts; anything unrecognized counts as a quarter.
func DurationFromSymbol(sym string) float64 {
	d, ok := lookupSymbol(sym)
	if !ok {
		return 0.25
	}
	return d
}

// NormalizeSymbol returns sym if every character is a known symbol and "q"
// otherwise.
func NormalizeSymbol(sym string) string {
	if !IsSymbol(sym) {
		return SymbolQuarter
	}
	return sym
}

// IsSymbol reports whether sym is a non-empty run of known symbols.
func IsSymbol(sym string) bool {
	_, ok := lookupSymbol(sym)
	return ok
}

func lookupSymbol(sym string) (float64, bool) {
	if sym == "" {
		return 0, false
	}
	total := 0.0
	for i := 0; i < len(sym); i++ {
		found := false
		for _, e := range symbolTable {
			if e.symbol == sym[i] {
				total += e.duration
				found = true
				break
			}
		}
		if !found {
			return 0, false
		}
	}
	return total, true
}

// DotFactor is the length multiplier of a value with n augmentation dots:
// 1, 1.5, 1.75, ...
func DotFactor(dots int) float64 {
	if dots <= 0 {
		return 1
	}
	return 2 - math.Pow(2, -float64(dots))
}

// Value is the duration half of a Note or Rest: a base duration and the
// symbol that spells it. Exactly one of Duration or Symbol needs to be set;
// Symbol wins when both are.
type Value struct {
	Duration float64
	Symbol   string
	Dotted   int
	Tied     bool
}

// Resolve fills in whichever of Duration and Symbol is missing, snapping
// Duration to the symbol's table value so that both always agree.
func (v Value) Resolve() (Value, error) {
	if v.Dotted < 0 {
		return Value{}, Errorf(ErrInvalidDotted, "", "dotted count %d is negative", v.Dotted)
	}
	switch {
	case v.Symbol != "":
		v.Symbol = NormalizeSymbol(strings.TrimSpace(v.Symbol))
	case v.Duration > 0 && v.Duration <= MaxDuration:
		v.Symbol = SymbolFromDuration(v.Duration)
	default:
		return Value{}, Errorf(ErrInvalidDuration, "", "duration %v outside (0,%v]", v.Duration, MaxDuration)
	}
	v.Duration = DurationFromSymbol(v.Symbol)
	if v.Duration <= 0 || v.Duration > MaxDuration {
		return Value{}, Errorf(ErrInvalidDuration, "", "symbol %q spans %v, outside (0,%v]", v.Symbol, v.Duration, MaxDuration)
	}
	return v, nil
}

// Length is the dotted length of the value.
func (v Value) Length() float64 {
	return v.Duration * DotFactor(v.Dotted)
}
