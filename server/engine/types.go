package engine

import (
	"strings"

	"penney-bench/server/errs"
)

// Symbol is one card color.
type Symbol byte

const (
	Black Symbol = 'B'
	Red   Symbol = 'R'
)

func (s Symbol) valid() bool { return s == Black || s == Red }

// Deck is a shuffled sequence of symbols, half of each color.
type Deck []Symbol

func (d Deck) String() string { return string(d) }

// ParseDeck reads a stored deck back ("BRRB...").
func ParseDeck(s string) (Deck, error) {
	d := make(Deck, len(s))
	for i := 0; i < len(s); i++ {
		sym := Symbol(s[i])
		if !sym.valid() {
			return nil, errs.Configurationf("deck symbol %q at %d", s[i], i)
		}
		d[i] = sym
	}
	return d, nil
}

// PatternLen is the number of symbols a player picks.
const PatternLen = 3

// Pattern is one player's pick, e.g. "BRR".
type Pattern [PatternLen]Symbol

func (p Pattern) String() string { return string(p[:]) }

// ParsePattern accepts exactly three B/R symbols, case-insensitive.
func ParsePattern(s string) (Pattern, error) {
	var p Pattern
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != PatternLen {
		return p, errs.Configurationf("pattern %q: want %d symbols, got %d", s, PatternLen, len(s))
	}
	for i := 0; i < PatternLen; i++ {
		sym := Symbol(s[i])
		if !sym.valid() {
			return p, errs.Configurationf("pattern %q: unknown symbol %q", s, s[i])
		}
		p[i] = sym
	}
	return p, nil
}

// Mode selects how a game is scored.
type Mode string

const (
	Tricks Mode = "tricks"
	Cards  Mode = "cards"
)

// Modes lists every scoring mode in storage order.
var Modes = []Mode{Tricks, Cards}

// ParseMode accepts "tricks" or "cards"; empty means tricks.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", Tricks:
		return Tricks, nil
	case Cards:
		return Cards, nil
	}
	return "", errs.Configurationf("unknown scoring mode %q", s)
}
