package engine

import (
	"fmt"
	"math/rand"

	poker "github.com/paulhankin/poker"

	"penney-bench/server/errs"
)

// PlayingCard is a concrete card standing in for one deck symbol.
type PlayingCard struct {
	Card poker.Card
}

// String is the library's name for the card, suit first ("HA", "C7").
func (c PlayingCard) String() string { return c.Card.String() }

// Color is the symbol this card plays as.
func (c PlayingCard) Color() Symbol {
	switch c.Card.Suit() {
	case poker.Heart, poker.Diamond:
		return Red
	}
	return Black
}

// colorCards returns the library's cards of the given suits, in its order.
func colorCards(suits ...poker.Suit) []PlayingCard {
	out := make([]PlayingCard, 0, 13*len(suits))
	for _, pc := range poker.Cards {
		for _, s := range suits {
			if pc.Suit() == s {
				out = append(out, PlayingCard{Card: pc})
			}
		}
	}
	return out
}

// PlayingCards lays out a standard-size deck as real cards so it can be
// stacked by hand: each B becomes the next club/spade and each R the next
// heart/diamond, with the order within each color drawn from seed.
func PlayingCards(deck Deck, seed int64) ([]PlayingCard, error) {
	if len(deck) != 2*DefaultHalfSize {
		return nil, errs.Configurationf("playing cards need a %d-card deck, got %d", 2*DefaultHalfSize, len(deck))
	}
	blacks := colorCards(poker.Club, poker.Spade)
	reds := colorCards(poker.Heart, poker.Diamond)
	if len(blacks) != DefaultHalfSize || len(reds) != DefaultHalfSize {
		return nil, fmt.Errorf("card library has %d black and %d red cards", len(blacks), len(reds))
	}
	r := rand.New(rand.NewSource(seed))
	r.Shuffle(len(blacks), func(i, j int) { blacks[i], blacks[j] = blacks[j], blacks[i] })
	r.Shuffle(len(reds), func(i, j int) { reds[i], reds[j] = reds[j], reds[i] })

	out := make([]PlayingCard, 0, len(deck))
	for i, sym := range deck {
		switch sym {
		case Black:
			if len(blacks) == 0 {
				return nil, errs.Configurationf("deck has more than %d black cards", DefaultHalfSize)
			}
			out = append(out, blacks[0])
			blacks = blacks[1:]
		case Red:
			if len(reds) == 0 {
				return nil, errs.Configurationf("deck has more than %d red cards", DefaultHalfSize)
			}
			out = append(out, reds[0])
			reds = reds[1:]
		default:
			return nil, errs.Configurationf("deck symbol %q at %d", byte(sym), i)
		}
	}
	return out, nil
}
