package engine

// Pair holds one number per player.
type Pair struct {
	P1 int `json:"p1"`
	P2 int `json:"p2"`
}

// Score is the outcome of one deck for one choice pair under both modes.
type Score struct {
	Tricks Pair `json:"tricks"`
	Cards  Pair `json:"cards"`
}

// Of returns the pair for one scoring mode.
func (s Score) Of(m Mode) Pair {
	if m == Cards {
		return s.Cards
	}
	return s.Tricks
}

// Unscored is the number of symbols neither player collected: the dangling
// suffix after the last trick.
func (s Score) Unscored(deckLen int) int {
	return deckLen - s.Cards.P1 - s.Cards.P2
}

// ScoreDeck plays one game in a single left-to-right pass.
//
// A window matching p1 is checked before p2. A match awards the trick plus
// every card turned since the previous trick (floating) and the three in the
// window, then scanning resumes after the window. Cards after the last trick
// belong to nobody.
func ScoreDeck(deck Deck, p1, p2 Pattern) Score {
	var s Score
	floating := 0
	n := len(deck)
	i := 0
	for i <= n-PatternLen {
		switch {
		case matchAt(deck, i, p1):
			s.Tricks.P1++
			s.Cards.P1 += floating + PatternLen
			i += PatternLen
			floating = 0
		case matchAt(deck, i, p2):
			s.Tricks.P2++
			s.Cards.P2 += floating + PatternLen
			i += PatternLen
			floating = 0
		default:
			i++
			floating++
		}
	}
	return s
}

func matchAt(deck Deck, i int, p Pattern) bool {
	return deck[i] == p[0] && deck[i+1] == p[1] && deck[i+2] == p[2]
}
