package engine

// NumPatterns is the size of the pattern space for two colors.
const NumPatterns = 1 << PatternLen

// ChoicePair is an ordered (player1, player2) pick. I and J index Patterns().
type ChoicePair struct {
	I, J   int
	P1, P2 Pattern
}

// Degenerate reports whether both players picked the same pattern.
func (c ChoicePair) Degenerate() bool { return c.I == c.J }

var (
	allPatterns [NumPatterns]Pattern
	allPairs    []ChoicePair
)

func init() {
	// Binary counting with B=0, R=1: BBB, BBR, BRB, ... RRR.
	for n := 0; n < NumPatterns; n++ {
		var p Pattern
		for k := 0; k < PatternLen; k++ {
			if n&(1<<(PatternLen-1-k)) != 0 {
				p[k] = Red
			} else {
				p[k] = Black
			}
		}
		allPatterns[n] = p
	}
	allPairs = make([]ChoicePair, 0, NumPatterns*NumPatterns)
	for i, p1 := range allPatterns {
		for j, p2 := range allPatterns {
			allPairs = append(allPairs, ChoicePair{I: i, J: j, P1: p1, P2: p2})
		}
	}
}

// Patterns returns the eight patterns in matrix order.
func Patterns() []Pattern {
	out := make([]Pattern, NumPatterns)
	copy(out, allPatterns[:])
	return out
}

// PatternIndex returns p's row/column in the result matrix.
func PatternIndex(p Pattern) int {
	n := 0
	for _, s := range p {
		n <<= 1
		if s == Red {
			n |= 1
		}
	}
	return n
}

// ChoicePairs returns all 64 ordered pairs, row-major, diagonal included.
func ChoicePairs() []ChoicePair {
	out := make([]ChoicePair, len(allPairs))
	copy(out, allPairs)
	return out
}
