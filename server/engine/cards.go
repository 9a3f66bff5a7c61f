package engine

import (
	"math/rand"
	"sync"

	"penney-bench/server/errs"
)

// DefaultHalfSize is a standard 52-card deck split by color.
const DefaultHalfSize = 26

// splitmix64 increment; deck i draws the (i+1)th output of the stream.
const seedGamma = 0x9E3779B97F4A7C15

// DeckSeed returns the shuffle seed of deck index i for a batch seed.
// It is the splitmix64 stream started at mix(seed), advanced i+1 times.
// Mixing first keeps batch seeds that differ by a multiple of the gamma
// from walking the same stream.
func DeckSeed(seed int64, i int) int64 {
	return int64(mix(mix(uint64(seed)) + uint64(i+1)*seedGamma))
}

func mix(z uint64) uint64 {
	z ^= z >> 30
	z *= 0xBF58476D1CE4E5B9
	z ^= z >> 27
	z *= 0x94D049BB133111EB
	z ^= z >> 31
	return z
}

// NewDeck shuffles half B and half R with a rand source seeded by deckSeed.
func NewDeck(halfSize int, deckSeed int64) Deck {
	deck := make(Deck, 2*halfSize)
	for i := range deck {
		if i < halfSize {
			deck[i] = Black
		} else {
			deck[i] = Red
		}
	}
	r := rand.New(rand.NewSource(deckSeed))
	for i := len(deck) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
	return deck
}

func validateGen(n, halfSize int) error {
	if n <= 0 {
		return errs.Configurationf("n_decks must be > 0, got %d", n)
	}
	if halfSize <= 0 {
		return errs.Configurationf("half_size must be > 0, got %d", halfSize)
	}
	return nil
}

// GenerateDecks returns n independent decks. Identical (n, halfSize, seed)
// always yields identical output.
func GenerateDecks(n, halfSize int, seed int64) ([]Deck, error) {
	if err := validateGen(n, halfSize); err != nil {
		return nil, err
	}
	decks := make([]Deck, n)
	for i := range decks {
		decks[i] = NewDeck(halfSize, DeckSeed(seed, i))
	}
	return decks, nil
}

// GenerateDecksParallel is GenerateDecks split into contiguous index ranges
// over workers. Output does not depend on the worker count.
func GenerateDecksParallel(n, halfSize int, seed int64, workers int) ([]Deck, error) {
	if err := validateGen(n, halfSize); err != nil {
		return nil, err
	}
	if workers <= 1 || n < workers {
		return GenerateDecks(n, halfSize, seed)
	}
	decks := make([]Deck, n)
	chunk := n / workers
	rem := n % workers

	var wg sync.WaitGroup
	wg.Add(workers)
	start := 0
	for w := 0; w < workers; w++ {
		size := chunk
		if w < rem {
			size++
		}
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				decks[i] = NewDeck(halfSize, DeckSeed(seed, i))
			}
		}(start, start+size)
		start += size
	}
	wg.Wait()
	return decks, nil
}
