package ans

import (
	"sort"

	"github.com/pkg/errors"
)

// An Alphabet is a table of positive symbol weights.
// Symbol i owns the range [offsets[i], offsets[i]+weights[i]) of [0, sum), so that a uniformly distributed remainder falls in it with probability weights[i]/sum.
// An Alphabet holds only weights; callers keep the symbols themselves in a parallel slice.
// An Alphabet is immutable and may be shared between Decoders.
type Alphabet struct {
	weights []uint64
	offsets []uint64
	sum     uint64
}

// NewAlphabet returns an Alphabet with the given weights, in order.
func NewAlphabet(weights ...uint32) (*Alphabet, error) {
	if len(weights) == 0 {
		return nil, errors.Wrap(ErrConfig, "empty alphabet")
	}
	a := &Alphabet{
		weights: make([]uint64, 0, len(weights)),
		offsets: make([]uint64, 0, len(weights)),
	}
	for i, w := range weights {
		if w == 0 {
			return nil, errors.Wrapf(ErrConfig, "zero weight for symbol %d", i)
		}
		a.offsets = append(a.offsets, a.sum)
		a.weights = append(a.weights, uint64(w))
		a.sum += uint64(w)
	}
	return a, nil
}

// Len returns the number of symbols.
func (a *Alphabet) Len() int {
	return len(a.weights)
}

// Sum returns the sum of all weights.
func (a *Alphabet) Sum() uint64 {
	return a.sum
}

// FindBin returns the symbol whose range contains rem, which must be less than Sum.
func (a *Alphabet) FindBin(rem uint64) int {
	return sort.Search(len(a.offsets), func(i int) bool {
		return a.offsets[i]+a.weights[i] > rem
	})
}
