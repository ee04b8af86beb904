package sitepass

import (
	"math"

	"github.com/pkg/errors"

	"github.com/fumin/sitepass/ans"
)

// constrainedLimit bounds the quantized branch weights of a Constrained emitter.
const constrainedLimit = 1 << 32

// An Emitter produces one symbol per call to Emit.
// The set of emitters is closed: *Uniform, *Weighted, *TwoStage, *Constrained and *Sequence.
// Emitters nest, so a single Decoder drives an arbitrarily deep tree in one pass over its source.
type Emitter interface {
	emitter()
}

// A Uniform emitter picks one of its symbols with equal probability.
type Uniform struct {
	symbols []rune
}

// NewUniform returns a Uniform emitter over symbols.
func NewUniform(symbols []rune) (*Uniform, error) {
	if len(symbols) == 0 {
		return nil, errors.Wrap(ErrConfig, "empty symbol set")
	}
	return &Uniform{symbols: symbols}, nil
}

// A Weighted emitter picks one of its symbols with probability proportional to its weight.
type Weighted struct {
	symbols  []rune
	alphabet *ans.Alphabet
}

// NewWeighted returns a Weighted emitter where symbols[i] has weight weights[i].
func NewWeighted(symbols []rune, weights []uint32) (*Weighted, error) {
	if len(symbols) != len(weights) {
		return nil, errors.Wrapf(ErrConfig, "%d symbols, %d weights", len(symbols), len(weights))
	}
	a, err := ans.NewAlphabet(weights...)
	if err != nil {
		return nil, err
	}
	return &Weighted{symbols: symbols, alphabet: a}, nil
}

// A TwoStage emitter first picks one of its child emitters by weight, then lets the child pick the symbol.
// The weights set the proportions between children regardless of how many symbols each child has.
type TwoStage struct {
	children []Emitter
	alphabet *ans.Alphabet
}

// NewTwoStage returns a TwoStage emitter where children[i] has weight weights[i].
func NewTwoStage(children []Emitter, weights []uint32) (*TwoStage, error) {
	if len(children) != len(weights) {
		return nil, errors.Wrapf(ErrConfig, "%d emitters, %d weights", len(children), len(weights))
	}
	a, err := ans.NewAlphabet(weights...)
	if err != nil {
		return nil, err
	}
	return &TwoStage{children: children, alphabet: a}, nil
}

// A Constrained emitter guarantees that its required emitter is chosen at least a given number of times within a fixed number of calls.
// Otherwise it chooses between its required and fallback emitters in the ratio of their weights.
// A Constrained emitter carries per derivation state and must not be shared between derivations.
type Constrained struct {
	weights  Adjustmotron
	required Emitter
	fallback Emitter

	owed  int // required symbols still to be emitted
	slots int // calls left before the horizon
}

// NewConstrained returns a Constrained emitter that calls required at least count times in its first horizon calls.
// requiredWeight and optionalWeight are the unconstrained relative weights of the two branches.
func NewConstrained(requiredWeight, optionalWeight float64, count, horizon int, required, fallback Emitter) (*Constrained, error) {
	for _, w := range []float64{requiredWeight, optionalWeight} {
		if !(w > 0) || math.IsInf(w, 0) {
			return nil, errors.Wrapf(ErrConfig, "branch weights %g, %g", requiredWeight, optionalWeight)
		}
	}
	if count < 0 || horizon < count {
		return nil, errors.Wrapf(ErrConfig, "%d required within %d", count, horizon)
	}
	c := &Constrained{
		weights:  Adjustmotron{Required: requiredWeight, Optional: optionalWeight},
		required: required,
		fallback: fallback,
		owed:     count,
		slots:    horizon,
	}
	return c, nil
}

// Remaining returns the number of required symbols still owed and the number of calls left before the horizon.
func (c *Constrained) Remaining() (owed, slots int) {
	return c.owed, c.slots
}

// A Sequence emitter hands each call to one of its stages in order.
// Stage i serves spans[i] calls, the last stage serves every call after that.
// Like Constrained, a Sequence counts calls and must not be shared between derivations.
type Sequence struct {
	stages []Emitter
	spans  []int

	stage int // index of the current stage
	used  int // calls served by the current stage
}

// NewSequence returns a Sequence emitter over stages, where all but the last stage serve spans[i] calls each.
func NewSequence(stages []Emitter, spans []int) (*Sequence, error) {
	if len(stages) == 0 {
		return nil, errors.Wrap(ErrConfig, "empty sequence")
	}
	if len(spans) != len(stages)-1 {
		return nil, errors.Wrapf(ErrConfig, "%d stages, %d spans", len(stages), len(spans))
	}
	for _, n := range spans {
		if n < 0 {
			return nil, errors.Wrapf(ErrConfig, "negative span %d", n)
		}
	}
	return &Sequence{stages: stages, spans: spans}, nil
}

func (*Uniform) emitter() {}
func (*Weighted) emitter() {}
func (*TwoStage) emitter() {}
func (*Constrained) emitter() {}
func (*Sequence) emitter() {}

// Emit produces one symbol from e, decoding from d.
// If d runs out of entropy the returned error has cause ans.ErrEntropyExhausted.
func Emit(d *ans.Decoder, e Emitter) (rune, error) {
	switch e := e.(type) {
	case *Uniform:
		i, err := d.DecodeUniform(uint64(len(e.symbols)))
		if err != nil {
			return 0, err
		}
		return e.symbols[i], nil
	case *Weighted:
		i, err := d.DecodeWeights(e.alphabet)
		if err != nil {
			return 0, err
		}
		return e.symbols[i], nil
	case *TwoStage:
		i, err := d.DecodeWeights(e.alphabet)
		if err != nil {
			return 0, err
		}
		return Emit(d, e.children[i])
	case *Constrained:
		return emitConstrained(d, e)
	case *Sequence:
		return emitSequence(d, e)
	}
	return 0, errors.Errorf("unknown emitter %T", e)
}

func emitConstrained(d *ans.Decoder, c *Constrained) (rune, error) {
	if c.slots <= 0 {
		return 0, errors.WithStack(ErrHorizonExceeded)
	}
	pa, pb := c.weights.Odds(c.owed, c.slots)
	// Scaled past the limit, the odds are requantized to sum to exactly constrainedLimit.
	branch, err := d.DecodeBinary(pa*2*constrainedLimit, pb*2*constrainedLimit, constrainedLimit)
	if err != nil {
		return 0, err
	}
	c.slots--
	if branch != 0 {
		return Emit(d, c.fallback)
	}
	r, err := Emit(d, c.required)
	if err != nil {
		return 0, err
	}
	if c.owed > 0 {
		c.owed--
	}
	return r, nil
}

func emitSequence(d *ans.Decoder, s *Sequence) (rune, error) {
	for s.stage < len(s.spans) && s.used >= s.spans[s.stage] {
		s.stage++
		s.used = 0
	}
	r, err := Emit(d, s.stages[s.stage])
	if err != nil {
		return 0, err
	}
	s.used++
	return r, nil
}
