// Package ans implements the decoding half of an Asymmetric Numeral System.
// A Decoder treats a fixed byte string, typically a hash digest, as the encoded form of a symbol sequence
// and recovers symbols from it one at a time, with probabilities given by the caller.
// Nothing is ever encoded: the byte string is consumed once, front to back, as a source of randomness.
package ans

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

const (
	// stateBytes is the number of source bytes loaded into the state register by NewDecoder.
	stateBytes = 8

	// loadThreshold is the state value below which the next source byte is loaded into the top byte of the register.
	loadThreshold uint64 = 1 << 56
)

var (
	// ErrConfig is returned for an alphabet or modulus that cannot be decoded from, such as an empty alphabet or a zero weight.
	ErrConfig = errors.New("invalid configuration")

	// ErrInvalidDigestLength is returned by NewDecoder when the source is shorter than the state register.
	ErrInvalidDigestLength = errors.New("digest shorter than 8 bytes")

	// ErrEntropyExhausted is returned when the state has too little precision left to decode another symbol.
	// The state is left untouched and no symbol is produced.
	ErrEntropyExhausted = errors.New("entropy exhausted")
)

// A Decoder holds the 64 bit state register and the unread remainder of its byte source.
// A Decoder is not safe for concurrent use.
type Decoder struct {
	src   []byte
	state uint64
}

// NewDecoder returns a Decoder whose state is the first 8 bytes of src in little endian order.
// The remaining bytes are loaded one at a time as decoding proceeds.
// src is not copied and must not be modified while the Decoder is in use.
func NewDecoder(src []byte) (*Decoder, error) {
	if len(src) < stateBytes {
		return nil, errors.Wrapf(ErrInvalidDigestLength, "got %d bytes", len(src))
	}
	d := &Decoder{
		src:   src[stateBytes:],
		state: binary.LittleEndian.Uint64(src[:stateBytes]),
	}
	return d, nil
}

// State returns the current value of the state register.
func (d *Decoder) State() uint64 {
	return d.state
}

// Remaining returns the number of source bytes that have not yet been loaded into the state.
func (d *Decoder) Remaining() int {
	return len(d.src)
}

// DecodeUniform returns an index in [0, modulus), each index being equally likely.
func (d *Decoder) DecodeUniform(modulus uint64) (uint64, error) {
	rem, quot, err := d.divide(modulus)
	if err != nil {
		return 0, err
	}
	d.load(quot)
	return rem, nil
}

// DecodeWeights returns the index of a symbol of a, each symbol being chosen with probability proportional to its weight.
func (d *Decoder) DecodeWeights(a *Alphabet) (int, error) {
	rem, quot, err := d.divide(a.sum)
	if err != nil {
		return 0, err
	}
	i := a.FindBin(rem)
	phase := rem - a.offsets[i]
	d.load(quot*a.weights[i] + phase)
	return i, nil
}

// DecodeBinary chooses between two branches with relative weights wa and wb, returning 0 for the first and 1 for the second.
// The weights need not be integers.
// They are quantized so that their sum does not exceed limit, see quantize.
// A branch whose quantized weight is zero is never chosen.
func (d *Decoder) DecodeBinary(wa, wb float64, limit uint64) (int, error) {
	qa, qb, err := quantize(wa, wb, limit)
	if err != nil {
		return 0, err
	}
	rem, quot, err := d.divide(qa + qb)
	if err != nil {
		return 0, err
	}
	if rem < qa {
		d.load(quot*qa + rem)
		return 0, nil
	}
	d.load(quot*qb + rem - qa)
	return 1, nil
}

// quantize converts the weights of a binary choice to integers.
// If wa+wb exceeds limit, the weights are scaled so that they sum to exactly limit, with the first weight truncated toward zero and the second taking the rest.
// Otherwise each weight is truncated toward zero.
func quantize(wa, wb float64, limit uint64) (uint64, uint64, error) {
	if limit == 0 {
		return 0, 0, errors.Wrap(ErrConfig, "zero quantization limit")
	}
	for _, w := range []float64{wa, wb} {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return 0, 0, errors.Wrapf(ErrConfig, "binary weights %g, %g", wa, wb)
		}
	}

	sum := wa + wb
	if math.IsInf(sum, 0) {
		return 0, 0, errors.Wrapf(ErrConfig, "binary weights %g, %g overflow", wa, wb)
	}
	var qa, qb uint64
	if sum > float64(limit) {
		// wa/sum is at most 1, so qa never exceeds limit.
		qa = uint64(math.Floor(wa / sum * float64(limit)))
		qb = limit - qa
	} else {
		qa = uint64(math.Floor(wa))
		qb = uint64(math.Floor(wb))
	}
	if qa+qb == 0 {
		return 0, 0, errors.Wrapf(ErrConfig, "binary weights %g, %g quantize to zero", wa, wb)
	}
	return qa, qb, nil
}

// divide splits the state into a remainder modulo total and a quotient.
// A zero quotient means that the remainder is not uniformly distributed over [0, total), and ErrEntropyExhausted is returned.
func (d *Decoder) divide(total uint64) (uint64, uint64, error) {
	if total == 0 {
		return 0, 0, errors.Wrap(ErrConfig, "zero modulus")
	}
	quot := d.state / total
	if quot == 0 {
		return 0, 0, errors.Wrapf(ErrEntropyExhausted, "modulus %d, %d bytes unread", total, len(d.src))
	}
	return d.state % total, quot, nil
}

// load sets the state to next, first moving the next source byte into the top byte if next has room for it.
// This is the only place the source is consumed.
func (d *Decoder) load(next uint64) {
	if next < loadThreshold && len(d.src) > 0 {
		next |= uint64(d.src[0]) << 56
		d.src = d.src[1:]
	}
	d.state = next
}
