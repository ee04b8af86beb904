package sitepass

import (
	"bytes"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fumin/sitepass/ans"
)

func newDecoder(t *testing.T, src []byte) *ans.Decoder {
	t.Helper()
	d, err := ans.NewDecoder(src)
	require.NoError(t, err)
	return d
}

func TestUniform(t *testing.T) {
	symbols, err := Upper.Symbols()
	require.NoError(t, err)
	u, err := NewUniform(symbols)
	require.NoError(t, err)

	// 100 = 3*26 + 22, then 3 = 0*26 + 3.
	d := newDecoder(t, []byte{100, 0, 0, 0, 0, 0, 0, 0})
	var got []rune
	for {
		r, err := Emit(d, u)
		if err != nil {
			assert.ErrorIs(t, err, ErrEntropyExhausted)
			break
		}
		got = append(got, r)
	}
	assert.Equal(t, "WD", string(got))

	_, err = NewUniform(nil)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestWeighted(t *testing.T) {
	w, err := NewWeighted([]rune("ab"), []uint32{1, 3})
	require.NoError(t, err)

	// 100 = 25*4 + 0 lands in 'a', whose weight 1 leaves the state at 25.
	// 25 = 6*4 + 1 lands in 'b' with phase 0, leaving 6*3.
	d := newDecoder(t, []byte{100, 0, 0, 0, 0, 0, 0, 0})
	r, err := Emit(d, w)
	require.NoError(t, err)
	assert.Equal(t, 'a', r)
	assert.EqualValues(t, 25, d.State())
	r, err = Emit(d, w)
	require.NoError(t, err)
	assert.Equal(t, 'b', r)
	assert.EqualValues(t, 18, d.State())

	_, err = NewWeighted([]rune("ab"), []uint32{1})
	assert.ErrorIs(t, err, ErrConfig)
	_, err = NewWeighted([]rune("ab"), []uint32{1, 0})
	assert.ErrorIs(t, err, ErrConfig)
}

func TestTwoStageNesting(t *testing.T) {
	inner, err := NewWeighted([]rune("ab"), []uint32{1, 3})
	require.NoError(t, err)
	x, err := NewUniform([]rune("x"))
	require.NoError(t, err)
	outer, err := NewTwoStage([]Emitter{inner, x}, []uint32{1, 1})
	require.NoError(t, err)

	digest := bytes.Repeat([]byte{0x5a, 0xc3}, 16)
	emit := func() string {
		d := newDecoder(t, digest)
		var out []rune
		for i := 0; i < 40; i++ {
			r, err := Emit(d, outer)
			require.NoError(t, err)
			out = append(out, r)
		}
		return string(out)
	}
	first := emit()
	assert.Equal(t, first, emit())
	for _, r := range first {
		assert.Contains(t, "abx", string(r))
	}

	_, err = NewTwoStage([]Emitter{x}, nil)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestConstrainedForced(t *testing.T) {
	digits, err := Digit.Symbols()
	require.NoError(t, err)
	required, err := NewUniform(digits)
	require.NoError(t, err)
	fallback, err := classSampler([]ClassWeight{{Class: Upper, Weight: 5}, {Class: Lower, Weight: 5}})
	require.NoError(t, err)

	// Two required within two slots leaves no choice.
	c, err := NewConstrained(1, 10, 2, 2, required, fallback)
	require.NoError(t, err)
	d := newDecoder(t, bytes.Repeat([]byte{0xff}, 20))
	for i := 0; i < 2; i++ {
		r, err := Emit(d, c)
		require.NoError(t, err)
		assert.True(t, Digit.Contains(r), "%q", r)
	}
	owed, slots := c.Remaining()
	assert.Equal(t, 0, owed)
	assert.Equal(t, 0, slots)

	_, err = Emit(d, c)
	assert.ErrorIs(t, err, ErrHorizonExceeded)
}

func TestConstrainedInvalid(t *testing.T) {
	x, err := NewUniform([]rune("x"))
	require.NoError(t, err)
	for _, args := range []struct {
		r, o     float64
		count, n int
	}{
		{r: 1, o: 1, count: 3, n: 2},
		{r: 0, o: 1, count: 1, n: 2},
		{r: 1, o: 1, count: -1, n: 2},
		{r: math.Inf(1), o: 1, count: 1, n: 2},
		{r: 1, o: math.NaN(), count: 1, n: 2},
	} {
		_, err := NewConstrained(args.r, args.o, args.count, args.n, x, x)
		assert.ErrorIs(t, err, ErrConfig, "%+v", args)
	}
}

// TestConstrainedLongHorizon checks that a single required symbol within a long horizon barely moves the first slot.
// Its required branch should be taken about once in 12 calls, like the unconstrained 1:11 weights.
func TestConstrainedLongHorizon(t *testing.T) {
	digits, err := Digit.Symbols()
	require.NoError(t, err)
	required, err := NewUniform(digits)
	require.NoError(t, err)
	fallback, err := classSampler([]ClassWeight{{Class: Upper, Weight: 5}, {Class: Lower, Weight: 5}, {Class: Symbol, Weight: 1}})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(4))
	for _, horizon := range []int{100, 280, 300} {
		var picked int
		for i := 0; i < 2000; i++ {
			c, err := NewConstrained(1, 11, 1, horizon, required, fallback)
			require.NoError(t, err)
			digest := make([]byte, 32)
			rng.Read(digest)
			r, err := Emit(newDecoder(t, digest), c)
			require.NoError(t, err)
			if Digit.Contains(r) {
				picked++
			}
		}
		assert.True(t, picked > 100 && picked < 240, "horizon %d: %d of 2000", horizon, picked)
	}
}

func TestSequence(t *testing.T) {
	a, err := NewUniform([]rune("a"))
	require.NoError(t, err)
	b, err := NewUniform([]rune("b"))
	require.NoError(t, err)
	c, err := NewUniform([]rune("c"))
	require.NoError(t, err)

	// Zero spans are skipped.
	s, err := NewSequence([]Emitter{a, b, c, a}, []int{2, 0, 3})
	require.NoError(t, err)
	d := newDecoder(t, bytes.Repeat([]byte{0xff}, 8))
	var got []rune
	for i := 0; i < 7; i++ {
		r, err := Emit(d, s)
		require.NoError(t, err)
		got = append(got, r)
	}
	assert.Equal(t, "aacccaa", string(got))

	_, err = NewSequence(nil, nil)
	assert.ErrorIs(t, err, ErrConfig)
	_, err = NewSequence([]Emitter{a, b}, []int{1, 1})
	assert.ErrorIs(t, err, ErrConfig)
	_, err = NewSequence([]Emitter{a, b}, []int{-1})
	assert.ErrorIs(t, err, ErrConfig)
}

// TestSequenceConstrained checks that a Sequence hands over from a Constrained head before its horizon is exceeded.
func TestSequenceConstrained(t *testing.T) {
	digits, err := Digit.Symbols()
	require.NoError(t, err)
	required, err := NewUniform(digits)
	require.NoError(t, err)
	x, err := NewUniform([]rune("x"))
	require.NoError(t, err)

	head, err := NewConstrained(1, 10, 2, 2, required, x)
	require.NoError(t, err)
	s, err := NewSequence([]Emitter{head, x}, []int{2})
	require.NoError(t, err)
	d := newDecoder(t, bytes.Repeat([]byte{0xff}, 20))
	var got []rune
	for i := 0; i < 4; i++ {
		r, err := Emit(d, s)
		require.NoError(t, err)
		got = append(got, r)
	}
	assert.True(t, Digit.Contains(got[0]) && Digit.Contains(got[1]), "%q", string(got))
	assert.Equal(t, "xx", string(got[2:]))
}
