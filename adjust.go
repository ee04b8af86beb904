package sitepass

import (
	"math/big"
)

// An Adjustmotron computes the branch weights for a choice between a required class and everything else,
// such that sampling once per slot places at least k required symbols in the next n slots.
//
// Without a requirement, each slot picks the required branch with probability Required/(Required+Optional).
// The weights returned by Weights are the total unconstrained probability mass of all n slot continuations that satisfy the requirement,
// split by the choice made in the current slot.
// Drawing from them slot by slot is therefore the same as drawing whole sequences from the unconstrained distribution and discarding those that fall short,
// except that nothing is ever discarded.
//
// Masses are computed exactly with big.Rat. Required and Optional must be finite and positive.
type Adjustmotron struct {
	Required float64
	Optional float64
}

// Unrestricted returns the weights for the current slot when nothing more is owed.
// These are Required:Optional scaled by (Required+Optional)^(n-1), the mass of all continuations, so that they combine consistently with Weights.
func (a Adjustmotron) Unrestricted(n int) (float64, float64) {
	wa, wb := a.unrestricted(n)
	return float(wa), float(wb)
}

// Weights returns the masses of the required and optional branches for the current slot,
// given that k required symbols are still owed within the n slots that remain, the current one included.
// The masses grow like (Required+Optional)^n and become +Inf for long horizons, use Odds to sample.
func (a Adjustmotron) Weights(k, n int) (float64, float64) {
	wa, wb := a.masses(k, n)
	return float(wa), float(wb)
}

// Odds returns the probabilities of the required and optional branches for the current slot.
// They are the masses of Weights divided by their sum, rounded once, so they stay finite for any horizon.
func (a Adjustmotron) Odds(k, n int) (float64, float64) {
	var wa, wb *big.Rat
	if k <= 0 {
		wa, wb = rat(a.Required), rat(a.Optional)
	} else {
		wa, wb = a.masses(k, n)
	}
	total := new(big.Rat).Add(wa, wb)
	return float(new(big.Rat).Quo(wa, total)), float(new(big.Rat).Quo(wb, total))
}

func (a Adjustmotron) unrestricted(n int) (*big.Rat, *big.Rat) {
	scale := pow(a.sum(), n-1)
	return mul(rat(a.Required), scale), mul(rat(a.Optional), scale)
}

func (a Adjustmotron) masses(k, n int) (*big.Rat, *big.Rat) {
	switch {
	case k <= 0:
		return a.unrestricted(n)
	case n <= k:
		// Every remaining slot must be required.
		return pow(rat(a.Required), n), new(big.Rat)
	}
	t := a.totals(k, n-1)
	return mul(rat(a.Required), t[k-1][n-1]), mul(rat(a.Optional), t[k][n-1])
}

// totals returns t such that t[j][m] is the mass of all m slot sequences containing at least j required symbols, for j <= k and j <= m <= n.
// Entries with m < j are impossible and left nil.
func (a Adjustmotron) totals(k, n int) [][]*big.Rat {
	r, o, sum := rat(a.Required), rat(a.Optional), a.sum()
	t := make([][]*big.Rat, k+1)
	t[0] = make([]*big.Rat, n+1)
	t[0][0] = big.NewRat(1, 1)
	for m := 1; m <= n; m++ {
		t[0][m] = mul(sum, t[0][m-1])
	}
	rpow := big.NewRat(1, 1)
	for j := 1; j <= k; j++ {
		rpow = mul(rpow, r)
		t[j] = make([]*big.Rat, n+1)
		if j > n {
			continue
		}
		t[j][j] = rpow
		for m := j + 1; m <= n; m++ {
			t[j][m] = new(big.Rat).Add(mul(r, t[j-1][m-1]), mul(o, t[j][m-1]))
		}
	}
	return t
}

func (a Adjustmotron) sum() *big.Rat {
	return new(big.Rat).Add(rat(a.Required), rat(a.Optional))
}

func rat(x float64) *big.Rat {
	return new(big.Rat).SetFloat64(x)
}

func mul(x, y *big.Rat) *big.Rat {
	return new(big.Rat).Mul(x, y)
}

// pow returns x^n for n >= 0.
func pow(x *big.Rat, n int) *big.Rat {
	p := big.NewRat(1, 1)
	for i := 0; i < n; i++ {
		p.Mul(p, x)
	}
	return p
}

// float returns the float64 nearest to x, or +Inf if x is too large.
func float(x *big.Rat) float64 {
	f, _ := x.Float64()
	return f
}
