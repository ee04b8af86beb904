// Package sitepass derives site specific passwords from a hash digest.
// The digest is treated as the encoded form of a password under an Asymmetric Numeral System and decoded once, front to back,
// through a tree of emitters that gives each character class its own weight.
// A rule may require a minimum number of characters of one class within a prefix of the password.
// Such requirements are met without rejection sampling and without changing the relative odds of the remaining choices, see Adjustmotron.
//
// Below is an example of deriving the password of a site:
//    go run ./derive example.com
//
// The same site, secret and rule always yield the same password.
package sitepass

import (
	"github.com/pkg/errors"

	"github.com/fumin/sitepass/ans"
)

var (
	// ErrConfig is returned for rules and emitters that cannot be built.
	ErrConfig = ans.ErrConfig

	// ErrInvalidDigestLength is returned for digests shorter than 8 bytes.
	ErrInvalidDigestLength = ans.ErrInvalidDigestLength

	// ErrEntropyExhausted is returned when the digest runs out before the password is complete.
	ErrEntropyExhausted = ans.ErrEntropyExhausted

	// ErrHorizonExceeded is returned when a Constrained emitter is called more times than its horizon.
	ErrHorizonExceeded = errors.New("constrained emitter called past its horizon")

	// ErrRequirementUnmet is returned when a truncated password would not contain the characters its rule requires.
	ErrRequirementUnmet = errors.New("required characters missing from truncated password")

	// ErrUnknownRule is returned when a rule name is not defined.
	ErrUnknownRule = errors.New("unknown rule")
)
