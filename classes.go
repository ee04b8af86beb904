package sitepass

import (
	"github.com/pkg/errors"
)

// A Class names one of the fixed character sets a rule draws from.
type Class string

const (
	Upper  Class = "upper"
	Lower  Class = "lower"
	Digit  Class = "digit"
	Symbol Class = "symbol"
)

var classSymbols = map[Class]string{
	Upper:  "ABCDEFGHIJKLMNOPQRSTUVWXYZ",
	Lower:  "abcdefghijklmnopqrstuvwxyz",
	Digit:  "0123456789",
	Symbol: "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", // the 32 ASCII punctuation characters
}

// Symbols returns the characters of c, in ASCII order.
func (c Class) Symbols() ([]rune, error) {
	s, ok := classSymbols[c]
	if !ok {
		return nil, errors.Wrapf(ErrConfig, "unknown class %q", c)
	}
	return []rune(s), nil
}

// Contains reports whether r belongs to c.
func (c Class) Contains(r rune) bool {
	for _, s := range classSymbols[c] {
		if s == r {
			return true
		}
	}
	return false
}
