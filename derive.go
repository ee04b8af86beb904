package sitepass

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/fumin/sitepass/ans"
)

// A Policy decides what Derive does when the digest runs out before the password is complete.
type Policy int

const (
	// Strict fails the derivation with ErrEntropyExhausted.
	Strict Policy = iota

	// Truncate returns the characters derived so far.
	// If the rule's requirement is not yet met by them, ErrRequirementUnmet is returned instead.
	Truncate
)

func (p Policy) String() string {
	switch p {
	case Strict:
		return "strict"
	case Truncate:
		return "truncate"
	}
	return "unknown"
}

// ParsePolicy returns the Policy named s.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "strict":
		return Strict, nil
	case "truncate":
		return Truncate, nil
	}
	return 0, errors.Wrapf(ErrConfig, "unknown policy %q", s)
}

// Derive decodes a password of rule.Length characters from digest.
// The result depends only on digest and rule.
func Derive(digest []byte, rule Rule, policy Policy) (string, error) {
	t, err := rule.tree()
	if err != nil {
		return "", err
	}
	d, err := ans.NewDecoder(digest)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.Grow(rule.Length)
	for i := 0; i < rule.Length; i++ {
		r, err := Emit(d, t.root)
		if err == nil {
			sb.WriteRune(r)
			continue
		}
		if errors.Cause(err) != ErrEntropyExhausted || policy != Truncate {
			return "", errors.Wrapf(err, "rule %q: after %d of %d characters", rule.Name, i, rule.Length)
		}
		if owed := t.owed(); owed > 0 {
			return "", errors.Wrapf(ErrRequirementUnmet, "rule %q: %d %s characters owed after %d of %d characters", rule.Name, owed, rule.Require.Class, i, rule.Length)
		}
		break
	}
	return sb.String(), nil
}
