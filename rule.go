package sitepass

import (
	"github.com/pkg/errors"
)

// A ClassWeight gives a character class its relative weight within a rule.
type ClassWeight struct {
	Class  Class  `yaml:"class"`
	Weight uint32 `yaml:"weight"`
}

// A Requirement asks for at least Min characters of Class among the first Within characters of a password.
type Requirement struct {
	Class  Class `yaml:"class"`
	Min    int   `yaml:"min"`
	Within int   `yaml:"within"`
}

// A Rule describes how passwords of a site are shaped.
// Each character is drawn from Classes in proportion to their weights, within a class uniformly.
// Rules are plain data and may be shared, a fresh emitter tree is built for every derivation.
type Rule struct {
	Name    string        `yaml:"name"`
	Length  int           `yaml:"length"`
	Classes []ClassWeight `yaml:"classes"`
	Require *Requirement  `yaml:"require,omitempty"`
}

var (
	// DefaultRule draws 30 characters weighting upper case, lower case, digits and symbols 5:5:1:1.
	DefaultRule = Rule{
		Name:   "default",
		Length: 30,
		Classes: []ClassWeight{
			{Class: Upper, Weight: 5},
			{Class: Lower, Weight: 5},
			{Class: Digit, Weight: 1},
			{Class: Symbol, Weight: 1},
		},
	}

	// DigitRule draws 12 characters like DefaultRule, with at least one digit.
	DigitRule = Rule{
		Name:   "digit12",
		Length: 12,
		Classes: []ClassWeight{
			{Class: Upper, Weight: 5},
			{Class: Lower, Weight: 5},
			{Class: Digit, Weight: 1},
			{Class: Symbol, Weight: 1},
		},
		Require: &Requirement{Class: Digit, Min: 1, Within: 12},
	}
)

// BuiltinRules returns the rules that are always available, by name.
func BuiltinRules() map[string]Rule {
	return map[string]Rule{
		DefaultRule.Name: DefaultRule,
		DigitRule.Name:   DigitRule,
	}
}

// Validate reports whether r can be built.
func (r Rule) Validate() error {
	if r.Length <= 0 {
		return errors.Wrapf(ErrConfig, "rule %q: length %d", r.Name, r.Length)
	}
	if len(r.Classes) == 0 {
		return errors.Wrapf(ErrConfig, "rule %q: no classes", r.Name)
	}
	seen := make(map[Class]bool)
	for _, cw := range r.Classes {
		if _, err := cw.Class.Symbols(); err != nil {
			return errors.Wrapf(err, "rule %q", r.Name)
		}
		if seen[cw.Class] {
			return errors.Wrapf(ErrConfig, "rule %q: class %q listed twice", r.Name, cw.Class)
		}
		seen[cw.Class] = true
		if cw.Weight == 0 {
			return errors.Wrapf(ErrConfig, "rule %q: zero weight for class %q", r.Name, cw.Class)
		}
	}

	req := r.Require
	if req == nil {
		return nil
	}
	if !seen[req.Class] {
		return errors.Wrapf(ErrConfig, "rule %q: required class %q not among classes", r.Name, req.Class)
	}
	if len(r.Classes) < 2 {
		return errors.Wrapf(ErrConfig, "rule %q: requirement needs at least one other class", r.Name)
	}
	if req.Min < 0 || req.Within < req.Min || req.Within > r.Length {
		return errors.Wrapf(ErrConfig, "rule %q: %d required within %d of %d", r.Name, req.Min, req.Within, r.Length)
	}
	return nil
}

// A tree is the emitter tree of one derivation.
// With a requirement, root is a Sequence whose constrained head serves the slots up to its horizon.
type tree struct {
	root Emitter
	head *Constrained
}

// owed returns the number of required characters not yet emitted.
func (t *tree) owed() int {
	if t.head == nil {
		return 0
	}
	owed, _ := t.head.Remaining()
	return owed
}

func (r Rule) tree() (*tree, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	all, err := classSampler(r.Classes)
	if err != nil {
		return nil, err
	}
	if r.Require == nil {
		return &tree{root: all}, nil
	}

	var others []ClassWeight
	var requiredWeight, optionalWeight float64
	for _, cw := range r.Classes {
		if cw.Class == r.Require.Class {
			requiredWeight = float64(cw.Weight)
			continue
		}
		others = append(others, cw)
		optionalWeight += float64(cw.Weight)
	}
	symbols, err := r.Require.Class.Symbols()
	if err != nil {
		return nil, err
	}
	required, err := NewUniform(symbols)
	if err != nil {
		return nil, err
	}
	fallback, err := classSampler(others)
	if err != nil {
		return nil, err
	}
	head, err := NewConstrained(requiredWeight, optionalWeight, r.Require.Min, r.Require.Within, required, fallback)
	if err != nil {
		return nil, err
	}
	root, err := NewSequence([]Emitter{head, all}, []int{r.Require.Within})
	if err != nil {
		return nil, err
	}
	return &tree{root: root, head: head}, nil
}

// classSampler returns a TwoStage emitter choosing among classes by weight, then uniformly within the class.
func classSampler(classes []ClassWeight) (*TwoStage, error) {
	children := make([]Emitter, 0, len(classes))
	weights := make([]uint32, 0, len(classes))
	for _, cw := range classes {
		symbols, err := cw.Class.Symbols()
		if err != nil {
			return nil, err
		}
		u, err := NewUniform(symbols)
		if err != nil {
			return nil, err
		}
		children = append(children, u)
		weights = append(weights, cw.Weight)
	}
	return NewTwoStage(children, weights)
}
