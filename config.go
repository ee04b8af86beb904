package sitepass

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/fumin/sitepass/digest"
)

// A Config holds custom rules and the rule of each site.
//
// An example config file:
//
//	digest: sha256
//	policy: strict
//	rules:
//	  - name: pin
//	    length: 6
//	    classes:
//	      - {class: digit, weight: 1}
//	sites:
//	  bank.example: pin
//	  example.com: digit12
type Config struct {
	// Digest names the digest function, see digest.Lookup. Empty means sha1.
	Digest string `yaml:"digest"`

	// Policy names the exhaustion Policy. Empty means truncate.
	Policy string `yaml:"policy"`

	// Rules are defined in addition to the built in rules, which they may override.
	Rules []Rule `yaml:"rules"`

	// Sites maps a site to the name of its rule. Sites not listed use the default rule.
	Sites map[string]string `yaml:"sites"`
}

// LoadConfig reads a Config from a YAML file.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	c, err := ParseConfig(b)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return c, nil
}

// ParseConfig parses and validates a YAML Config.
func ParseConfig(b []byte) (*Config, error) {
	c := &Config{}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, errors.Wrap(err, "")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate reports whether every rule is valid and every site refers to a defined rule.
func (c *Config) Validate() error {
	if c.Digest != "" {
		if _, err := digest.Lookup(c.Digest); err != nil {
			return err
		}
	}
	if c.Policy != "" {
		if _, err := ParsePolicy(c.Policy); err != nil {
			return err
		}
	}
	names := make(map[string]bool)
	for _, r := range c.Rules {
		if r.Name == "" {
			return errors.Wrap(ErrConfig, "rule without a name")
		}
		if names[r.Name] {
			return errors.Wrapf(ErrConfig, "rule %q defined twice", r.Name)
		}
		names[r.Name] = true
		if err := r.Validate(); err != nil {
			return err
		}
	}
	for site, name := range c.Sites {
		if _, err := c.Rule(name); err != nil {
			return errors.Wrapf(err, "site %q", site)
		}
	}
	return nil
}

// AllRules returns all rules by name, built in rules included.
func (c *Config) AllRules() map[string]Rule {
	rules := BuiltinRules()
	if c == nil {
		return rules
	}
	for _, r := range c.Rules {
		rules[r.Name] = r
	}
	return rules
}

// Rule returns the rule called name.
func (c *Config) Rule(name string) (Rule, error) {
	r, ok := c.AllRules()[name]
	if !ok {
		return Rule{}, errors.Wrapf(ErrUnknownRule, "%q", name)
	}
	return r, nil
}

// RuleFor returns the rule of site.
func (c *Config) RuleFor(site string) (Rule, error) {
	name := DefaultRule.Name
	if c != nil {
		if n, ok := c.Sites[site]; ok {
			name = n
		}
	}
	return c.Rule(name)
}

// DigestFunc returns the configured digest function.
func (c *Config) DigestFunc() (digest.Func, error) {
	name := "sha1"
	if c != nil && c.Digest != "" {
		name = c.Digest
	}
	return digest.Lookup(name)
}

// ExhaustionPolicy returns the configured Policy.
func (c *Config) ExhaustionPolicy() (Policy, error) {
	if c == nil || c.Policy == "" {
		return Truncate, nil
	}
	return ParsePolicy(c.Policy)
}
