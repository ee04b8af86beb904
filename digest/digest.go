// Package digest computes the byte strings passwords are decoded from.
// Every function hashes a site name together with a user secret, so that each site gets an unrelated digest.
package digest

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"hash"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/scrypt"
)

// A Func returns the digest of secret for site.
type Func func(site, secret string) ([]byte, error)

// ErrUnknown is returned by Lookup for an unknown digest name.
var ErrUnknown = errors.New("unknown digest")

// sum hashes site, secret and a trailing newline.
// The newline keeps digests identical to those of the line oriented tool this format comes from.
func sum(h hash.Hash, site, secret string) []byte {
	h.Write([]byte(site))
	h.Write([]byte(secret))
	h.Write([]byte("\n"))
	return h.Sum(nil)
}

// SHA1 returns the 20 byte SHA-1 digest of site, secret and a newline.
func SHA1(site, secret string) ([]byte, error) {
	return sum(sha1.New(), site, secret), nil
}

// SHA256 returns the 32 byte SHA-256 digest of site, secret and a newline.
func SHA256(site, secret string) ([]byte, error) {
	return sum(sha256.New(), site, secret), nil
}

// SHA512 returns the 64 byte SHA-512 digest of site, secret and a newline.
func SHA512(site, secret string) ([]byte, error) {
	return sum(sha512.New(), site, secret), nil
}

// Scrypt holds scrypt parameters.
// The secret followed by a newline is the passphrase and the site is the salt.
type Scrypt struct {
	N      int
	R      int
	P      int
	KeyLen int
}

// DefaultScrypt are the parameters used by Lookup("scrypt").
var DefaultScrypt = Scrypt{N: 32768, R: 8, P: 1, KeyLen: 32}

// Sum returns the scrypt key of secret salted with site.
func (s Scrypt) Sum(site, secret string) ([]byte, error) {
	key, err := scrypt.Key([]byte(secret+"\n"), []byte(site), s.N, s.R, s.P, s.KeyLen)
	if err != nil {
		return nil, errors.Wrap(err, "scrypt")
	}
	return key, nil
}

var funcs = map[string]Func{
	"sha1":   SHA1,
	"sha256": SHA256,
	"sha512": SHA512,
	"scrypt": DefaultScrypt.Sum,
}

// Lookup returns the digest Func called name.
func Lookup(name string) (Func, error) {
	f, ok := funcs[strings.ToLower(name)]
	if !ok {
		return nil, errors.Wrapf(ErrUnknown, "%q, known digests are %s", name, strings.Join(Names(), ", "))
	}
	return f, nil
}

// Names returns the names accepted by Lookup, sorted.
func Names() []string {
	names := make([]string, 0, len(funcs))
	for name := range funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Short returns the first 12 characters of the standard base64 encoding of d, for display.
func Short(d []byte) string {
	s := base64.StdEncoding.EncodeToString(d)
	if len(s) > 12 {
		s = s[:12]
	}
	return s
}
