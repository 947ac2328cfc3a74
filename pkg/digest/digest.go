// Package digest provides the digest functions a chain folds its values through.
package digest

import (
	// Register the hash implementations go-digest looks up by algorithm.
	_ "crypto/sha256"
	_ "crypto/sha512"
	"fmt"
	"strings"

	godigest "github.com/opencontainers/go-digest"
)

// Digester maps an input to a digest. Implementations must be deterministic:
// the same input always yields the same digest.
type Digester interface {
	Digest(input string) godigest.Digest
}

// DigesterFunc adapts an ordinary function to a Digester.
type DigesterFunc func(input string) godigest.Digest

// Digest calls f(input).
func (f DigesterFunc) Digest(input string) godigest.Digest {
	return f(input)
}

// Canonical digests with SHA-256.
var Canonical Digester = algorithmDigester{alg: godigest.Canonical}

type algorithmDigester struct {
	alg godigest.Algorithm
}

func (a algorithmDigester) Digest(input string) godigest.Digest {
	return a.alg.FromString(input)
}

// ErrUnavailable is returned when an algorithm is unknown or not linked into the binary.
type ErrUnavailable struct {
	Algorithm string
}

func (e ErrUnavailable) Error() string {
	return "digest algorithm unavailable: " + e.Algorithm
}

// New returns a Digester for alg.
func New(alg godigest.Algorithm) (Digester, error) {
	if !alg.Available() {
		return nil, ErrUnavailable{Algorithm: alg.String()}
	}

	return algorithmDigester{alg: alg}, nil
}

// FromName resolves a Digester by algorithm name ("sha256", "sha384", "sha512").
// An empty name selects Canonical.
func FromName(name string) (Digester, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Canonical, nil
	}

	d, err := New(godigest.Algorithm(name))
	if err != nil {
		return nil, fmt.Errorf("resolving digester %q: %w", name, err)
	}

	return d, nil
}
