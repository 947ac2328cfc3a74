package chain

import (
	"slices"

	godigest "github.com/opencontainers/go-digest"
)

// Mismatch describes a node whose stored digest disagrees with the digest
// recomputed from its value and its recomputed successor.
type Mismatch struct {
	Index    int             `json:"index"`
	Value    string          `json:"value"`
	Stored   godigest.Digest `json:"stored"`
	Expected godigest.Digest `json:"expected"`
}

// IsValid reports whether every stored digest matches its recomputation.
// An empty chain is valid.
func (c *Chain) IsValid() bool {
	return len(c.verify(true)) == 0
}

// Verify checks every node and returns all mismatches in ascending index
// order. A nil result means the chain is valid.
//
// Corrupting a node's value also invalidates every node before it, since their
// expected digests are derived from the recomputed, not stored, successor.
// Corrupting only a stored digest is reported at that node alone.
func (c *Chain) Verify() []Mismatch {
	return c.verify(false)
}

// Tampered returns the index of the tail-most mismatch: the deepest node whose
// own contents disagree with its stored digest.
func (c *Chain) Tampered() (int, bool) {
	mismatches := c.verify(true)
	if len(mismatches) == 0 {
		return -1, false
	}
	return mismatches[0].Index, true
}

// verify walks tail to head. Stored successor digests are never trusted; each
// expected digest is folded from the successor's recomputed one.
func (c *Chain) verify(stopAtFirst bool) []Mismatch {
	nodes := make([]*Node, 0, c.length)
	for _, n := range c.All() {
		nodes = append(nodes, n)
	}

	var (
		mismatches []Mismatch
		successor  *godigest.Digest
	)
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		expected := ComputeDigest(c.digester, n.value, successor)
		if expected != n.digest {
			mismatches = append(mismatches, Mismatch{
				Index:    i,
				Value:    n.value,
				Stored:   n.digest,
				Expected: expected,
			})
			if stopAtFirst {
				return mismatches
			}
		}
		successor = &expected
	}

	slices.Reverse(mismatches)
	return mismatches
}
