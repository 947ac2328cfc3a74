// Package chain implements a tamper-evident singly linked chain. Every node's
// digest binds its own value to the digest of its successor, so the head digest
// commits to the whole chain.
package chain

import (
	godigest "github.com/opencontainers/go-digest"

	"github.com/papercomputeco/seclist/pkg/digest"
)

// Node is a single link in a Chain.
type Node struct {
	value  string
	digest godigest.Digest

	// next is owned exclusively by this node. nil marks the terminal node.
	next *Node
}

// newNode creates a node linked to next, computing its digest from next's stored digest.
func newNode(d digest.Digester, value string, next *Node) *Node {
	n := &Node{
		value: value,
		next:  next,
	}
	n.rehash(d)
	return n
}

// Value returns the value stored in the node.
func (n *Node) Value() string {
	return n.value
}

// Digest returns the node's stored digest.
func (n *Node) Digest() godigest.Digest {
	return n.digest
}

// Next returns the successor, or nil for the terminal node.
func (n *Node) Next() *Node {
	return n.next
}

// HasNext reports whether the node has a successor.
func (n *Node) HasNext() bool {
	return n.next != nil
}

// rehash recomputes the digest from the value and the successor's stored digest.
// The successor must already be up to date.
func (n *Node) rehash(d digest.Digester) {
	if n.next == nil {
		n.digest = ComputeDigest(d, n.value, nil)
		return
	}

	n.digest = ComputeDigest(d, n.value, &n.next.digest)
}

// ComputeDigest derives a node digest. A nil successor means the node is terminal
// and the digest covers the value alone; otherwise the successor's canonical
// string form is appended to the value before digesting.
func ComputeDigest(d digest.Digester, value string, successor *godigest.Digest) godigest.Digest {
	if successor == nil {
		return d.Digest(value)
	}

	return d.Digest(value + successor.String())
}
