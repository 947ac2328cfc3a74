package chain

import (
	"iter"

	godigest "github.com/opencontainers/go-digest"

	"github.com/papercomputeco/seclist/pkg/digest"
)

// Chain is a tamper-evident singly linked list. Index 0 is the head.
//
// A Chain is not safe for concurrent use; see Locked.
type Chain struct {
	digester digest.Digester
	head     *Node
	length   int
}

// Entry is a point-in-time copy of a node's position and contents.
type Entry struct {
	Index   int             `json:"index"`
	Value   string          `json:"value"`
	Digest  godigest.Digest `json:"digest"`
	HasNext bool            `json:"has_next"`
}

// New creates an empty chain that digests with d. A nil d selects digest.Canonical.
func New(d digest.Digester) *Chain {
	if d == nil {
		d = digest.Canonical
	}

	return &Chain{digester: d}
}

// Len returns the number of nodes in the chain.
func (c *Chain) Len() int {
	return c.length
}

// Head returns the first node, or nil if the chain is empty.
func (c *Chain) Head() *Node {
	return c.head
}

// HeadDigest returns the head node's digest, which commits to every node in
// the chain. It is empty for an empty chain.
func (c *Chain) HeadDigest() godigest.Digest {
	if c.head == nil {
		return ""
	}

	return c.head.digest
}

// Add prepends value to the chain. No existing digest depends on a
// predecessor, so nothing is recomputed.
func (c *Chain) Add(value string) {
	c.head = newNode(c.digester, value, c.head)
	c.length++
}

// Insert places value so that it becomes the node at index. Index Len()
// appends a new tail. Every node before index is rehashed, tail side first.
func (c *Chain) Insert(index int, value string) error {
	if index < 0 || index > c.length {
		return ErrIndexOutOfRange{Op: "insert", Index: index, Length: c.length}
	}

	if index == 0 {
		c.Add(value)
		return nil
	}

	path := c.collect(index - 1)
	pred := path[len(path)-1]
	pred.next = newNode(c.digester, value, pred.next)
	c.rehash(path)
	c.length++

	return nil
}

// Remove deletes the node at index, relinks its predecessor to its successor
// and rehashes every node before index, tail side first.
func (c *Chain) Remove(index int) error {
	if c.length == 0 {
		return ErrEmptyChain{Op: "remove", Index: index}
	}
	if index < 0 || index >= c.length {
		return ErrIndexOutOfRange{Op: "remove", Index: index, Length: c.length}
	}

	if index == 0 {
		target := c.head
		c.head = target.next
		target.next = nil
		c.length--
		return nil
	}

	path := c.collect(index - 1)
	pred := path[len(path)-1]
	target := pred.next
	pred.next = target.next
	target.next = nil
	c.rehash(path)
	c.length--

	return nil
}

// Get returns the node at index.
func (c *Chain) Get(index int) (*Node, error) {
	if c.length == 0 {
		return nil, ErrEmptyChain{Op: "get", Index: index}
	}
	if index < 0 || index >= c.length {
		return nil, ErrIndexOutOfRange{Op: "get", Index: index, Length: c.length}
	}

	n := c.head
	for i := 0; i < index; i++ {
		if n.next == nil {
			return nil, ErrIndexOutOfRange{Op: "get", Index: index, Length: i + 1}
		}
		n = n.next
	}

	return n, nil
}

// All iterates over the nodes from head to tail.
func (c *Chain) All() iter.Seq2[int, *Node] {
	return func(yield func(int, *Node) bool) {
		i := 0
		for n := c.head; n != nil; n = n.next {
			if !yield(i, n) {
				return
			}
			i++
		}
	}
}

// Values returns the node values from head to tail.
func (c *Chain) Values() []string {
	values := make([]string, 0, c.length)
	for _, n := range c.All() {
		values = append(values, n.value)
	}
	return values
}

// Entries returns a snapshot of every node from head to tail.
func (c *Chain) Entries() []Entry {
	entries := make([]Entry, 0, c.length)
	for i, n := range c.All() {
		entries = append(entries, Entry{
			Index:   i,
			Value:   n.value,
			Digest:  n.digest,
			HasNext: n.next != nil,
		})
	}
	return entries
}

// collect returns the nodes at positions 0 through last, head first.
// Callers have already checked that last < Len().
func (c *Chain) collect(last int) []*Node {
	path := make([]*Node, 0, last+1)
	for n := c.head; n != nil && len(path) <= last; n = n.next {
		path = append(path, n)
	}
	return path
}

// rehash recomputes digests along path in reverse, so each node is rehashed
// only after its successor is current.
func (c *Chain) rehash(path []*Node) {
	for i := len(path) - 1; i >= 0; i-- {
		path[i].rehash(c.digester)
	}
}
