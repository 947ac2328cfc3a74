package chain

import (
	"sync"

	godigest "github.com/opencontainers/go-digest"

	"github.com/papercomputeco/seclist/pkg/digest"
)

// Locked guards a whole Chain with a single lock. Mutations rehash an
// unbounded prefix of nodes, so finer-grained locking cannot keep readers
// from observing a half-updated chain.
type Locked struct {
	mu    sync.RWMutex
	chain *Chain
}

// NewLocked creates an empty, lock-guarded chain.
func NewLocked(d digest.Digester) *Locked {
	return &Locked{chain: New(d)}
}

func (l *Locked) Add(value string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.chain.Add(value)
}

func (l *Locked) Insert(index int, value string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.chain.Insert(index, value)
}

func (l *Locked) Remove(index int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.chain.Remove(index)
}

// Get returns a copy of the node at index.
func (l *Locked) Get(index int) (Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n, err := l.chain.Get(index)
	if err != nil {
		return Entry{}, err
	}

	return Entry{
		Index:   index,
		Value:   n.value,
		Digest:  n.digest,
		HasNext: n.next != nil,
	}, nil
}

func (l *Locked) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.chain.Len()
}

func (l *Locked) HeadDigest() godigest.Digest {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.chain.HeadDigest()
}

func (l *Locked) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.chain.Entries()
}

func (l *Locked) IsValid() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.chain.IsValid()
}

func (l *Locked) Verify() []Mismatch {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.chain.Verify()
}

// State returns the length and head digest under one lock.
func (l *Locked) State() (int, godigest.Digest) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.chain.Len(), l.chain.HeadDigest()
}

// Snapshot returns the entries, head digest and mismatches under one lock,
// so the three always describe the same chain state.
func (l *Locked) Snapshot() ([]Entry, godigest.Digest, []Mismatch) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.chain.Entries(), l.chain.HeadDigest(), l.chain.Verify()
}
