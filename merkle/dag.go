// Package merkle implements a bounded, carry-propagating Merkle accumulator.
//
// Leaves are folded into a fixed array of slots indexed by level, the same
// way a binary counter carries on increment. TruncateRoot collapses whatever
// remains in the slots into a single root digest.
package merkle

import (
	"fmt"
	"math/bits"

	"github.com/frankonly/finite/crypto"
)

// maxWidth keeps the capacity representable in uint64
const maxWidth = 63

var (
	ErrOverflow     = fmt.Errorf("merkle dag overflow")
	ErrEmpty        = fmt.Errorf("truncate called on empty merkle dag")
	ErrInvalidWidth = fmt.Errorf("invalid merkle dag width")
)

// Kind tells a leaf from a merged node
type Kind int

const (
	Leaf Kind = iota
	Merged
)

// Node is an immutable vertex of the accumulator. Label is only for tracing.
type Node struct {
	Label  string
	Digest []byte
	Kind   Kind
}

// Observer receives every node the accumulator creates
type Observer interface {
	Leaf(n *Node)
	Merge(left, right, merged *Node)
}

// Option configures a Dag
type Option func(*Dag)

// WithObserver attaches an observer, typically a *Graph
func WithObserver(o Observer) Option {
	return func(d *Dag) {
		d.observer = o
	}
}

// Dag is the accumulator state: one optional node per level
type Dag struct {
	slots    []*Node
	count    uint64
	capacity uint64
	observer Observer
}

// New allocates a Dag holding at most 2^width-1 leaves
func New(width int, opts ...Option) (*Dag, error) {
	if width <= 0 || width > maxWidth {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWidth, width)
	}

	d := &Dag{
		slots:    make([]*Node, width),
		capacity: 1<<uint(width) - 1,
	}
	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// MinWidth returns the smallest width able to hold count leaves
func MinWidth(count uint64) int {
	if count == 0 {
		return 1
	}

	return bits.Len64(count)
}

// Len returns the number of leaves appended so far
func (d *Dag) Len() uint64 {
	return d.count
}

// Capacity returns the maximum number of leaves
func (d *Dag) Capacity() uint64 {
	return d.capacity
}

// Width returns the number of slots
func (d *Dag) Width() int {
	return len(d.slots)
}

// Append adds a leaf and carries merges upward until an empty slot absorbs it.
// After ErrOverflow the Dag must be discarded.
func (d *Dag) Append(digest []byte, label string) (uint64, error) {
	if digest == nil {
		return 0, crypto.ErrNilDigest
	}

	d.count++
	if d.count > d.capacity {
		return 0, fmt.Errorf("%w: capacity %d", ErrOverflow, d.capacity)
	}

	next := &Node{Label: label, Digest: digest, Kind: Leaf}
	if d.observer != nil {
		d.observer.Leaf(next)
	}

	for level, n := range d.slots {
		if n == nil {
			d.slots[level] = next
			return d.count, nil
		}

		d.slots[level] = nil
		next = d.merge(n, next)
	}

	// unreachable while count <= capacity
	return 0, fmt.Errorf("%w: carry out of level %d", ErrOverflow, len(d.slots))
}

// TruncateRoot folds every occupied slot, lowest level first, into the root
// and clears the slots. It is a one-shot finalize.
func (d *Dag) TruncateRoot() ([]byte, error) {
	var next *Node

	for level, n := range d.slots {
		if n == nil {
			continue
		}

		d.slots[level] = nil
		if next == nil {
			next = n
			continue
		}

		next = d.merge(n, next)
	}

	if next == nil {
		return nil, ErrEmpty
	}

	return next.Digest, nil
}

// merge welds the resident node (left) with the carried node (right)
func (d *Dag) merge(left, right *Node) *Node {
	merged := &Node{
		Label:  left.Label + "+" + right.Label,
		Digest: crypto.HashNodes(left.Digest, right.Digest),
		Kind:   Merged,
	}

	if d.observer != nil {
		d.observer.Merge(left, right, merged)
	}

	return merged
}
