// Package pflow describes the finite-state models (Petri nets) whose
// structure is digested into a schema hash.
package pflow

import (
	"fmt"
	"strconv"
)

var (
	ErrFrozen      = fmt.Errorf("model is frozen")
	ErrDuplicate   = fmt.Errorf("duplicate label")
	ErrInvalidArc  = fmt.Errorf("invalid arc")
	ErrUnknownRole = fmt.Errorf("unknown role")
)

// Node is anything an arc may connect
type Node interface {
	Label() string
}

// Role grants permission to fire transitions
type Role struct {
	label string
}

func (r *Role) Label() string { return r.label }

// Place holds tokens
type Place struct {
	label   string
	Initial int64
}

func (p *Place) Label() string { return p.label }

// Transition moves tokens between places
type Transition struct {
	label string
	Role  *Role
}

func (t *Transition) Label() string { return t.label }

// Edge is a weighted arc between a place and a transition
type Edge struct {
	Source Node
	Target Node
	Weight int64
}

// Label returns the weight label
func (e *Edge) Label() string {
	return strconv.FormatInt(e.Weight, 10)
}

// Net keeps every element in insertion order
type Net struct {
	Schema      string
	Roles       []*Role
	Places      []*Place
	Transitions []*Transition
	Edges       []*Edge

	labels map[string]Node
	frozen bool
}

// New returns an empty, mutable net
func New(schema string) *Net {
	return &Net{Schema: schema, labels: make(map[string]Node)}
}

// Role returns the role with label, declaring it when missing
func (n *Net) Role(label string) (*Role, error) {
	for _, role := range n.Roles {
		if role.label == label {
			return role, nil
		}
	}
	if n.frozen {
		return nil, ErrFrozen
	}

	role := &Role{label: label}
	n.Roles = append(n.Roles, role)
	return role, nil
}

// Place declares a place
func (n *Net) Place(label string, initial int64) (*Place, error) {
	if err := n.claim(label); err != nil {
		return nil, err
	}

	place := &Place{label: label, Initial: initial}
	n.labels[label] = place
	n.Places = append(n.Places, place)
	return place, nil
}

// Transition declares a transition guarded by role
func (n *Net) Transition(label string, role *Role) (*Transition, error) {
	if role == nil {
		return nil, fmt.Errorf("%w: transition %s", ErrUnknownRole, label)
	}
	if err := n.claim(label); err != nil {
		return nil, err
	}

	txn := &Transition{label: label, Role: role}
	n.labels[label] = txn
	n.Transitions = append(n.Transitions, txn)
	return txn, nil
}

// Arc connects a place to a transition or a transition to a place
func (n *Net) Arc(source, target Node, weight int64) (*Edge, error) {
	if n.frozen {
		return nil, ErrFrozen
	}

	_, fromPlace := source.(*Place)
	_, fromTxn := source.(*Transition)
	_, toPlace := target.(*Place)
	_, toTxn := target.(*Transition)
	if !(fromPlace && toTxn) && !(fromTxn && toPlace) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidArc, source.Label(), target.Label())
	}
	if weight <= 0 {
		return nil, fmt.Errorf("%w: weight %d", ErrInvalidArc, weight)
	}

	edge := &Edge{Source: source, Target: target, Weight: weight}
	n.Edges = append(n.Edges, edge)
	return edge, nil
}

// Lookup finds a place or transition by label
func (n *Net) Lookup(label string) (Node, bool) {
	node, ok := n.labels[label]
	return node, ok
}

// Freeze makes the net read-only
func (n *Net) Freeze() {
	n.frozen = true
}

// Frozen reports whether the net is read-only
func (n *Net) Frozen() bool {
	return n.frozen
}

func (n *Net) claim(label string) error {
	if n.frozen {
		return ErrFrozen
	}
	if n.labels == nil {
		n.labels = make(map[string]Node)
	}
	if _, ok := n.labels[label]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, label)
	}

	return nil
}
