// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file models parameter assignments and the two value layers.
package model

import (
	"slices"

	"github.com/vk/bndl/internal/nodeid"
	"github.com/vk/bndl/internal/value"
)

// Layer distinguishes authored defaults from user edits.
type Layer int

const (
	LayerDefault Layer = iota
	LayerUser
)

// String implements fmt.Stringer.
func (l Layer) String() string {
	if l == LayerUser {
		return "user"
	}
	return "default"
}

// Assignment is one parameter value for a node field.
type Assignment struct {
	Node  nodeid.Address
	Field string
	Value value.Literal
	Layer Layer
	Line  int
}

type valueKey struct {
	node  nodeid.Address
	field string
}

// ValueLayer holds at most one assignment per (node, field), in the order
// in which each pair was first assigned.
type ValueLayer struct {
	layer   Layer
	entries []Assignment
	index   map[valueKey]int
}

func newValueLayer(layer Layer) *ValueLayer {
	return &ValueLayer{layer: layer, index: make(map[valueKey]int)}
}

// Layer returns which layer this is.
func (l *ValueLayer) Layer() Layer {
	return l.layer
}

// Len returns the number of distinct (node, field) pairs.
func (l *ValueLayer) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// Get returns the assignment for a node field.
func (l *ValueLayer) Get(node nodeid.Address, field string) (Assignment, bool) {
	if l == nil {
		return Assignment{}, false
	}
	i, ok := l.index[valueKey{node, field}]
	if !ok {
		return Assignment{}, false
	}
	return cloneAssignment(l.entries[i]), true
}

// Assignments returns every assignment in first-declaration order.
func (l *ValueLayer) Assignments() []Assignment {
	if l == nil {
		return nil
	}
	out := make([]Assignment, len(l.entries))
	for i, a := range l.entries {
		out[i] = cloneAssignment(a)
	}
	return out
}

// ForNode returns the assignments of one node in first-declaration order.
func (l *ValueLayer) ForNode(node nodeid.Address) []Assignment {
	if l == nil {
		return nil
	}
	var out []Assignment
	for _, a := range l.entries {
		if a.Node == node {
			out = append(out, cloneAssignment(a))
		}
	}
	return out
}

// set stores a, replacing the value of an earlier assignment to the same
// field while keeping its position and declaration line.
func (l *ValueLayer) set(a Assignment) {
	a.Layer = l.layer
	k := valueKey{a.Node, a.Field}
	if i, ok := l.index[k]; ok {
		l.entries[i].Value = a.Value
		return
	}
	l.index[k] = len(l.entries)
	l.entries = append(l.entries, a)
}

func cloneAssignment(a Assignment) Assignment {
	a.Value.Tuple = slices.Clone(a.Value.Tuple)
	return a
}

// Overrides is the UserOverride layer of a document, split per scope.
type Overrides struct {
	layers map[string]*ValueLayer
}

// Scope returns the overrides recorded in the named scope. The result is
// never nil.
func (o *Overrides) Scope(name string) *ValueLayer {
	if o != nil {
		if l, ok := o.layers[name]; ok {
			return l
		}
	}
	return newValueLayer(LayerUser)
}

// Len returns the total number of overridden (node, field) pairs.
func (o *Overrides) Len() int {
	if o == nil {
		return 0
	}
	n := 0
	for _, l := range o.layers {
		n += l.Len()
	}
	return n
}

func (o *Overrides) layer(scope string) *ValueLayer {
	l, ok := o.layers[scope]
	if !ok {
		l = newValueLayer(LayerUser)
		o.layers[scope] = l
	}
	return l
}
