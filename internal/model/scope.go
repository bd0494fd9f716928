// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines Scope and Graph, the read-only containers of a document.
package model

import (
	"slices"

	"github.com/vk/bndl/internal/nodeid"
)

// Scope is the root of a document or one named group.
type Scope struct {
	name     string
	parent   string
	line     int
	nodes    []Node
	conns    []Connection
	zones    []ZonePair
	defaults *ValueLayer
	children []string
}

func newScope(name, parent string, line int) *Scope {
	return &Scope{
		name:     name,
		parent:   parent,
		line:     line,
		defaults: newValueLayer(LayerDefault),
	}
}

// Name returns the group name, or nodeid.RootScope for the root.
func (s *Scope) Name() string { return s.name }

// IsRoot reports whether s is the top-level scope.
func (s *Scope) IsRoot() bool { return s.name == nodeid.RootScope }

// Parent returns the name of the scope that declares this group.
// It is meaningless for the root.
func (s *Scope) Parent() string { return s.parent }

// Line returns the line of the BEGIN statement, or 0 for the root.
func (s *Scope) Line() int { return s.line }

// Nodes returns the nodes in ascending LocalIndex order.
func (s *Scope) Nodes() []Node { return slices.Clone(s.nodes) }

// Node returns the node with the given LocalIndex.
func (s *Scope) Node(index int) (Node, bool) {
	if index < 1 || index > len(s.nodes) {
		return Node{}, false
	}
	return s.nodes[index-1], true
}

// Connections returns the links in declaration order.
func (s *Scope) Connections() []Connection { return slices.Clone(s.conns) }

// Zones returns the zone pairs in declaration order.
func (s *Scope) Zones() []ZonePair { return slices.Clone(s.zones) }

// Defaults returns the authored Default layer of this scope.
func (s *Scope) Defaults() *ValueLayer { return s.defaults }

// Children returns the names of groups declared directly in this scope.
func (s *Scope) Children() []string { return slices.Clone(s.children) }

// Graph is the complete node graph of a document.
type Graph struct {
	scopes map[string]*Scope
	// groups lists group names in declaration order.
	groups []string
}

func newGraph() *Graph {
	root := newScope(nodeid.RootScope, nodeid.RootScope, 0)
	return &Graph{scopes: map[string]*Scope{root.name: root}}
}

// Root returns the top-level scope.
func (g *Graph) Root() *Scope {
	return g.scopes[nodeid.RootScope]
}

// Scope returns a scope by name.
func (g *Graph) Scope(name string) (*Scope, bool) {
	s, ok := g.scopes[name]
	return s, ok
}

// Groups returns every group scope in declaration order.
func (g *Graph) Groups() []*Scope {
	out := make([]*Scope, len(g.groups))
	for i, name := range g.groups {
		out[i] = g.scopes[name]
	}
	return out
}

// Node resolves a node address.
func (g *Graph) Node(addr nodeid.Address) (Node, bool) {
	s, ok := g.scopes[addr.Scope]
	if !ok {
		return Node{}, false
	}
	return s.Node(addr.Index)
}

// NodeCount returns the number of nodes across all scopes.
func (g *Graph) NodeCount() int {
	n := 0
	for _, s := range g.scopes {
		n += len(s.nodes)
	}
	return n
}

// Visible reports whether group can be referenced from scope from: the
// group must be declared in from or in one of its ancestors.
func (g *Graph) Visible(from, group string) bool {
	target, ok := g.scopes[group]
	if !ok || target.IsRoot() {
		return false
	}
	for cur := from; ; {
		if cur == target.parent {
			return true
		}
		s, ok := g.scopes[cur]
		if !ok || s.IsRoot() {
			return false
		}
		cur = s.parent
	}
}

// Document is the result of parsing one BNDL file.
type Document struct {
	Version   string
	Graph     *Graph
	Overrides *Overrides
}
