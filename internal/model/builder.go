// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file contains Builder, the only way to assemble a Document. It enforces
// the structural rules of the format: dense per-scope numbering, declared
// endpoints, well-nested groups and unique group names.
package model

import (
	"errors"
	"fmt"

	"github.com/vk/bndl/internal/nodeid"
	"github.com/vk/bndl/internal/value"
)

var (
	ErrDuplicateNode     = errors.New("duplicate node index")
	ErrNonDenseIndex     = errors.New("node index out of sequence")
	ErrUndeclaredNode    = errors.New("undeclared node")
	ErrTypeMismatch      = errors.New("type-name does not match declaration")
	ErrDirection         = errors.New("wrong socket direction")
	ErrDuplicateGroup    = errors.New("duplicate group name")
	ErrGroupMismatch     = errors.New("group end does not match open group")
	ErrNoOpenGroup       = errors.New("no open group")
	ErrUnterminatedGroup = errors.New("unterminated group")
	ErrNotAZone          = errors.New("zone pairs a node with itself")
	ErrDuplicatePort     = errors.New("duplicate port")
	ErrNegativeCount     = errors.New("negative socket count")
)

// Builder assembles a Document statement by statement. It tracks the stack
// of open groups; all node references resolve in the innermost one.
type Builder struct {
	graph     *Graph
	overrides *Overrides
	stack     []*Scope
	done      bool
}

// NewBuilder returns a Builder positioned in the root scope.
func NewBuilder() *Builder {
	g := newGraph()
	return &Builder{
		graph:     g,
		overrides: &Overrides{layers: make(map[string]*ValueLayer)},
		stack:     []*Scope{g.Root()},
	}
}

func (b *Builder) current() *Scope {
	return b.stack[len(b.stack)-1]
}

// CurrentScope returns the name of the innermost open scope.
func (b *Builder) CurrentScope() string {
	return b.current().name
}

// OpenGroup returns the innermost open group and the line it began on.
// ok is false when only the root is open.
func (b *Builder) OpenGroup() (name string, line int, ok bool) {
	if len(b.stack) == 1 {
		return "", 0, false
	}
	s := b.current()
	return s.name, s.line, true
}

// NextIndex returns the LocalIndex the next node of the current scope must use.
func (b *Builder) NextIndex() int {
	return len(b.current().nodes) + 1
}

// BeginGroup opens a new group nested in the current scope.
func (b *Builder) BeginGroup(name string, line int) error {
	if name == "" {
		return fmt.Errorf("group name must not be empty")
	}
	if _, exists := b.graph.scopes[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateGroup, name)
	}
	parent := b.current()
	s := newScope(name, parent.name, line)
	b.graph.scopes[name] = s
	b.graph.groups = append(b.graph.groups, name)
	parent.children = append(parent.children, name)
	b.stack = append(b.stack, s)
	return nil
}

// EndGroup closes the innermost open group, which must be called name.
func (b *Builder) EndGroup(name string) error {
	open, _, ok := b.OpenGroup()
	if !ok {
		return fmt.Errorf("%w: END for %q", ErrNoOpenGroup, name)
	}
	if open != name {
		return fmt.Errorf("%w: %q is open, END names %q", ErrGroupMismatch, open, name)
	}
	b.stack = b.stack[:len(b.stack)-1]
	return nil
}

// AddNode declares a node in the current scope. n.Addr.Index must be the
// next dense index; n.Addr.Scope is filled in by the builder.
func (b *Builder) AddNode(n Node) (nodeid.Address, error) {
	s := b.current()
	idx := n.Addr.Index
	if idx >= 1 && idx <= len(s.nodes) {
		return nodeid.Address{}, fmt.Errorf("%w: #%d already declared", ErrDuplicateNode, idx)
	}
	if next := len(s.nodes) + 1; idx != next {
		return nodeid.Address{}, fmt.Errorf("%w: got #%d, want #%d", ErrNonDenseIndex, idx, next)
	}
	n.Addr = nodeid.New(s.name, idx)
	s.nodes = append(s.nodes, n)
	return n.Addr, nil
}

// Resolve looks up a node of the current scope. A non-empty typeName must
// equal the declared type-name.
func (b *Builder) Resolve(index int, typeName string) (Node, error) {
	s := b.current()
	n, ok := s.Node(index)
	if !ok {
		return Node{}, fmt.Errorf("%w: #%d in %s", ErrUndeclaredNode, index, scopeLabel(s.name))
	}
	if typeName != "" && typeName != n.TypeName {
		return Node{}, fmt.Errorf("%w: #%d is %q, not %q", ErrTypeMismatch, index, n.TypeName, typeName)
	}
	return n, nil
}

// Rename replaces the friendly label of a declared node.
func (b *Builder) Rename(addr nodeid.Address, label string) error {
	n, err := b.node(addr)
	if err != nil {
		return err
	}
	n.Label = label
	return nil
}

// node returns the stored node at addr, which must belong to the current scope.
func (b *Builder) node(addr nodeid.Address) (*Node, error) {
	s := b.current()
	if addr.Scope != s.name || addr.Index < 1 || addr.Index > len(s.nodes) {
		return nil, fmt.Errorf("%w: %s", ErrUndeclaredNode, addr)
	}
	return &s.nodes[addr.Index-1], nil
}

// DeclarePorts appends interface ports to a node. A display name is declared
// at most once per direction.
func (b *Builder) DeclarePorts(addr nodeid.Address, ports []Port) error {
	n, err := b.node(addr)
	if err != nil {
		return err
	}
	seen := make(map[Port]bool, len(ports))
	for _, p := range n.Ports {
		seen[Port{Direction: p.Direction, Name: p.Name}] = true
	}
	for _, p := range ports {
		if p.Name == "" {
			return fmt.Errorf("empty port name on %s", addr)
		}
		k := Port{Direction: p.Direction, Name: p.Name}
		if seen[k] {
			return fmt.Errorf("%w: %s %s %q", ErrDuplicatePort, addr, p.Direction, p.Name)
		}
		seen[k] = true
	}
	n.Ports = append(n.Ports, ports...)
	return nil
}

// Expose publishes a socket on the interface of the enclosing group.
// Exposing the same socket again has no effect.
func (b *Builder) Expose(sock Socket) error {
	n, err := b.node(sock.Node)
	if err != nil {
		return err
	}
	for _, e := range n.Exposed {
		if e.Direction == sock.Direction && e.Field == sock.Field {
			return nil
		}
	}
	n.Exposed = append(n.Exposed, sock)
	return nil
}

// Adjust records a dynamic socket count. A later adjustment of the same
// field replaces the count and keeps the first line.
func (b *Builder) Adjust(addr nodeid.Address, a Adjustment) error {
	n, err := b.node(addr)
	if err != nil {
		return err
	}
	if a.Field == "" {
		return fmt.Errorf("empty adjustment field for %s", addr)
	}
	if a.Count < 0 {
		return fmt.Errorf("%w: %s %q to %d", ErrNegativeCount, addr, a.Field, a.Count)
	}
	for i := range n.Adjustments {
		if n.Adjustments[i].Field == a.Field {
			n.Adjustments[i].Count = a.Count
			return nil
		}
	}
	n.Adjustments = append(n.Adjustments, a)
	return nil
}

// RenameSocket labels one socket of a node. A later rename of the same
// socket replaces the label.
func (b *Builder) RenameSocket(l SocketLabel) error {
	n, err := b.node(l.Socket.Node)
	if err != nil {
		return err
	}
	for i := range n.SocketLabels {
		s := n.SocketLabels[i].Socket
		if s.Direction == l.Socket.Direction && s.Field == l.Socket.Field {
			n.SocketLabels[i].Label = l.Label
			return nil
		}
	}
	n.SocketLabels = append(n.SocketLabels, l)
	return nil
}

// Connect records a link. Both endpoints must belong to the current scope;
// the source must be an output and the sink an input.
func (b *Builder) Connect(c Connection) error {
	s := b.current()
	for _, sock := range []Socket{c.From, c.To} {
		if sock.Node.Scope != s.name {
			return fmt.Errorf("%w: %s", ErrUndeclaredNode, sock.Node)
		}
		if _, ok := s.Node(sock.Node.Index); !ok {
			return fmt.Errorf("%w: %s", ErrUndeclaredNode, sock.Node)
		}
	}
	if c.From.Direction != Output {
		return fmt.Errorf("%w: link source %s is an input", ErrDirection, c.From)
	}
	if c.To.Direction != Input {
		return fmt.Errorf("%w: link sink %s is an output", ErrDirection, c.To)
	}
	s.conns = append(s.conns, c)
	return nil
}

// PairZone records a zone pair in the current scope.
func (b *Builder) PairZone(z ZonePair) error {
	s := b.current()
	for _, addr := range []nodeid.Address{z.Input, z.Output} {
		if addr.Scope != s.name {
			return fmt.Errorf("%w: %s", ErrUndeclaredNode, addr)
		}
		if _, ok := s.Node(addr.Index); !ok {
			return fmt.Errorf("%w: %s", ErrUndeclaredNode, addr)
		}
	}
	if z.Input == z.Output {
		return fmt.Errorf("%w: %s", ErrNotAZone, z.Input)
	}
	s.zones = append(s.zones, z)
	return nil
}

// Assign records a parameter value in the given layer of the current scope.
func (b *Builder) Assign(addr nodeid.Address, field string, v value.Literal, layer Layer, line int) error {
	s := b.current()
	if addr.Scope != s.name {
		return fmt.Errorf("%w: %s", ErrUndeclaredNode, addr)
	}
	if _, ok := s.Node(addr.Index); !ok {
		return fmt.Errorf("%w: %s", ErrUndeclaredNode, addr)
	}
	if field == "" {
		return fmt.Errorf("empty field name for %s", addr)
	}
	a := Assignment{Node: addr, Field: field, Value: v, Line: line}
	if layer == LayerUser {
		b.overrides.layer(s.name).set(a)
		return nil
	}
	s.defaults.set(a)
	return nil
}

// Document finishes assembly. Every group must be closed. The Builder must
// not be used afterwards.
func (b *Builder) Document(version string) (*Document, error) {
	if name, line, ok := b.OpenGroup(); ok {
		return nil, fmt.Errorf("%w: %q opened on line %d", ErrUnterminatedGroup, name, line)
	}
	if b.done {
		return nil, fmt.Errorf("builder already finished")
	}
	b.done = true
	return &Document{Version: version, Graph: b.graph, Overrides: b.overrides}, nil
}

func scopeLabel(name string) string {
	if name == nodeid.RootScope {
		return "top level"
	}
	return fmt.Sprintf("group %q", name)
}
