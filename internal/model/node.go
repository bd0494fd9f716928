// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the node, socket and connection records of a scope.
package model

import (
	"fmt"

	"github.com/vk/bndl/internal/nodeid"
)

// Direction is the side of a node a socket sits on.
type Direction int

const (
	Input Direction = iota
	Output
)

// String implements fmt.Stringer.
func (d Direction) String() string {
	switch d {
	case Input:
		return "input"
	case Output:
		return "output"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Node is one declared node.
type Node struct {
	Addr     nodeid.Address
	TypeName string
	TypeID   string
	Variant  string
	Label    string
	// GroupRef names the group this node instantiates, if any.
	GroupRef string
	Line     int

	// Ports is the declared socket interface in declaration order.
	Ports []Port
	// Exposed lists sockets published on the interface of the enclosing
	// group even though nothing inside links to them.
	Exposed []Socket
	// Adjustments resize dynamic socket lists, e.g. index switch cases.
	Adjustments []Adjustment
	// SocketLabels rename individual sockets.
	SocketLabels []SocketLabel
}

// IsGroupInstance reports whether the node instantiates a group.
func (n Node) IsGroupInstance() bool {
	return n.GroupRef != ""
}

// Port returns the declared port with the given direction and display name.
func (n Node) Port(dir Direction, name string) (Port, bool) {
	for _, p := range n.Ports {
		if p.Direction == dir && p.Name == name {
			return p, true
		}
	}
	return Port{}, false
}

// Port is one declared socket of a node interface.
type Port struct {
	Direction Direction
	// Name is the display name links use, including any `[n]` ordinal.
	Name string
	// Socket is the host socket name when it differs from Name.
	Socket string
	Line   int
}

// Adjustment sets the length of a dynamic socket list.
type Adjustment struct {
	Field string
	Count int
	Line  int
}

// SocketLabel gives one socket a display label.
type SocketLabel struct {
	Socket Socket
	Label  string
	Line   int
}

// Socket addresses a connection point on a node.
type Socket struct {
	Node      nodeid.Address
	Direction Direction
	// Field is the socket's display name, including any `[n]` ordinal.
	Field string
}

// String renders the socket for diagnostics, e.g. `G#2.Geometry(output)`.
func (s Socket) String() string {
	return fmt.Sprintf("%s.%s(%s)", s.Node, s.Field, s.Direction)
}

// Connection is a directed link from an output socket to an input socket.
type Connection struct {
	From Socket
	To   Socket
	// FieldLink marks a dotted field link (`Connect⋯`).
	FieldLink bool
	Line      int
}

// ZonePair ties the input and output node of one simulation or repeat zone.
type ZonePair struct {
	Input  nodeid.Address
	Output nodeid.Address
	Line   int
}
