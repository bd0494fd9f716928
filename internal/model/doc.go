// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model provides the in-memory representation of a parsed BNDL
// document. Its purpose is to give the compiler and the tools a
// strongly-typed, read-only view of the node graph written in a .bndl file.
//
// # Core Concepts
//
// The model is built around a few key structures:
//
//   - Graph: the whole node graph of one document. It owns the root scope and
//     every group scope, keyed by group name.
//
//   - Scope: either the root or a named group. A scope owns its nodes, the
//     connections and zone pairs between them, and the authored default values.
//     Nodes are numbered densely from 1 inside each scope.
//
//   - Node: a typed computation unit. A group-instance node carries the name
//     of the group it instantiates.
//
//   - ValueLayer: an ordered set of parameter assignments keyed by
//     (node, field). The Default layer lives in each scope; the UserOverride
//     layer is collected separately in Overrides.
//
//   - Document: the Graph together with the Overrides and the header version.
//
// A Document is assembled once through a Builder and is immutable afterwards.
// Accessors hand out copies, so consumers can never alter a parsed graph.
package model
