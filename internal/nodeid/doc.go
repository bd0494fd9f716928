// internal/nodeid/doc.go

/*
Package nodeid provides the identity of a node inside a BNDL document.

A node is identified by the scope that owns it and its LocalIndex within that
scope. The root scope has the empty name; every group is a scope of its own,
so `#1` in group A and `#1` in group B are different nodes.

The canonical string form is `Scope#Index`, e.g. `#3` for a root node and
`Mixer#2` for the second node of group Mixer.
*/
package nodeid
