// internal/nodeid/types.go
package nodeid

// RootScope is the name of the top-level scope.
const RootScope = ""

// Address is the structured identity of a node: its owning scope and its
// LocalIndex within that scope. Indices start at 1.
type Address struct {
	Scope string
	Index int   
}

// New creates an Address for the given scope and index.
func New(scope string, index int) Address {
	return Address{Scope: scope, Index: index}
}

// Root creates an Address in the top-level scope.
func Root(index int) Address {
	return Address{Scope: RootScope, Index: index}
}

// IsRoot reports whether the address belongs to the top-level scope.
func (a Address) IsRoot() bool {
	return a.Scope == RootScope
}

// IsZero reports whether a is the zero Address.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Less orders addresses by scope name, then by index.
func (a Address) Less(other Address) bool {
	if a.Scope != other.Scope {
		return a.Scope < other.Scope
	}
	return a.Index < other.Index
}
