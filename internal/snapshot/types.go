package snapshot

import (
	"github.com/vk/bndl/internal/value"
)

// Snapshot is one exported graph: its group definitions and its top level.
type Snapshot struct {
	Groups []Group `yaml:"groups" validate:"unique=Name,dive"`
	Root   Tree    `yaml:"root"`
}

// Group is a named node tree that nodes can instantiate.
type Group struct {
	Name string `yaml:"name" validate:"required"`
	Tree `yaml:",inline"`
}

// Tree is the content of one scope.
type Tree struct {
	Nodes []Node `yaml:"nodes" validate:"unique=Key,dive"`
	Links []Link `yaml:"links" validate:"dive"`
	Zones []Zone `yaml:"zones" validate:"dive"`
}

// Node is one node as seen in the host.
type Node struct {
	// Key identifies the node within its tree, usually the host's node name.
	Key      string `yaml:"key" validate:"required"`
	TypeID   string `yaml:"type_id" validate:"required"`
	TypeName string `yaml:"type_name,omitempty"`
	Variant  string `yaml:"variant,omitempty"`
	Label    string `yaml:"label,omitempty"`
	// Group names the group a group-instance node instantiates.
	Group   string   `yaml:"group,omitempty"`
	Inputs  []Socket `yaml:"inputs,omitempty" validate:"dive"`
	Outputs []Socket `yaml:"outputs,omitempty" validate:"dive"`
	Values  []Value  `yaml:"values,omitempty" validate:"unique=Field,dive"`
	// Cases holds the case labels of an index switch, blank for unnamed
	// cases. Its length is the case count.
	Cases []string `yaml:"cases,omitempty"`
}

// Socket is one input or output of a node. Names may be empty or repeated.
type Socket struct {
	Name string `yaml:"name"`
	// Exposed marks a group interface socket that nothing inside the group
	// links to.
	Exposed bool `yaml:"exposed,omitempty"`
}

// Value is one parameter. Default is the authored value; Live is the value
// currently in effect in the host.
type Value struct {
	Field   string         `yaml:"field" validate:"required"`
	Default *value.Literal `yaml:"default,omitempty"`
	Live    value.Literal  `yaml:"live"`
}

// Link connects an output of one node to an input of another. Socket
// positions are zero-based indices into Outputs and Inputs.
type Link struct {
	From       string `yaml:"from" validate:"required"`
	FromSocket int    `yaml:"from_socket" validate:"gte=0"`
	To         string `yaml:"to" validate:"required"`
	ToSocket   int    `yaml:"to_socket" validate:"gte=0"`
	FieldLink  bool   `yaml:"field_link,omitempty"`
}

// Zone pairs the input and output node of a simulation or repeat zone.
type Zone struct {
	Input  string `yaml:"input" validate:"required"`
	Output string `yaml:"output" validate:"required"`
}

// Index returns the LocalIndex of the node with the given key, or 0.
func (t *Tree) Index(key string) int {
	for i, n := range t.Nodes {
		if n.Key == key {
			return i + 1
		}
	}
	return 0
}

// Group returns the group with the given name.
func (s *Snapshot) Group(name string) (*Group, bool) {
	for i := range s.Groups {
		if s.Groups[i].Name == name {
			return &s.Groups[i], true
		}
	}
	return nil, false
}
