package compiler

import (
	"slices"
	"strings"
)

// DefaultPassthrough lists the type-ids and type-names treated as
// pass-through when no WithPassthrough option is given.
var DefaultPassthrough = []string{
	"NodeReroute",
	"GeometryNodeReroute",
	"NodeFrame",
	"Reroute",
	"Frame",
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithPassthrough replaces the pass-through list. A node is pass-through if
// its type-id or its type-name is listed.
func WithPassthrough(types ...string) Option {
	return func(c *Compiler) {
		c.passthrough = make(map[string]bool, len(types))
		for _, t := range types {
			c.passthrough[t] = true
		}
	}
}

// Fingerprint identifies the settings that affect compiler output.
func (c *Compiler) Fingerprint() string {
	types := make([]string, 0, len(c.passthrough))
	for t := range c.passthrough {
		types = append(types, t)
	}
	slices.Sort(types)
	return "passthrough=" + strings.Join(types, ",")
}
