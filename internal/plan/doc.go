// Package plan defines the Build Plan: the ordered list of graph-construction
// operations produced by the compiler and consumed by a builder.
//
// A plan is plain data. It can be encoded as indented JSON (the interchange
// format), msgpack (the cache format) or HCL (a review format that reads
// well in diffs). Digest identifies a plan by the hash of its JSON encoding.
package plan
