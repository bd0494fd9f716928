// Package builder is the boundary to a Target Graph Builder: anything that
// can create nodes, pair zones, connect sockets and assign values in a host.
//
// Run drives an Applier through a plan one operation at a time and records
// each outcome in a Report. It never retries and never stops early; a failed
// operation is reported verbatim and the next one is attempted.
//
// Memory is a reference builder that keeps the constructed graph in memory.
// It is idempotent, so applying the same plan twice leaves the graph
// unchanged, which makes it useful for verifying plans in tests.
package builder
