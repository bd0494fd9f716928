// Package exporter serializes a snapshot.Snapshot into BNDL text.
//
// Output layout:
//
//	# BNDL v1
//	# === GROUP DEFINITIONS ===
//	BEGIN GROUP NAMED <name> ... END GROUP NAMED <name>   (one block per group)
//	# === TOP LEVEL ===
//	<root tree>
//	# === USER OVERRIDES ===
//	<root SetUser blocks>
//
// Each tree is written as Create lines, PairZone lines, Set blocks, Connect
// lines and finally SetUser blocks for every value whose live state differs
// from its authored default. Numbers are written in base units.
package exporter
