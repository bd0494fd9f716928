// Package parser turns BNDL text into a model.Document.
//
// The input is read line by line in a single pass. Each line is either blank,
// a comment (including the advisory `# === NAME ===` section headers), a
// statement (Create, Connect, Connect⋯, Set, SetUser, Rename, PairZone,
// BEGIN/START/END GROUP NAMED) or an assignment line `§ Field § to <literal>`
// belonging to the preceding Set or SetUser block header.
//
// The first non-blank line must be the `# BNDL v1` header. Any violation of
// the grammar or of the structural rules (dense node numbering, declared
// endpoints, socket direction, group nesting) aborts parsing with a
// *ParseError naming the offending line. There are no partial results.
package parser
