package exporter

import "fmt"

// SerializeError reports a snapshot that cannot be expressed in BNDL.
type SerializeError struct {
	// Tree is the group name, or empty for the top level.
	Tree string
	// Node is the snapshot key of the offending node, if any.
	Node string
	Msg  string
	Err  error
}

func (e *SerializeError) Error() string {
	where := "top level"
	if e.Tree != "" {
		where = fmt.Sprintf("group %q", e.Tree)
	}
	if e.Node != "" {
		where += fmt.Sprintf(" node %q", e.Node)
	}
	return fmt.Sprintf("serialize %s: %s", where, e.Msg)
}

func (e *SerializeError) Unwrap() error {
	return e.Err
}
