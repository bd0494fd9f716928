package compiler

import (
	"fmt"

	"github.com/vk/bndl/internal/nodeid"
)

// CompileError reports a document that parses but cannot be lowered.
type CompileError struct {
	// Node is the node the problem was found at.
	Node nodeid.Address
	Msg  string
	Err  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile %s: %s", e.Node, e.Msg)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}
