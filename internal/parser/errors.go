package parser

import (
	"fmt"
	"strings"
)

// ParseError reports the first line that could not be parsed.
type ParseError struct {
	Line int
	// Expected describes the token or construct the parser was looking for.
	Expected string
	Msg      string
	// Source is the offending line, trimmed.
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "line %d: %s", e.Line, e.Msg)
	if e.Expected != "" {
		fmt.Fprintf(&sb, " (expected %s)", e.Expected)
	}
	return sb.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
