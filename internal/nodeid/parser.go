// internal/nodeid/parser.go
package nodeid

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// addressRegex splits `Scope#Index`. The scope is greedy so that a group
// name containing '#' still resolves to the last separator.
var addressRegex = regexp.MustCompile(`^(.*)#(\d+)$`)

// Parse creates an Address by parsing its canonical string representation.
func Parse(rawID string) (Address, error) {
	if rawID == "" {
		return Address{}, fmt.Errorf("identifier cannot be empty")
	}

	matches := addressRegex.FindStringSubmatch(rawID)
	if matches == nil {
		return Address{}, fmt.Errorf("invalid node identifier format: %q", rawID)
	}

	scope := matches[1]
	if scope != strings.TrimSpace(scope) {
		return Address{}, fmt.Errorf("scope name has surrounding whitespace: %q", rawID)
	}

	index, err := strconv.Atoi(matches[2])
	if err != nil {
		return Address{}, fmt.Errorf("invalid node index in %q: %w", rawID, err)
	}
	if index < 1 {
		return Address{}, fmt.Errorf("node index must be positive: %q", rawID)
	}

	return Address{Scope: scope, Index: index}, nil
}
