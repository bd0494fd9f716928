package value

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// ErrUnrecognizedLiteral is returned for text that matches no literal shape.
	ErrUnrecognizedLiteral = errors.New("unrecognized literal")
	// ErrUnknownUnit is returned for a numeric literal with an unknown suffix.
	ErrUnknownUnit = errors.New("unknown unit")
)

const (
	minTupleArity = 2
	maxTupleArity = 4
)

// numberRegex splits a scalar into its numeric part and an optional suffix.
var numberRegex = regexp.MustCompile(`^([+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?)\s*(.*)$`)

// ParseLiteral parses one literal, including its delimiters. Unit suffixes
// are resolved against units; a nil table means DefaultUnits.
func ParseLiteral(text string, units *UnitTable) (Literal, error) {
	if units == nil {
		units = DefaultUnits()
	}
	text = strings.TrimSpace(text)
	first, firstSize := utf8.DecodeRuneInString(text)
	last, lastSize := utf8.DecodeLastRuneInString(text)
	if len(text) < firstSize+lastSize {
		return Literal{}, fmt.Errorf("%w: %q", ErrUnrecognizedLiteral, text)
	}
	inner := text[firstSize : len(text)-lastSize]

	switch {
	case first == '<' && last == '>':
		return parseAngled(inner, units)
	case first == enumMark && last == enumMark:
		if strings.ContainsRune(inner, enumMark) {
			return Literal{}, fmt.Errorf("%w: stray %q in %q", ErrUnrecognizedLiteral, enumMark, text)
		}
		return Enum(inner), nil
	case IsResourceMark(first) && last == first:
		name, err := unescapeResourceName(inner, first)
		if err != nil {
			return Literal{}, fmt.Errorf("%w: %v", ErrUnrecognizedLiteral, err)
		}
		return Resource(resourceKinds[first], name), nil
	}
	return Literal{}, fmt.Errorf("%w: %q", ErrUnrecognizedLiteral, text)
}

// ParseQuantity parses a magnitude with a unit suffix such as `90°` or `5 cm`.
func ParseQuantity(text string, units *UnitTable) (Quantity, error) {
	if units == nil {
		units = DefaultUnits()
	}
	m := numberRegex.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil || m[2] == "" {
		return Quantity{}, fmt.Errorf("%w: %q is not a quantity", ErrUnrecognizedLiteral, text)
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Quantity{}, fmt.Errorf("%w: %q: %v", ErrUnrecognizedLiteral, text, err)
	}
	u, ok := units.Lookup(m[2])
	if !ok {
		return Quantity{}, fmt.Errorf("%w %q in %q", ErrUnknownUnit, m[2], text)
	}
	return Quantity{Magnitude: f, Unit: u}, nil
}

func parseAngled(inner string, units *UnitTable) (Literal, error) {
	inner = strings.TrimSpace(inner)
	if inner == "" {
		return Literal{}, fmt.Errorf("%w: empty <>", ErrUnrecognizedLiteral)
	}
	if b, ok := parseBool(inner); ok {
		return Bool(b), nil
	}
	if strings.Contains(inner, ",") {
		parts := strings.Split(inner, ",")
		if len(parts) < minTupleArity || len(parts) > maxTupleArity {
			return Literal{}, fmt.Errorf("%w: tuple of %d components, want %d..%d", ErrUnrecognizedLiteral, len(parts), minTupleArity, maxTupleArity)
		}
		comps := make([]float64, len(parts))
		for i, p := range parts {
			f, err := parseScalar(strings.TrimSpace(p), units)
			if err != nil {
				return Literal{}, fmt.Errorf("tuple component %d: %w", i+1, err)
			}
			comps[i] = f
		}
		return Tuple(comps...), nil
	}
	r, _ := utf8.DecodeRuneInString(inner)
	if unicode.IsLetter(r) {
		return Enum(inner), nil
	}
	f, err := parseScalar(inner, units)
	if err != nil {
		return Literal{}, err
	}
	return Number(f), nil
}

// parseScalar parses a plain number or a quantity, normalizing the latter.
func parseScalar(s string, units *UnitTable) (float64, error) {
	m := numberRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrUnrecognizedLiteral, s)
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrUnrecognizedLiteral, s, err)
	}
	if m[2] == "" {
		return f, nil
	}
	u, ok := units.Lookup(m[2])
	if !ok {
		return 0, fmt.Errorf("%w %q in %q", ErrUnknownUnit, m[2], s)
	}
	return Quantity{Magnitude: f, Unit: u}.Normalize(), nil
}

func parseBool(s string) (value, ok bool) {
	switch {
	case strings.EqualFold(s, "true"):
		return true, true
	case strings.EqualFold(s, "false"):
		return false, true
	}
	return false, false
}

// unescapeResourceName undoes mark doubling. A single mark inside the name
// would have closed the literal early, so it is rejected.
func unescapeResourceName(inner string, mark rune) (string, error) {
	if inner == "" {
		return "", fmt.Errorf("empty resource name")
	}
	var sb strings.Builder
	runes := []rune(inner)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == mark {
			if i+1 >= len(runes) || runes[i+1] != mark {
				return "", fmt.Errorf("unescaped %q inside resource name %q", mark, inner)
			}
			i++
		}
		sb.WriteRune(r)
	}
	return sb.String(), nil
}
