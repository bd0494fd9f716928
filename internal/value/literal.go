package value

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind tags the active variant of a Literal.
type Kind string

const (
	KindNumber   Kind = "number"
	KindBoolean  Kind = "boolean"
	KindEnum     Kind = "enum"
	KindTuple    Kind = "tuple"
	KindResource Kind = "resource"
)

// Literal is a typed parameter value. Only the fields that belong to Kind are
// meaningful; constructors keep the others at their zero value so that two
// equal literals also encode identically.
type Literal struct {
	Kind   Kind      `json:"kind" msgpack:"kind"`
	Number float64   `json:"number,omitempty" msgpack:"number,omitempty"`
	Bool   bool      `json:"bool,omitempty" msgpack:"bool,omitempty"`
	Text   string    `json:"text,omitempty" msgpack:"text,omitempty"`
	Tuple  []float64 `json:"tuple,omitempty" msgpack:"tuple,omitempty"`
	// Resource is the resource kind (Material, Object, ...) for KindResource.
	Resource string `json:"resource,omitempty" msgpack:"resource,omitempty"`
}

// Number returns a numeric literal.
func Number(f float64) Literal { return Literal{Kind: KindNumber, Number: f} }

// Bool returns a boolean literal.
func Bool(b bool) Literal { return Literal{Kind: KindBoolean, Bool: b} }

// Enum returns an enum-label literal. The label is kept verbatim; mapping it
// to an enumerant is up to the builder.
func Enum(label string) Literal { return Literal{Kind: KindEnum, Text: label} }

// Tuple returns a tuple literal holding a copy of the given components.
func Tuple(components ...float64) Literal {
	return Literal{Kind: KindTuple, Tuple: slices.Clone(components)}
}

// Resource returns a reference to the named external resource of the given kind.
func Resource(kind, name string) Literal {
	return Literal{Kind: KindResource, Resource: kind, Text: name}
}

// IsZero reports whether l is the zero Literal (no variant selected).
func (l Literal) IsZero() bool { return l.Kind == "" }

// Equal reports whether two literals hold the same variant and value.
// Numbers compare exactly.
func (l Literal) Equal(o Literal) bool {
	if l.Kind != o.Kind {
		return false
	}
	switch l.Kind {
	case KindNumber:
		return l.Number == o.Number
	case KindBoolean:
		return l.Bool == o.Bool
	case KindEnum:
		return l.Text == o.Text
	case KindTuple:
		return slices.Equal(l.Tuple, o.Tuple)
	case KindResource:
		return l.Resource == o.Resource && l.Text == o.Text
	}
	return true
}

// Encode renders l in canonical BNDL literal syntax. It fails when the value
// cannot be written back in a form that parses to the same literal.
func (l Literal) Encode() (string, error) {
	switch l.Kind {
	case KindNumber:
		return "<" + FormatNumber(l.Number) + ">", nil
	case KindBoolean:
		if l.Bool {
			return "<True>", nil
		}
		return "<False>", nil
	case KindEnum:
		if plainEnumLabel(l.Text) {
			return "<" + l.Text + ">", nil
		}
		if strings.ContainsRune(l.Text, enumMark) {
			return "", fmt.Errorf("enum label %q contains %q", l.Text, enumMark)
		}
		return string(enumMark) + l.Text + string(enumMark), nil
	case KindTuple:
		if len(l.Tuple) < minTupleArity || len(l.Tuple) > maxTupleArity {
			return "", fmt.Errorf("tuple arity %d outside %d..%d", len(l.Tuple), minTupleArity, maxTupleArity)
		}
		parts := make([]string, len(l.Tuple))
		for i, c := range l.Tuple {
			parts[i] = FormatNumber(c)
		}
		return "<" + strings.Join(parts, ", ") + ">", nil
	case KindResource:
		mark, ok := resourceMarks[l.Resource]
		if !ok {
			return "", fmt.Errorf("unknown resource kind %q", l.Resource)
		}
		if l.Text == "" {
			return "", fmt.Errorf("empty %s name", l.Resource)
		}
		m := string(mark)
		return m + strings.ReplaceAll(l.Text, m, m+m) + m, nil
	}
	return "", fmt.Errorf("literal has no kind")
}

// String implements fmt.Stringer. Unencodable literals fall back to a
// diagnostic form.
func (l Literal) String() string {
	s, err := l.Encode()
	if err != nil {
		return fmt.Sprintf("%s(%v)", l.Kind, err)
	}
	return s
}

// FormatNumber prints f with the fewest digits that parse back to f, without
// an exponent. Negative zero prints as 0.
func FormatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// plainEnumLabel reports whether label survives a round trip inside <...>.
func plainEnumLabel(label string) bool {
	if label == "" || label != strings.TrimSpace(label) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(label)
	if !unicode.IsLetter(r) {
		return false
	}
	if strings.ContainsAny(label, ",<>") {
		return false
	}
	_, isBool := parseBool(label)
	return !isBool
}
