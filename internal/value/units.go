package value

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Dimension is a physical dimension with one canonical base unit.
type Dimension string

const (
	Angle  Dimension = "angle"  // base unit: radian
	Length Dimension = "length" // base unit: meter
)

// Unit is one entry of the suffix table.
type Unit struct {
	Suffix    string
	Dimension Dimension
	// Factor converts one Suffix into the dimension's base unit.
	Factor float64
}

// Quantity is a magnitude written with a unit suffix, before normalization.
type Quantity struct {
	Magnitude float64
	Unit      Unit
}

// Normalize converts q to the base unit of its dimension.
func (q Quantity) Normalize() float64 {
	if q.Unit.Factor == 1 {
		return q.Magnitude
	}
	return q.Magnitude * q.Unit.Factor
}

// UnitTable resolves literal suffixes. A table is read-only once handed to
// a parser; build it completely before sharing it between goroutines.
type UnitTable struct {
	units map[string]Unit
}

var defaultUnits = []Unit{
	{Suffix: "°", Dimension: Angle, Factor: math.Pi / 180},
	{Suffix: "deg", Dimension: Angle, Factor: math.Pi / 180},
	{Suffix: "rad", Dimension: Angle, Factor: 1},
	{Suffix: "mm", Dimension: Length, Factor: 0.001},
	{Suffix: "cm", Dimension: Length, Factor: 0.01},
	{Suffix: "m", Dimension: Length, Factor: 1},
	{Suffix: "km", Dimension: Length, Factor: 1000},
	{Suffix: "in", Dimension: Length, Factor: 0.0254},
	{Suffix: "ft", Dimension: Length, Factor: 0.3048},
}

// DefaultUnits returns a fresh table holding the built-in angle and length units.
func DefaultUnits() *UnitTable {
	t := &UnitTable{units: make(map[string]Unit, len(defaultUnits))}
	for _, u := range defaultUnits {
		t.units[u.Suffix] = u
	}
	return t
}

// Register adds or replaces a unit.
func (t *UnitTable) Register(u Unit) error {
	if u.Suffix == "" {
		return fmt.Errorf("unit suffix must not be empty")
	}
	for _, r := range u.Suffix {
		if unicode.IsDigit(r) || unicode.IsSpace(r) || strings.ContainsRune("<>,.+-", r) {
			return fmt.Errorf("unit suffix %q contains %q", u.Suffix, r)
		}
	}
	if u.Dimension == "" {
		return fmt.Errorf("unit %q has no dimension", u.Suffix)
	}
	if !(u.Factor > 0) || math.IsInf(u.Factor, 0) {
		return fmt.Errorf("unit %q has invalid factor %v", u.Suffix, u.Factor)
	}
	t.units[u.Suffix] = u
	return nil
}

// Lookup returns the unit for a suffix.
func (t *UnitTable) Lookup(suffix string) (Unit, bool) {
	u, ok := t.units[suffix]
	return u, ok
}

// Fingerprint identifies the table contents. Two tables with the same
// fingerprint normalize every literal identically.
func (t *UnitTable) Fingerprint() string {
	suffixes := make([]string, 0, len(t.units))
	for s := range t.units {
		suffixes = append(suffixes, s)
	}
	sort.Strings(suffixes)

	var sb strings.Builder
	for _, s := range suffixes {
		u := t.units[s]
		sb.WriteString(s)
		sb.WriteByte('=')
		sb.WriteString(string(u.Dimension))
		sb.WriteByte(':')
		sb.WriteString(strconv.FormatFloat(u.Factor, 'g', -1, 64))
		sb.WriteByte(';')
	}
	return sb.String()
}
