// Package value implements the literal values that appear on the right-hand
// side of BNDL assignments.
//
// A Literal is a small tagged union: a number, a boolean, an enum label, a
// fixed-arity tuple of numbers, or a reference to an external resource.
// Unit-bearing literals such as `<90°>` or `<5cm>` are parsed into a Quantity
// and normalized to the base unit of their dimension before they become a
// Literal, so a stored value never remembers the unit it was written in.
//
// Delimiters select the variant:
//
//	<1.5>  <True>  <Add>  <1, 2, 3>  <90°>   numeric, boolean, enum, tuple, quantity
//	©Label©                                 enum label (exporter form)
//	❆Steel❆  ⊞Cube⊞  ✸Set✸  ✷Img✷  ⧉M⧉  𝒞C𝒞   resource references
package value
