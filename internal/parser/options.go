package parser

import "github.com/vk/bndl/internal/value"

// maxLineSize bounds a single input line.
const maxLineSize = 1 << 20

type options struct {
	units *value.UnitTable
}

// Option configures Parse.
type Option func(*options)

// WithUnits sets the unit table used to normalize unit-bearing literals.
func WithUnits(units *value.UnitTable) Option {
	return func(o *options) {
		if units != nil {
			o.units = units
		}
	}
}
