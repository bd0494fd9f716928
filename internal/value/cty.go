package value

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// ToCty converts l into the cty value used when a plan is rendered as HCL.
func (l Literal) ToCty() (cty.Value, error) {
	switch l.Kind {
	case KindNumber:
		return cty.NumberFloatVal(l.Number), nil
	case KindBoolean:
		return cty.BoolVal(l.Bool), nil
	case KindEnum:
		return cty.StringVal(l.Text), nil
	case KindTuple:
		elems := make([]cty.Value, len(l.Tuple))
		for i, c := range l.Tuple {
			elems[i] = cty.NumberFloatVal(c)
		}
		return cty.TupleVal(elems), nil
	case KindResource:
		return cty.ObjectVal(map[string]cty.Value{
			"kind": cty.StringVal(l.Resource),
			"name": cty.StringVal(l.Text),
		}), nil
	}
	return cty.NilVal, fmt.Errorf("literal has no kind")
}
