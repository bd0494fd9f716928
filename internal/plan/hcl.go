package plan

import (
	"fmt"
	"io"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// WriteHCL renders p as HCL, one block per operation:
//
//	create_node "Mixer#1" {
//	  type_id   = "ShaderNodeMath"
//	  type_name = "Math"
//	}
func WriteHCL(w io.Writer, p *Plan) error {
	f := hclwrite.NewEmptyFile()
	body := f.Body()
	body.SetAttributeValue("version", cty.NumberIntVal(int64(p.Version)))

	for i, op := range p.Ops {
		body.AppendNewline()
		if err := appendOp(body, op); err != nil {
			return fmt.Errorf("op %d: %w", i, err)
		}
	}

	if _, err := w.Write(hclwrite.Format(f.Bytes())); err != nil {
		return fmt.Errorf("failed to write plan HCL: %w", err)
	}
	return nil
}

func appendOp(body *hclwrite.Body, op Operation) error {
	if err := op.Validate(); err != nil {
		return err
	}

	switch op.Kind {
	case OpCreateNode:
		c := op.Create
		b := body.AppendNewBlock(string(OpCreateNode), []string{c.Node.String()}).Body()
		b.SetAttributeValue("type_id", cty.StringVal(c.TypeID))
		b.SetAttributeValue("type_name", cty.StringVal(c.TypeName))
		setOptional(b, "variant", c.Variant)
		setOptional(b, "label", c.Label)
		setOptional(b, "group", c.Group)
	case OpPairZone:
		b := body.AppendNewBlock(string(OpPairZone), nil).Body()
		b.SetAttributeValue("input", cty.StringVal(op.Zone.Input.String()))
		b.SetAttributeValue("output", cty.StringVal(op.Zone.Output.String()))
	case OpConnect:
		c := op.Connect
		b := body.AppendNewBlock(string(OpConnect), nil).Body()
		b.SetAttributeValue("from", cty.StringVal(c.From.String()))
		b.SetAttributeValue("from_socket", cty.StringVal(c.FromSocket))
		b.SetAttributeValue("to", cty.StringVal(c.To.String()))
		b.SetAttributeValue("to_socket", cty.StringVal(c.ToSocket))
		if c.FieldLink {
			b.SetAttributeValue("field_link", cty.True)
		}
	case OpApplyValue:
		a := op.Apply
		v, err := a.Value.ToCty()
		if err != nil {
			return fmt.Errorf("value of %s.%s: %w", a.Node, a.Field, err)
		}
		b := body.AppendNewBlock(string(OpApplyValue), []string{a.Node.String()}).Body()
		b.SetAttributeValue("field", cty.StringVal(a.Field))
		b.SetAttributeValue("kind", cty.StringVal(string(a.Value.Kind)))
		b.SetAttributeValue("value", v)
		b.SetAttributeValue("layer", cty.StringVal(a.Layer))
	case OpAdjust:
		a := op.Adjust
		b := body.AppendNewBlock(string(OpAdjust), []string{a.Node.String()}).Body()
		b.SetAttributeValue("field", cty.StringVal(a.Field))
		b.SetAttributeValue("count", cty.NumberIntVal(int64(a.Count)))
	case OpRenameSocket:
		r := op.Rename
		b := body.AppendNewBlock(string(OpRenameSocket), []string{r.Node.String()}).Body()
		b.SetAttributeValue("side", cty.StringVal(r.Side))
		b.SetAttributeValue("socket", cty.StringVal(r.Socket))
		b.SetAttributeValue("label", cty.StringVal(r.Label))
	case OpDeclarePort:
		d := op.Port
		b := body.AppendNewBlock(string(OpDeclarePort), []string{d.Node.String()}).Body()
		b.SetAttributeValue("side", cty.StringVal(d.Side))
		b.SetAttributeValue("name", cty.StringVal(d.Name))
		setOptional(b, "socket", d.Socket)
	case OpExpose:
		e := op.Expose
		b := body.AppendNewBlock(string(OpExpose), []string{e.Node.String()}).Body()
		b.SetAttributeValue("side", cty.StringVal(e.Side))
		b.SetAttributeValue("socket", cty.StringVal(e.Socket))
	}
	return nil
}

func setOptional(b *hclwrite.Body, name, v string) {
	if v != "" {
		b.SetAttributeValue(name, cty.StringVal(v))
	}
}
