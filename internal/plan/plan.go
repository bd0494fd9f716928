package plan

import (
	"fmt"

	"github.com/vk/bndl/internal/nodeid"
	"github.com/vk/bndl/internal/value"
)

// FormatVersion is written into every plan.
const FormatVersion = 1

// OpKind identifies the payload of an Operation.
type OpKind string

const (
	OpCreateNode OpKind = "create_node"
	OpPairZone   OpKind = "pair_zone"
	OpConnect    OpKind = "connect"
	OpApplyValue OpKind = "apply_value"

	OpAdjust       OpKind = "adjust"
	OpRenameSocket OpKind = "rename_socket"
	OpDeclarePort  OpKind = "declare_port"
	OpExpose       OpKind = "expose"
)

// Socket sides recorded on interface operations.
const (
	SideInput  = "input"
	SideOutput = "output"
)

// Value layers recorded on ApplyValue.
const (
	LayerDefault = "default"
	LayerUser    = "user"
)

// CreateNode instantiates one node.
type CreateNode struct {
	Node     nodeid.Address `json:"node" msgpack:"node"`
	TypeID   string         `json:"type_id" msgpack:"type_id"`
	TypeName string         `json:"type_name" msgpack:"type_name"`
	Variant  string         `json:"variant,omitempty" msgpack:"variant,omitempty"`
	Label    string         `json:"label,omitempty" msgpack:"label,omitempty"`
	// Group is the group scope this node instantiates.
	Group string `json:"group,omitempty" msgpack:"group,omitempty"`
}

// PairZone ties a zone input node to its output node.
type PairZone struct {
	Input  nodeid.Address `json:"input" msgpack:"input"`
	Output nodeid.Address `json:"output" msgpack:"output"`
}

// Connect links an output socket to an input socket.
type Connect struct {
	From       nodeid.Address `json:"from" msgpack:"from"`
	FromSocket string         `json:"from_socket" msgpack:"from_socket"`
	To         nodeid.Address `json:"to" msgpack:"to"`
	ToSocket   string         `json:"to_socket" msgpack:"to_socket"`
	FieldLink  bool           `json:"field_link,omitempty" msgpack:"field_link,omitempty"`
}

// ApplyValue sets one parameter of a node.
type ApplyValue struct {
	Node  nodeid.Address `json:"node" msgpack:"node"`
	Field string         `json:"field" msgpack:"field"`
	Value value.Literal  `json:"value" msgpack:"value"`
	// Layer records which value layer won the merge.
	Layer string `json:"layer" msgpack:"layer"`
}

// Adjust sets the length of a dynamic socket list, e.g. the cases of an
// index switch.
type Adjust struct {
	Node  nodeid.Address `json:"node" msgpack:"node"`
	Field string         `json:"field" msgpack:"field"`
	Count int            `json:"count" msgpack:"count"`
}

// RenameSocket gives one socket a display label.
type RenameSocket struct {
	Node   nodeid.Address `json:"node" msgpack:"node"`
	Side   string         `json:"side" msgpack:"side"`
	Socket string         `json:"socket" msgpack:"socket"`
	Label  string         `json:"label" msgpack:"label"`
}

// DeclarePort adds one socket to a node interface.
type DeclarePort struct {
	Node nodeid.Address `json:"node" msgpack:"node"`
	Side string         `json:"side" msgpack:"side"`
	Name string         `json:"name" msgpack:"name"`
	// Socket is the host socket name when it differs from Name.
	Socket string `json:"socket,omitempty" msgpack:"socket,omitempty"`
}

// Expose publishes a socket on the interface of the enclosing group.
type Expose struct {
	Node   nodeid.Address `json:"node" msgpack:"node"`
	Side   string         `json:"side" msgpack:"side"`
	Socket string         `json:"socket" msgpack:"socket"`
}

// Operation is one step of a plan. Exactly one payload matching Kind is set.
type Operation struct {
	Kind    OpKind      `json:"op" msgpack:"op"`
	Create  *CreateNode `json:"create,omitempty" msgpack:"create,omitempty"`
	Zone    *PairZone   `json:"zone,omitempty" msgpack:"zone,omitempty"`
	Connect *Connect    `json:"connect,omitempty" msgpack:"connect,omitempty"`
	Apply   *ApplyValue `json:"apply,omitempty" msgpack:"apply,omitempty"`

	Adjust *Adjust       `json:"adjust,omitempty" msgpack:"adjust,omitempty"`
	Rename *RenameSocket `json:"rename,omitempty" msgpack:"rename,omitempty"`
	Port   *DeclarePort  `json:"port,omitempty" msgpack:"port,omitempty"`
	Expose *Expose       `json:"expose,omitempty" msgpack:"expose,omitempty"`
}

// NewCreateNode wraps c in an Operation.
func NewCreateNode(c CreateNode) Operation {
	return Operation{Kind: OpCreateNode, Create: &c}
}

// NewPairZone wraps z in an Operation.
func NewPairZone(z PairZone) Operation {
	return Operation{Kind: OpPairZone, Zone: &z}
}

// NewConnect wraps c in an Operation.
func NewConnect(c Connect) Operation {
	return Operation{Kind: OpConnect, Connect: &c}
}

// NewApplyValue wraps a in an Operation.
func NewApplyValue(a ApplyValue) Operation {
	return Operation{Kind: OpApplyValue, Apply: &a}
}

// NewAdjust wraps a in an Operation.
func NewAdjust(a Adjust) Operation {
	return Operation{Kind: OpAdjust, Adjust: &a}
}

// NewRenameSocket wraps r in an Operation.
func NewRenameSocket(r RenameSocket) Operation {
	return Operation{Kind: OpRenameSocket, Rename: &r}
}

// NewDeclarePort wraps d in an Operation.
func NewDeclarePort(d DeclarePort) Operation {
	return Operation{Kind: OpDeclarePort, Port: &d}
}

// NewExpose wraps e in an Operation.
func NewExpose(e Expose) Operation {
	return Operation{Kind: OpExpose, Expose: &e}
}

// Validate checks that exactly the payload named by Kind is present.
func (o Operation) Validate() error {
	set := 0
	payloads := []bool{
		o.Create != nil, o.Zone != nil, o.Connect != nil, o.Apply != nil,
		o.Adjust != nil, o.Rename != nil, o.Port != nil, o.Expose != nil,
	}
	for _, present := range payloads {
		if present {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("operation %q carries %d payloads, want 1", o.Kind, set)
	}

	var ok bool
	switch o.Kind {
	case OpCreateNode:
		ok = o.Create != nil
	case OpPairZone:
		ok = o.Zone != nil
	case OpConnect:
		ok = o.Connect != nil
	case OpApplyValue:
		ok = o.Apply != nil
	case OpAdjust:
		ok = o.Adjust != nil
	case OpRenameSocket:
		ok = o.Rename != nil
	case OpDeclarePort:
		ok = o.Port != nil
	case OpExpose:
		ok = o.Expose != nil
	default:
		return fmt.Errorf("unknown operation kind %q", o.Kind)
	}
	if !ok {
		return fmt.Errorf("operation %q has the wrong payload", o.Kind)
	}

	side := ""
	switch {
	case o.Adjust != nil && o.Adjust.Count < 0:
		return fmt.Errorf("operation %q has a negative count", o.Kind)
	case o.Rename != nil:
		side = o.Rename.Side
	case o.Port != nil:
		side = o.Port.Side
	case o.Expose != nil:
		side = o.Expose.Side
	default:
		return nil
	}
	if side != SideInput && side != SideOutput {
		return fmt.Errorf("operation %q has unknown side %q", o.Kind, side)
	}
	return nil
}

// String renders the operation in a compact call-like form, e.g.
// `ApplyValue(#1, Scale, <2>)`.
func (o Operation) String() string {
	switch {
	case o.Kind == OpCreateNode && o.Create != nil:
		return fmt.Sprintf("CreateNode(%s, %s)", o.Create.Node, o.Create.TypeID)
	case o.Kind == OpPairZone && o.Zone != nil:
		return fmt.Sprintf("PairZone(%s, %s)", o.Zone.Input, o.Zone.Output)
	case o.Kind == OpConnect && o.Connect != nil:
		c := o.Connect
		return fmt.Sprintf("Connect(%s.%s, %s.%s)", c.From, c.FromSocket, c.To, c.ToSocket)
	case o.Kind == OpApplyValue && o.Apply != nil:
		return fmt.Sprintf("ApplyValue(%s, %s, %s)", o.Apply.Node, o.Apply.Field, o.Apply.Value)
	case o.Kind == OpAdjust && o.Adjust != nil:
		return fmt.Sprintf("Adjust(%s, %s, %d)", o.Adjust.Node, o.Adjust.Field, o.Adjust.Count)
	case o.Kind == OpRenameSocket && o.Rename != nil:
		r := o.Rename
		return fmt.Sprintf("RenameSocket(%s, %s %s, %s)", r.Node, r.Side, r.Socket, r.Label)
	case o.Kind == OpDeclarePort && o.Port != nil:
		return fmt.Sprintf("DeclarePort(%s, %s %s)", o.Port.Node, o.Port.Side, o.Port.Name)
	case o.Kind == OpExpose && o.Expose != nil:
		return fmt.Sprintf("Expose(%s, %s %s)", o.Expose.Node, o.Expose.Side, o.Expose.Socket)
	}
	return fmt.Sprintf("Invalid(%s)", o.Kind)
}

// Plan is an ordered, deterministic sequence of operations.
type Plan struct {
	Version int         `json:"version" msgpack:"version"`
	Ops     []Operation `json:"ops" msgpack:"ops"`
}

// New returns an empty plan of the current format version.
func New() *Plan {
	return &Plan{Version: FormatVersion, Ops: []Operation{}}
}

// Append adds operations to the end of the plan.
func (p *Plan) Append(ops ...Operation) {
	p.Ops = append(p.Ops, ops...)
}

// Validate checks the version and every operation.
func (p *Plan) Validate() error {
	if p.Version != FormatVersion {
		return fmt.Errorf("unsupported plan version %d", p.Version)
	}
	for i, op := range p.Ops {
		if err := op.Validate(); err != nil {
			return fmt.Errorf("op %d: %w", i, err)
		}
	}
	return nil
}
