package compiler

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/bndl/internal/model"
	"github.com/vk/bndl/internal/nodeid"
	"github.com/vk/bndl/internal/parser"
	"github.com/vk/bndl/internal/plan"
	"github.com/vk/bndl/internal/value"
)

func parse(t *testing.T, src string) *model.Document {
	t.Helper()
	doc, err := parser.ParseString(context.Background(), src)
	require.NoError(t, err)
	return doc
}

func compile(t *testing.T, src string, opts ...Option) *plan.Plan {
	t.Helper()
	p, err := New(opts...).Compile(context.Background(), parse(t, src))
	require.NoError(t, err)
	return p
}

func opStrings(p *plan.Plan) []string {
	out := make([]string, len(p.Ops))
	for i, op := range p.Ops {
		out[i] = op.String()
	}
	return out
}

func TestCompile_OverridePrecedence(t *testing.T) {
	src := `# BNDL v1
Create [ Group Input | — | ] ~ ~ #1 ; type=NodeGroupInput
Set [Group Input #1]: § Scale § to <1.0>
SetUser [Group Input #1]: § Scale § to <2.0>
`
	p := compile(t, src)

	assert.Equal(t, []string{
		"CreateNode(#1, NodeGroupInput)",
		"ApplyValue(#1, Scale, <2>)",
	}, opStrings(p))

	apply := p.Ops[1].Apply
	require.NotNil(t, apply)
	assert.Equal(t, value.Number(2.0), apply.Value)
	assert.Equal(t, plan.LayerUser, apply.Layer)
}

func TestCompile_DegreesStoredInRadians(t *testing.T) {
	src := "# BNDL v1\nCreate [ Rotate | — | ] ~ ~ #1 ; type=FunctionNodeRotateEuler\nSet [#1]: § Angle § to <90°>\n"
	p := compile(t, src)

	require.Len(t, p.Ops, 2)
	assert.InDelta(t, math.Pi/2, p.Ops[1].Apply.Value.Number, 1e-12)
}

func TestCompile_ValueOrder(t *testing.T) {
	src := `# BNDL v1
Create [ Math | Add | ] ~ ~ #1 ; type=ShaderNodeMath
Create [ Math | Add | ] ~ ~ #2 ; type=ShaderNodeMath
Set [#2]: § Value § to <3>
Set [#1]:
§ B § to <1>
§ A § to <1>
SetUser [#1]:
§ C § to <5>
§ A § to <9>
`
	p := compile(t, src)

	assert.Equal(t, []string{
		"CreateNode(#1, ShaderNodeMath)",
		"CreateNode(#2, ShaderNodeMath)",
		"ApplyValue(#1, B, <1>)",
		"ApplyValue(#1, A, <9>)",
		"ApplyValue(#1, C, <5>)",
		"ApplyValue(#2, Value, <3>)",
	}, opStrings(p))
}

func TestCompile_GroupOrder(t *testing.T) {
	src := `# BNDL v1
BEGIN GROUP NAMED A
Create [ Value | — | ] ~ ~ #1 ; type=ShaderNodeValue
END GROUP NAMED A
BEGIN GROUP NAMED B
Create [ Group | — | A ] ~ ~ #1 ; type=GeometryNodeGroup
END GROUP NAMED B
BEGIN GROUP NAMED C
Create [ Value | — | ] ~ ~ #1 ; type=ShaderNodeValue
END GROUP NAMED C
Create [ Group | — | B ] ~ ~ #1 ; type=GeometryNodeGroup
Create [ Group | — | A ] ~ ~ #2 ; type=GeometryNodeGroup
`
	p := compile(t, src)

	assert.Equal(t, []string{
		"CreateNode(A#1, ShaderNodeValue)",
		"CreateNode(B#1, GeometryNodeGroup)",
		"CreateNode(#1, GeometryNodeGroup)",
		"CreateNode(#2, GeometryNodeGroup)",
		"CreateNode(C#1, ShaderNodeValue)",
	}, opStrings(p))
	assert.Equal(t, "B", p.Ops[2].Create.Group)
}

func TestCompile_NestedVisibility(t *testing.T) {
	src := `# BNDL v1
BEGIN GROUP NAMED Outer
BEGIN GROUP NAMED Inner
Create [ Value | — | ] ~ ~ #1 ; type=ShaderNodeValue
END GROUP NAMED Inner
Create [ Group | — | Inner ] ~ ~ #1 ; type=GeometryNodeGroup
END GROUP NAMED Outer
Create [ Group | — | Outer ] ~ ~ #1 ; type=GeometryNodeGroup
`
	p := compile(t, src)
	assert.Equal(t, []string{
		"CreateNode(Inner#1, ShaderNodeValue)",
		"CreateNode(Outer#1, GeometryNodeGroup)",
		"CreateNode(#1, GeometryNodeGroup)",
	}, opStrings(p))
}

func TestCompile_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		src      string
		node     nodeid.Address
		contains string
	}{
		{
			name: "undefined group",
			src: `# BNDL v1
Create [ Group | — | Missing ] ~ ~ #1 ; type=GeometryNodeGroup
`,
			node:     nodeid.Root(1),
			contains: `undefined group "Missing"`,
		},
		{
			name: "group nested elsewhere is invisible",
			src: `# BNDL v1
BEGIN GROUP NAMED Outer
BEGIN GROUP NAMED Inner
END GROUP NAMED Inner
END GROUP NAMED Outer
Create [ Group | — | Inner ] ~ ~ #1 ; type=GeometryNodeGroup
`,
			node:     nodeid.Root(1),
			contains: `group "Inner" is not visible from the top level`,
		},
		{
			name: "self instantiation",
			src: `# BNDL v1
BEGIN GROUP NAMED Loop
Create [ Value | — | ] ~ ~ #1 ; type=ShaderNodeValue
Create [ Group | — | Loop ] ~ ~ #2 ; type=GeometryNodeGroup
END GROUP NAMED Loop
`,
			node:     nodeid.New("Loop", 2),
			contains: "instantiates itself",
		},
		{
			name: "mutual instantiation",
			src: `# BNDL v1
BEGIN GROUP NAMED A
Create [ Group | — | B ] ~ ~ #1 ; type=GeometryNodeGroup
END GROUP NAMED A
BEGIN GROUP NAMED B
Create [ Group | — | A ] ~ ~ #1 ; type=GeometryNodeGroup
END GROUP NAMED B
`,
			node:     nodeid.New("B", 1),
			contains: "group instantiation cycle",
		},
		{
			name: "pass-through cycle",
			src: `# BNDL v1
Create [ Reroute | — | ] ~ ~ #1 ; type=NodeReroute
Create [ Reroute | — | ] ~ ~ #2 ; type=NodeReroute
Create [ Math | Add | ] ~ ~ #3 ; type=ShaderNodeMath
Connect [#1] ○ § Output § to [#2] ⦿ § Input §
Connect [#2] ○ § Output § to [#1] ⦿ § Input §
Connect [#2] ○ § Output § to [#3] ⦿ § Value §
`,
			node:     nodeid.Root(1),
			contains: "pass-through cycle",
		},
		{
			name: "pass-through linked to itself",
			src: `# BNDL v1
Create [ Reroute | — | ] ~ ~ #1 ; type=NodeReroute
Connect [#1] ○ § Output § to [#1] ⦿ § Input §
`,
			node:     nodeid.Root(1),
			contains: "linked to itself",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := New().Compile(context.Background(), parse(t, tc.src))
			require.Error(t, err)
			assert.Nil(t, p)

			var cerr *CompileError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tc.node, cerr.Node)
			assert.Contains(t, cerr.Error(), tc.contains)
		})
	}
}

func TestCompile_CollapsesPassthrough(t *testing.T) {
	src := `# BNDL v1
Create [ Value | — | ] ~ ~ #1 ; type=ShaderNodeValue
Create [ Reroute | — | ] ~ ~ #2 ; type=NodeReroute
Create [ Reroute | — | ] ~ ~ #3 ; type=GeometryNodeReroute
Create [ Math | Add | ] ~ ~ #4 ; type=ShaderNodeMath
Create [ Math | Add | ] ~ ~ #5 ; type=ShaderNodeMath
Create [ Reroute | — | ] ~ ~ #6 ; type=NodeReroute
Create [ Frame | — | ] ~ Notes ~ #7 ; type=NodeFrame
Set [#2]: § Socket § to <1>
Connect [#1] ○ § Value § to [#2] ⦿ § Input §
Connect [#2] ○ § Output § to [#3] ⦿ § Input §
Connect⋯ [#3] ○ § Output § to [#4] ⦿ § Value §
Connect [#3] ○ § Output § to [#5] ⦿ § Value §
Connect⋯ [#1] ○ § Value § to [#4] ⦿ § Value §
Connect [#6] ○ § Output § to [#5] ⦿ § Value[2] §
`
	p := compile(t, src)

	want := []plan.Operation{
		plan.NewCreateNode(plan.CreateNode{Node: nodeid.Root(1), TypeID: "ShaderNodeValue", TypeName: "Value"}),
		plan.NewCreateNode(plan.CreateNode{Node: nodeid.Root(4), TypeID: "ShaderNodeMath", TypeName: "Math", Variant: "Add"}),
		plan.NewCreateNode(plan.CreateNode{Node: nodeid.Root(5), TypeID: "ShaderNodeMath", TypeName: "Math", Variant: "Add"}),
		plan.NewConnect(plan.Connect{From: nodeid.Root(1), FromSocket: "Value", To: nodeid.Root(4), ToSocket: "Value", FieldLink: true}),
		plan.NewConnect(plan.Connect{From: nodeid.Root(1), FromSocket: "Value", To: nodeid.Root(5), ToSocket: "Value"}),
	}
	if diff := cmp.Diff(want, p.Ops); diff != "" {
		t.Errorf("unexpected plan (-want +got):\n%s", diff)
	}
}

func TestCompile_CustomPassthrough(t *testing.T) {
	src := `# BNDL v1
Create [ Value | — | ] ~ ~ #1 ; type=ShaderNodeValue
Create [ Reroute | — | ] ~ ~ #2 ; type=NodeReroute
`
	p := compile(t, src, WithPassthrough("ShaderNodeValue"))
	assert.Equal(t, []string{"CreateNode(#2, NodeReroute)"}, opStrings(p))

	assert.NotEqual(t, New().Fingerprint(), New(WithPassthrough("ShaderNodeValue")).Fingerprint())
	assert.Equal(t, New().Fingerprint(), New().Fingerprint())
}

func TestCompile_ZonesAndScoping(t *testing.T) {
	src := `# BNDL v1
BEGIN GROUP NAMED Sim
Create [ Simulation Input | — | ] ~ ~ #1 ; type=GeometryNodeSimulationInput
Create [ Simulation Output | — | ] ~ ~ #2 ; type=GeometryNodeSimulationOutput
PairZone [ Simulation Input #1 ] <-> [ Simulation Output #2 ]
Set [#1]: § Delta § to <1>
END GROUP NAMED Sim
Create [ Group | — | Sim ] ~ ~ #1 ; type=GeometryNodeGroup
Set [#1]: § Delta § to <2>
`
	p := compile(t, src)
	assert.Equal(t, []string{
		"CreateNode(Sim#1, GeometryNodeSimulationInput)",
		"CreateNode(Sim#2, GeometryNodeSimulationOutput)",
		"PairZone(Sim#1, Sim#2)",
		"ApplyValue(Sim#1, Delta, <1>)",
		"CreateNode(#1, GeometryNodeGroup)",
		"ApplyValue(#1, Delta, <2>)",
	}, opStrings(p))
}

func TestCompile_Interface(t *testing.T) {
	src := `# BNDL v1.2
BEGIN GROUP NAMED Pick
Create [ Group Input | — | ] ~ ~ #1 ; type=NodeGroupInput
Create [ Index Switch | — | ] ~ ~ #2 ; type=GeometryNodeIndexSwitch
Create [ Reroute | — | ] ~ ~ #3 ; type=NodeReroute
Create [ Group Output | — | ] ~ ~ #4 ; type=NodeGroupOutput
Declare Outputs [ Group Input #1 ] : ○ Index , ○ Fallback
Expose [ Group Input #1 ] ○ Fallback
Rename [ Index Switch #2 ] ⦿ Case 1 to ~ Small ~
Adjust [ Index Switch #2 ] # Cases # to <2>
Declare Inputs [ Reroute #3 ] : ⦿ Input
Expose [ Reroute #3 ] ○ Output
Declare Inputs [ Group Output #4 ] : ⦿ Result ; sock=<Value>
Connect [#1] ○ § Index § to [#2] ⦿ § Index §
Connect [#2] ○ § Output § to [#4] ⦿ § Result §
END GROUP NAMED Pick
Create [ Value | — | ] ~ ~ #1 ; type=ShaderNodeValue
Create [ Group | — | Pick ] ~ ~ #2 ; type=GeometryNodeGroup
Declare Inputs [ Group #2 ] : ⦿ Index , ⦿ Fallback
Connect [#1] ○ § Value § to [#2] ⦿ § Fallback §
`
	p := compile(t, src)

	assert.Equal(t, []string{
		"CreateNode(Pick#1, NodeGroupInput)",
		"CreateNode(Pick#2, GeometryNodeIndexSwitch)",
		"CreateNode(Pick#4, NodeGroupOutput)",
		"DeclarePort(Pick#1, output Index)",
		"DeclarePort(Pick#1, output Fallback)",
		"Expose(Pick#1, output Fallback)",
		"Adjust(Pick#2, Cases, 2)",
		"RenameSocket(Pick#2, input Case 1, Small)",
		"DeclarePort(Pick#4, input Result)",
		"Connect(Pick#1.Index, Pick#2.Index)",
		"Connect(Pick#2.Output, Pick#4.Result)",
		"CreateNode(#1, ShaderNodeValue)",
		"CreateNode(#2, GeometryNodeGroup)",
		"DeclarePort(#2, input Index)",
		"DeclarePort(#2, input Fallback)",
		"Connect(#1.Value, #2.Fallback)",
	}, opStrings(p))

	port := p.Ops[8].Port
	require.NotNil(t, port)
	assert.Equal(t, "Value", port.Socket)
	assert.Equal(t, 8, p.Stats().Interface)
}

func TestCompile_Deterministic(t *testing.T) {
	src := `# BNDL v1
BEGIN GROUP NAMED G
Create [ Value | — | ] ~ ~ #1 ; type=ShaderNodeValue
Set [#1]:
§ Value § to <0.1>
§ Color § to <0.8, 0.2, 0.1, 1>
§ Material § to ❆Steel❆
END GROUP NAMED G
Create [ Group | — | G ] ~ ~ #1 ; type=GeometryNodeGroup
Create [ Math | Add | ] ~ ~ #2 ; type=ShaderNodeMath
Connect⋯ [#1] ○ § Value § to [#2] ⦿ § Value §
SetUser [#2]: § Value[2] § to <3>
`
	encode := func() []byte {
		var buf bytes.Buffer
		require.NoError(t, plan.EncodeJSON(&buf, compile(t, src)))
		return buf.Bytes()
	}
	assert.Equal(t, encode(), encode())
}

func TestCompile_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	doc := parse(t, "# BNDL v1\nCreate [ Value | — | ] ~ ~ #1 ; type=ShaderNodeValue\n")
	_, err := New().Compile(ctx, doc)
	assert.ErrorIs(t, err, context.Canceled)
}
