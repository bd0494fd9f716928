package exporter

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/bndl/internal/compiler"
	"github.com/vk/bndl/internal/parser"
	"github.com/vk/bndl/internal/plan"
	"github.com/vk/bndl/internal/snapshot"
	"github.com/vk/bndl/internal/value"
)

func ptr(l value.Literal) *value.Literal { return &l }

func sampleSnapshot() *snapshot.Snapshot {
	return &snapshot.Snapshot{
		Groups: []snapshot.Group{{
			Name: "Twist",
			Tree: snapshot.Tree{
				Nodes: []snapshot.Node{
					{Key: "in", TypeID: "NodeGroupInput", Outputs: []snapshot.Socket{{Name: "Geometry"}}},
					{Key: "out", TypeID: "NodeGroupOutput", Inputs: []snapshot.Socket{{Name: "Geometry"}}},
				},
				Links: []snapshot.Link{{From: "in", To: "out"}},
			},
		}},
		Root: snapshot.Tree{
			Nodes: []snapshot.Node{
				{
					Key:     "grid",
					TypeID:  "GeometryNodeMeshGrid",
					Outputs: []snapshot.Socket{{Name: "Mesh"}},
					Values: []snapshot.Value{
						{Field: "Size X", Default: ptr(value.Number(1)), Live: value.Number(2.5)},
						{Field: "Vertices X", Live: value.Number(3)},
					},
				},
				{Key: "twist", TypeID: "GeometryNodeGroup", Group: "Twist", Inputs: []snapshot.Socket{{Name: "Geometry"}}},
			},
			Links: []snapshot.Link{{From: "grid", To: "twist"}},
		},
	}
}

func TestExport_Layout(t *testing.T) {
	out, err := Export(context.Background(), sampleSnapshot())
	require.NoError(t, err)

	want := `# BNDL v1
# === GROUP DEFINITIONS ===
BEGIN GROUP NAMED Twist
Create  [ Group Input | — | ] ~ ~ #1 ; type=NodeGroupInput
Create  [ Group Output | — | ] ~ ~ #2 ; type=NodeGroupOutput
Declare Outputs [ Group Input #1 ] : ○ Geometry
Declare Inputs  [ Group Output #2 ] : ⦿ Geometry
Connect  [ Group Input #1 ] ○ § Geometry §  to  [ Group Output #2 ] ⦿ § Geometry §
END GROUP NAMED Twist

# === TOP LEVEL ===
Create  [ Mesh Grid | — | ] ~ ~ #1 ; type=GeometryNodeMeshGrid
Create  [ Group | — | Twist ] ~ ~ #2 ; type=GeometryNodeGroup
Declare Outputs [ Mesh Grid #1 ] : ○ Mesh
Declare Inputs  [ Group #2 ] : ⦿ Geometry
Set  [ Mesh Grid #1 ]:
§ Size X § to <1>
§ Vertices X § to <3>
Connect  [ Mesh Grid #1 ] ○ § Mesh §  to  [ Group #2 ] ⦿ § Geometry §

# === USER OVERRIDES ===
SetUser  [ Mesh Grid #1 ]:
§ Size X § to <2.5>
`
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Errorf("Export() mismatch (-want +got):\n%s", diff)
	}
}

func TestExport_NoOverridesSection(t *testing.T) {
	s := &snapshot.Snapshot{Root: snapshot.Tree{Nodes: []snapshot.Node{{
		Key:    "a",
		TypeID: "ShaderNodeMath",
		Label:  "scale",
		Values: []snapshot.Value{{Field: "Operation", Default: ptr(value.Enum("ADD")), Live: value.Enum("ADD")}},
	}}}}
	out, err := Export(context.Background(), s)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "USER OVERRIDES")
	assert.Contains(t, string(out), "Create  [ Math | — | ] ~ scale ~ #1 ; type=ShaderNodeMath\n")
	assert.Contains(t, string(out), "§ Operation § to <ADD>\n")
}

func TestExport_RoundTrip(t *testing.T) {
	s := sampleSnapshot()
	s.Root.Nodes = append(s.Root.Nodes,
		snapshot.Node{
			Key:     "rot",
			TypeID:  "FunctionNodeRotateEuler",
			Variant: "AXIS_ANGLE",
			Label:   "spin ~ fast",
			Inputs:  []snapshot.Socket{{Name: "Rotation"}, {Name: "Angle"}},
			Outputs: []snapshot.Socket{{Name: "Rotation"}},
			Values: []snapshot.Value{
				{Field: "Angle", Default: ptr(value.Number(0)), Live: value.Number(math.Pi / 3)},
				{Field: "Axis", Default: ptr(value.Tuple(0, 0, 1)), Live: value.Tuple(0, 0, 1)},
				{Field: "Space", Live: value.Enum("Local Space")},
				{Field: "Material", Default: ptr(value.Resource("Material", "Steel")), Live: value.Resource("Material", "Ste❆el")},
			},
		},
		snapshot.Node{
			Key:     "sw",
			TypeID:  "GeometryNodeSwitch",
			Inputs:  []snapshot.Socket{{Name: "Switch"}, {Name: ""}, {Name: ""}},
			Outputs: []snapshot.Socket{{Name: ""}},
			Values:  []snapshot.Value{{Field: "Switch", Default: ptr(value.Bool(false)), Live: value.Bool(true)}},
		},
	)
	s.Root.Links = append(s.Root.Links,
		snapshot.Link{From: "rot", To: "sw", ToSocket: 2, FieldLink: true},
		snapshot.Link{From: "sw", To: "rot", ToSocket: 1},
	)
	s.Groups[0].Tree.Nodes[1].Values = []snapshot.Value{
		{Field: "Scale", Default: ptr(value.Number(1)), Live: value.Number(-0.25)},
	}

	out, err := Export(context.Background(), s)
	require.NoError(t, err)

	doc, err := parser.ParseString(context.Background(), string(out))
	require.NoError(t, err, string(out))
	p, err := compiler.New().Compile(context.Background(), doc)
	require.NoError(t, err)

	got := map[string]value.Literal{}
	var links []string
	for _, op := range p.Ops {
		switch op.Kind {
		case plan.OpApplyValue:
			got[op.Apply.Node.String()+"/"+op.Apply.Field] = op.Apply.Value
		case plan.OpConnect:
			links = append(links, op.String())
		}
	}

	want := map[string]value.Literal{
		"Twist#2/Scale": value.Number(-0.25),
		"#1/Size X":     value.Number(2.5),
		"#1/Vertices X": value.Number(3),
		"#3/Angle":      value.Number(math.Pi / 3),
		"#3/Axis":       value.Tuple(0, 0, 1),
		"#3/Space":      value.Enum("Local Space"),
		"#3/Material":   value.Resource("Material", "Ste❆el"),
		"#4/Switch":     value.Bool(true),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip values mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, links, 4)
}

func TestExport_Interface(t *testing.T) {
	s := sampleSnapshot()
	twist := &s.Groups[0].Tree
	twist.Nodes[0].Outputs = []snapshot.Socket{{Name: "Geometry"}, {Name: "Geometry", Exposed: true}}
	twist.Nodes[1].Inputs = append(twist.Nodes[1].Inputs, snapshot.Socket{Name: "Count", Exposed: true})
	twist.Nodes = append(twist.Nodes, snapshot.Node{
		Key:     "pick",
		TypeID:  "GeometryNodeIndexSwitch",
		Inputs:  []snapshot.Socket{{Name: "Index"}, {Name: "Case 1"}, {Name: "Case 2"}},
		Outputs: []snapshot.Socket{{Name: "Output"}},
		Cases:   []string{"Small", ""},
	})

	out, err := Export(context.Background(), s)
	require.NoError(t, err)
	text := string(out)

	assert.Contains(t, text, "Create  [ Index Switch | — | ] ~ ~ #3 ; type=GeometryNodeIndexSwitch\n"+
		"Adjust  [ Index Switch #3 ]  # Cases # to <2>\n"+
		"Rename  [ Index Switch #3 ] ⦿ Case 1 to ~ Small ~\n")
	assert.NotContains(t, text, "Case 2 to")
	assert.Contains(t, text, "Declare Outputs [ Group Input #1 ] : ○ Geometry , ○ Geometry[2]\n"+
		"Expose  [ Group Input #1 ] ○ Geometry[2]\n")
	assert.Contains(t, text, "Declare Inputs  [ Group Output #2 ] : ⦿ Geometry , ⦿ Count\n"+
		"Expose  [ Group Output #2 ] ⦿ Count\n")
	assert.Contains(t, text, "Declare Inputs  [ Index Switch #3 ] : ⦿ Index , ⦿ Case 1 , ⦿ Case 2\n"+
		"Declare Outputs [ Index Switch #3 ] : ○ Output\n")

	doc, err := parser.ParseString(context.Background(), text)
	require.NoError(t, err, text)
	p, err := compiler.New().Compile(context.Background(), doc)
	require.NoError(t, err)

	var got []string
	for _, op := range p.Ops {
		if op.Kind != plan.OpCreateNode && op.Kind != plan.OpConnect && strings.Contains(op.String(), "(Twist#") {
			got = append(got, op.String())
		}
	}
	assert.Equal(t, []string{
		"DeclarePort(Twist#1, output Geometry)",
		"DeclarePort(Twist#1, output Geometry[2])",
		"Expose(Twist#1, output Geometry[2])",
		"DeclarePort(Twist#2, input Geometry)",
		"DeclarePort(Twist#2, input Count)",
		"Expose(Twist#2, input Count)",
		"Adjust(Twist#3, Cases, 2)",
		"RenameSocket(Twist#3, input Case 1, Small)",
		"DeclarePort(Twist#3, input Index)",
		"DeclarePort(Twist#3, input Case 1)",
		"DeclarePort(Twist#3, input Case 2)",
		"DeclarePort(Twist#3, output Output)",
	}, got)
}

func TestExport_SocketDisplayNames(t *testing.T) {
	got, err := displayNames([]snapshot.Socket{{Name: "Value"}, {Name: ""}, {Name: "Value"}, {Name: " "}, {Name: "Value"}}, "input")
	require.NoError(t, err)
	assert.Equal(t, []string{"Value", "input", "Value[2]", "input[2]", "Value[3]"}, got)
}

func TestDeriveTypeName(t *testing.T) {
	tests := map[string]string{
		"GeometryNodeSetPosition":  "Set Position",
		"NodeGroupInput":           "Group Input",
		"GeometryNodeGroup":        "Group",
		"NodeReroute":              "Reroute",
		"FunctionNodeInputVector":  "Input Vector",
		"ShaderNodeBsdfPrincipled": "Bsdf Principled",
		"GeometryNodeMeshUVSphere": "Mesh UV Sphere",
		"GeometryNodeCurveArc":     "Curve Arc",
		"CustomThing":              "Custom Thing",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, deriveTypeName(in))
		})
	}
}

func TestExport_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *snapshot.Snapshot)
		errMsg string
	}{
		{
			name:   "pipe in type-name",
			mutate: func(s *snapshot.Snapshot) { s.Root.Nodes[0].TypeName = "Mesh | Grid" },
			errMsg: "type-name",
		},
		{
			name:   "bracket in variant",
			mutate: func(s *snapshot.Snapshot) { s.Root.Nodes[0].Variant = "A]" },
			errMsg: "variant",
		},
		{
			name:   "section mark in field",
			mutate: func(s *snapshot.Snapshot) { s.Root.Nodes[0].Values[0].Field = "Size § X" },
			errMsg: "cannot be written",
		},
		{
			name:   "whitespace in type-id",
			mutate: func(s *snapshot.Snapshot) { s.Root.Nodes[0].TypeID = "Geometry Node" },
			errMsg: "invalid type-id",
		},
		{
			name:   "unknown group",
			mutate: func(s *snapshot.Snapshot) { s.Root.Nodes[1].Group = "Missing" },
			errMsg: `unknown group "Missing"`,
		},
		{
			name: "labelled group node without group",
			mutate: func(s *snapshot.Snapshot) {
				s.Root.Nodes[1].Group = ""
				s.Root.Nodes[1].Label = "Twist"
			},
			errMsg: "has a label but no group",
		},
		{
			name:   "socket out of range",
			mutate: func(s *snapshot.Snapshot) { s.Root.Links[0].ToSocket = 3 },
			errMsg: "input socket 3 out of range",
		},
		{
			name:   "unknown link endpoint",
			mutate: func(s *snapshot.Snapshot) { s.Root.Links[0].From = "nope" },
			errMsg: "link source",
		},
		{
			name:   "untrimmed group name",
			mutate: func(s *snapshot.Snapshot) { s.Groups[0].Name = " Twist" },
			errMsg: "surrounding whitespace",
		},
		{
			name:   "glyph in socket name",
			mutate: func(s *snapshot.Snapshot) { s.Root.Nodes[0].Outputs[0].Name = "Mesh ○" },
			errMsg: "cannot be declared",
		},
		{
			name:   "line break in case label",
			mutate: func(s *snapshot.Snapshot) { s.Root.Nodes[0].Cases = []string{"a\nb"} },
			errMsg: "case 1",
		},
		{
			name:   "unencodable enum",
			mutate: func(s *snapshot.Snapshot) { s.Root.Nodes[0].Values[1].Live = value.Enum(" a©b") },
			errMsg: "Vertices X",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := sampleSnapshot()
			tc.mutate(s)
			_, err := Export(context.Background(), s)
			require.Error(t, err)
			var serr *SerializeError
			require.ErrorAs(t, err, &serr)
			assert.ErrorContains(t, err, tc.errMsg)
		})
	}
}

func TestExport_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Export(ctx, sampleSnapshot())
	assert.ErrorIs(t, err, context.Canceled)
}
