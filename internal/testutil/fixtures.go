package testutil

// TwistSource is a small document with one group, one instance, a value
// override and a reroute.
const TwistSource = `# BNDL v1
# === GROUP DEFINITIONS ===
BEGIN GROUP NAMED Twist
Create  [ Group Input | — | ] ~ ~ #1 ; type=NodeGroupInput
Create  [ Group Output | — | ] ~ ~ #2 ; type=NodeGroupOutput
Connect  [ Group Input #1 ] ○ § Geometry §  to  [ Group Output #2 ] ⦿ § Geometry §
END GROUP NAMED Twist

# === TOP LEVEL ===
Create  [ Mesh Grid | — | ] ~ base ~ #1 ; type=GeometryNodeMeshGrid
Create  [ Reroute | — | ] ~ ~ #2 ; type=NodeReroute
Create  [ Group | — | Twist ] ~ ~ #3 ; type=GeometryNodeGroup
Set  [ Mesh Grid #1 ]:
§ Size X § to <1>
§ Vertices X § to <3>
Connect  [ Mesh Grid #1 ] ○ § Mesh §  to  [ Reroute #2 ] ⦿ § Input §
Connect  [ Reroute #2 ] ○ § Output §  to  [ Group #3 ] ⦿ § Geometry §

# === USER OVERRIDES ===
SetUser  [ Mesh Grid #1 ]:
§ Size X § to <2.5>
`

// TwistOps is the compiled form of TwistSource, one op per line.
var TwistOps = []string{
	"CreateNode(Twist#1, NodeGroupInput)",
	"CreateNode(Twist#2, NodeGroupOutput)",
	"Connect(Twist#1.Geometry, Twist#2.Geometry)",
	"CreateNode(#1, GeometryNodeMeshGrid)",
	"CreateNode(#3, GeometryNodeGroup)",
	"Connect(#1.Mesh, #3.Geometry)",
	"ApplyValue(#1, Size X, <2.5>)",
	"ApplyValue(#1, Vertices X, <3>)",
}

// BrokenSource fails to parse on line 2.
const BrokenSource = "# BNDL v1\nCraete [ X | — | ] ~ ~ #1 ; type=X\n"

// TwistSnapshot is a YAML snapshot that exports to a document equivalent
// to TwistSource without the reroute.
const TwistSnapshot = `groups:
  - name: Twist
    nodes:
      - {key: in, type_id: NodeGroupInput, outputs: [{name: Geometry}]}
      - {key: out, type_id: NodeGroupOutput, inputs: [{name: Geometry}]}
    links:
      - {from: in, from_socket: 0, to: out, to_socket: 0}
root:
  nodes:
    - key: grid
      type_id: GeometryNodeMeshGrid
      label: base
      outputs: [{name: Mesh}]
      values:
        - {field: Size X, default: "<1>", live: "<2.5>"}
        - {field: Vertices X, live: 3}
    - {key: twist, type_id: GeometryNodeGroup, group: Twist, inputs: [{name: Geometry}]}
  links:
    - {from: grid, from_socket: 0, to: twist, to_socket: 0}
`
