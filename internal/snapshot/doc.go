// Package snapshot reads Graph-Snapshots: a host-neutral description of a
// live node graph as produced by a source graph reader.
//
// A snapshot file is YAML (JSON is accepted as a YAML subset). Parameter
// values use BNDL literal syntax:
//
//	root:
//	  nodes:
//	    - key: Group Input
//	      type_id: NodeGroupInput
//	      outputs: [{name: Geometry}, {name: Scale}]
//	      values:
//	        - field: Scale
//	          default: <1.0>
//	          live: <2.0>
//
// Nodes are numbered by their position in their tree, starting at 1.
package snapshot
