package compiler

import (
	"errors"
	"fmt"
	"sort"

	"github.com/vk/bndl/internal/dag"
	"github.com/vk/bndl/internal/model"
	"github.com/vk/bndl/internal/nodeid"
	"github.com/vk/bndl/internal/plan"
)

// emitScope appends every operation of one scope.
func (c *Compiler) emitScope(p *plan.Plan, s *model.Scope, overrides *model.ValueLayer) error {
	nodes := s.Nodes()
	pass := make(map[nodeid.Address]bool)
	for _, n := range nodes {
		if c.IsPassthrough(n) {
			pass[n.Addr] = true
		}
	}

	for _, n := range nodes {
		if pass[n.Addr] {
			continue
		}
		p.Append(plan.NewCreateNode(plan.CreateNode{
			Node:     n.Addr,
			TypeID:   n.TypeID,
			TypeName: n.TypeName,
			Variant:  n.Variant,
			Label:    n.Label,
			Group:    n.GroupRef,
		}))
	}

	for _, n := range nodes {
		if !pass[n.Addr] {
			p.Append(interfaceOps(n)...)
		}
	}

	for _, z := range s.Zones() {
		if pass[z.Input] || pass[z.Output] {
			continue
		}
		p.Append(plan.NewPairZone(plan.PairZone{Input: z.Input, Output: z.Output}))
	}

	links, err := collapseLinks(s.Connections(), pass)
	if err != nil {
		return err
	}
	for _, l := range links {
		p.Append(plan.NewConnect(l))
	}

	for _, n := range nodes {
		if pass[n.Addr] {
			continue
		}
		for _, a := range mergeValues(s.Defaults().ForNode(n.Addr), overrides.ForNode(n.Addr)) {
			p.Append(plan.NewApplyValue(a))
		}
	}
	return nil
}

// interfaceOps lowers the socket interface of n. Socket counts come first
// so that renames and declarations can name the sockets they add.
func interfaceOps(n model.Node) []plan.Operation {
	var ops []plan.Operation
	for _, a := range n.Adjustments {
		ops = append(ops, plan.NewAdjust(plan.Adjust{Node: n.Addr, Field: a.Field, Count: a.Count}))
	}
	for _, l := range n.SocketLabels {
		ops = append(ops, plan.NewRenameSocket(plan.RenameSocket{
			Node:   n.Addr,
			Side:   side(l.Socket.Direction),
			Socket: l.Socket.Field,
			Label:  l.Label,
		}))
	}
	for _, port := range n.Ports {
		ops = append(ops, plan.NewDeclarePort(plan.DeclarePort{
			Node:   n.Addr,
			Side:   side(port.Direction),
			Name:   port.Name,
			Socket: port.Socket,
		}))
	}
	for _, e := range n.Exposed {
		ops = append(ops, plan.NewExpose(plan.Expose{Node: n.Addr, Side: side(e.Direction), Socket: e.Field}))
	}
	return ops
}

func side(d model.Direction) string {
	if d == model.Output {
		return plan.SideOutput
	}
	return plan.SideInput
}

// collapseLinks drops links into pass-through nodes and rewrites links out of
// them to their real upstream source. Duplicates are kept once.
func collapseLinks(conns []model.Connection, pass map[nodeid.Address]bool) ([]plan.Connect, error) {
	if err := checkPassthroughCycles(conns, pass); err != nil {
		return nil, err
	}

	// incoming holds the first declared link into each pass-through node.
	incoming := make(map[nodeid.Address]model.Socket)
	for _, conn := range conns {
		if pass[conn.To.Node] {
			if _, ok := incoming[conn.To.Node]; !ok {
				incoming[conn.To.Node] = conn.From
			}
		}
	}

	type linkKey struct {
		from, to         nodeid.Address
		fromSock, toSock string
	}
	seen := make(map[linkKey]bool)
	var out []plan.Connect

	for _, conn := range conns {
		if pass[conn.To.Node] {
			continue
		}
		src := conn.From
		for pass[src.Node] {
			up, ok := incoming[src.Node]
			if !ok {
				break
			}
			src = up
		}
		if pass[src.Node] {
			continue
		}

		k := linkKey{from: src.Node, to: conn.To.Node, fromSock: src.Field, toSock: conn.To.Field}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, plan.Connect{
			From:       src.Node,
			FromSocket: src.Field,
			To:         conn.To.Node,
			ToSocket:   conn.To.Field,
			FieldLink:  conn.FieldLink,
		})
	}
	return out, nil
}

// checkPassthroughCycles rejects links that form a loop of pass-through nodes.
func checkPassthroughCycles(conns []model.Connection, pass map[nodeid.Address]bool) error {
	g := dag.New()
	for _, conn := range conns {
		from, to := conn.From.Node, conn.To.Node
		if !pass[from] || !pass[to] {
			continue
		}
		if from == to {
			return &CompileError{Node: from, Msg: "pass-through node is linked to itself"}
		}
		g.AddNode(from.String())
		g.AddNode(to.String())
		if err := g.AddEdge(from.String(), to.String()); err != nil {
			return fmt.Errorf("failed to record pass-through link: %w", err)
		}
	}

	err := g.DetectCycles()
	var cycle *dag.CycleError
	if errors.As(err, &cycle) {
		at, perr := nodeid.Parse(cycle.Path[0])
		if perr != nil {
			return fmt.Errorf("pass-through cycle %v: %w", cycle.Path, perr)
		}
		return &CompileError{Node: at, Msg: "pass-through cycle", Err: err}
	}
	return err
}

// mergeValues picks one value per field, preferring the user layer, ordered
// by the line each field was first assigned on.
func mergeValues(defaults, user []model.Assignment) []plan.ApplyValue {
	type field struct {
		line int
		seq  int
		a    model.Assignment
	}
	fields := make(map[string]*field)
	var order []*field

	for _, a := range defaults {
		f := &field{line: a.Line, seq: len(order), a: a}
		fields[a.Field] = f
		order = append(order, f)
	}
	for _, a := range user {
		if f, ok := fields[a.Field]; ok {
			f.a = a
			if a.Line < f.line {
				f.line = a.Line
			}
			continue
		}
		f := &field{line: a.Line, seq: len(order), a: a}
		fields[a.Field] = f
		order = append(order, f)
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].line != order[j].line {
			return order[i].line < order[j].line
		}
		return order[i].seq < order[j].seq
	})

	out := make([]plan.ApplyValue, len(order))
	for i, f := range order {
		layer := plan.LayerDefault
		if f.a.Layer == model.LayerUser {
			layer = plan.LayerUser
		}
		out[i] = plan.ApplyValue{Node: f.a.Node, Field: f.a.Field, Value: f.a.Value, Layer: layer}
	}
	return out
}
