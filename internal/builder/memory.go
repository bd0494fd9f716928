package builder

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/vk/bndl/internal/nodeid"
	"github.com/vk/bndl/internal/plan"
	"github.com/vk/bndl/internal/value"
)

var (
	// ErrUnknownNode is returned for an operation that names a node the
	// builder has not created.
	ErrUnknownNode = errors.New("unknown node")
	// ErrConflict is returned when an address is reused for a different node.
	ErrConflict = errors.New("conflicting node definition")
)

type memNode struct {
	create  plan.CreateNode
	values  map[string]value.Literal
	counts  map[string]int
	labels  map[string]string
	ports   []plan.DeclarePort
	exposed map[string]bool
}

// sideKey names a socket by side, e.g. `input Case 1`.
func sideKey(side, socket string) string {
	return side + " " + socket
}

type memLink struct {
	from       nodeid.Address
	fromSocket string
	to         nodeid.Address
	toSocket   string
}

// Memory is an in-memory reference builder. It owns the table from node
// address to constructed node. All methods are safe for concurrent use.
type Memory struct {
	mu    sync.Mutex
	nodes map[nodeid.Address]*memNode
	links map[memLink]bool
	zones map[nodeid.Address]nodeid.Address
}

// NewMemory creates an empty in-memory builder.
func NewMemory() *Memory {
	return &Memory{
		nodes: make(map[nodeid.Address]*memNode),
		links: make(map[memLink]bool),
		zones: make(map[nodeid.Address]nodeid.Address),
	}
}

// Apply implements Applier.
func (m *Memory) Apply(_ context.Context, op plan.Operation) error {
	if err := op.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	switch op.Kind {
	case plan.OpCreateNode:
		c := *op.Create
		if existing, ok := m.nodes[c.Node]; ok {
			if existing.create != c {
				return fmt.Errorf("%w at %s", ErrConflict, c.Node)
			}
			return nil
		}
		m.nodes[c.Node] = &memNode{
			create:  c,
			values:  make(map[string]value.Literal),
			counts:  make(map[string]int),
			labels:  make(map[string]string),
			exposed: make(map[string]bool),
		}

	case plan.OpPairZone:
		z := op.Zone
		if err := m.require(z.Input, z.Output); err != nil {
			return err
		}
		m.zones[z.Input] = z.Output

	case plan.OpConnect:
		c := op.Connect
		if err := m.require(c.From, c.To); err != nil {
			return err
		}
		key := memLink{from: c.From, fromSocket: c.FromSocket, to: c.To, toSocket: c.ToSocket}
		m.links[key] = m.links[key] || c.FieldLink

	case plan.OpApplyValue:
		a := op.Apply
		if err := m.require(a.Node); err != nil {
			return err
		}
		m.nodes[a.Node].values[a.Field] = a.Value

	case plan.OpAdjust:
		a := op.Adjust
		if err := m.require(a.Node); err != nil {
			return err
		}
		m.nodes[a.Node].counts[a.Field] = a.Count

	case plan.OpRenameSocket:
		r := op.Rename
		if err := m.require(r.Node); err != nil {
			return err
		}
		m.nodes[r.Node].labels[sideKey(r.Side, r.Socket)] = r.Label

	case plan.OpDeclarePort:
		d := *op.Port
		if err := m.require(d.Node); err != nil {
			return err
		}
		n := m.nodes[d.Node]
		for _, existing := range n.ports {
			if existing.Side != d.Side || existing.Name != d.Name {
				continue
			}
			if existing != d {
				return fmt.Errorf("%w: port %s of %s", ErrConflict, sideKey(d.Side, d.Name), d.Node)
			}
			return nil
		}
		n.ports = append(n.ports, d)

	case plan.OpExpose:
		e := op.Expose
		if err := m.require(e.Node); err != nil {
			return err
		}
		m.nodes[e.Node].exposed[sideKey(e.Side, e.Socket)] = true
	}
	return nil
}

func (m *Memory) require(addrs ...nodeid.Address) error {
	for _, a := range addrs {
		if _, ok := m.nodes[a]; !ok {
			return fmt.Errorf("%w %s", ErrUnknownNode, a)
		}
	}
	return nil
}

// NodeSummary describes one constructed node.
type NodeSummary struct {
	Address  string
	TypeID   string
	TypeName string
	Variant  string
	Label    string
	Group    string
	Values   map[string]string
	// The interface fields stay nil for nodes without one.
	Ports        []string
	Exposed      []string
	Counts       map[string]int
	SocketLabels map[string]string
}

// GraphSummary is a comparable, sorted view of the constructed graph.
type GraphSummary struct {
	Nodes []NodeSummary
	Links []string
	Zones []string
}

// Graph returns a summary of everything built so far.
func (m *Memory) Graph() GraphSummary {
	m.mu.Lock()
	defer m.mu.Unlock()

	addrs := make([]nodeid.Address, 0, len(m.nodes))
	for a := range m.nodes {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Less(addrs[j]) })

	var g GraphSummary
	for _, a := range addrs {
		n := m.nodes[a]
		s := NodeSummary{
			Address:  a.String(),
			TypeID:   n.create.TypeID,
			TypeName: n.create.TypeName,
			Variant:  n.create.Variant,
			Label:    n.create.Label,
			Group:    n.create.Group,
			Values:   make(map[string]string, len(n.values)),
		}
		for field, v := range n.values {
			s.Values[field] = v.String()
		}
		for _, d := range n.ports {
			s.Ports = append(s.Ports, sideKey(d.Side, d.Name))
		}
		for key := range n.exposed {
			s.Exposed = append(s.Exposed, key)
		}
		sort.Strings(s.Exposed)
		if len(n.counts) > 0 {
			s.Counts = maps.Clone(n.counts)
		}
		if len(n.labels) > 0 {
			s.SocketLabels = maps.Clone(n.labels)
		}
		g.Nodes = append(g.Nodes, s)
	}
	for l, field := range m.links {
		arrow := "->"
		if field {
			arrow = "~>"
		}
		g.Links = append(g.Links, fmt.Sprintf("%s.%s %s %s.%s", l.from, l.fromSocket, arrow, l.to, l.toSocket))
	}
	sort.Strings(g.Links)
	for in, out := range m.zones {
		g.Zones = append(g.Zones, fmt.Sprintf("%s <-> %s", in, out))
	}
	sort.Strings(g.Zones)
	return g
}
