package compiler

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/bndl/internal/ctxlog"
	"github.com/vk/bndl/internal/dag"
	"github.com/vk/bndl/internal/model"
	"github.com/vk/bndl/internal/nodeid"
	"github.com/vk/bndl/internal/plan"
)

// Compiler turns documents into plans. It holds no per-document state and
// is safe for concurrent use.
type Compiler struct {
	passthrough map[string]bool
}

// New creates a Compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{}
	WithPassthrough(DefaultPassthrough...)(c)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsPassthrough reports whether n is collapsed out of the plan.
func (c *Compiler) IsPassthrough(n model.Node) bool {
	return c.passthrough[n.TypeID] || c.passthrough[n.TypeName]
}

// Compile lowers doc into a plan. The same document always yields the same
// plan.
func (c *Compiler) Compile(ctx context.Context, doc *model.Document) (*plan.Plan, error) {
	logger := ctxlog.FromContext(ctx)
	g := doc.Graph

	order, err := c.scopeOrder(g)
	if err != nil {
		return nil, err
	}

	p := plan.New()
	for _, name := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s, _ := g.Scope(name)
		if err := c.emitScope(p, s, doc.Overrides.Scope(name)); err != nil {
			return nil, err
		}
	}

	stats := p.Stats()
	logger.Debug("Compile: plan generated",
		"scopes", len(order),
		"ops", stats.Total(),
		"create", stats.CreateNode,
		"connect", stats.Connect,
		"apply", stats.ApplyValue,
		"interface", stats.Interface,
	)
	return p, nil
}

// scopeOrder resolves group references and returns the scope emission order.
func (c *Compiler) scopeOrder(g *model.Graph) ([]string, error) {
	scopes := append([]*model.Scope{g.Root()}, g.Groups()...)

	deps := dag.New()
	for _, s := range scopes {
		deps.AddNode(s.Name())
	}

	// instantiator remembers one node per edge for cycle reports.
	instantiator := make(map[[2]string]nodeid.Address)
	for _, s := range scopes {
		for _, n := range s.Nodes() {
			if !n.IsGroupInstance() || c.IsPassthrough(n) {
				continue
			}
			if _, ok := g.Scope(n.GroupRef); !ok {
				return nil, &CompileError{Node: n.Addr, Msg: fmt.Sprintf("undefined group %q", n.GroupRef)}
			}
			if !g.Visible(s.Name(), n.GroupRef) {
				return nil, &CompileError{Node: n.Addr, Msg: fmt.Sprintf("group %q is not visible from %s", n.GroupRef, scopeLabel(s.Name()))}
			}
			if n.GroupRef == s.Name() {
				return nil, &CompileError{Node: n.Addr, Msg: fmt.Sprintf("group %q instantiates itself", n.GroupRef)}
			}
			if err := deps.AddEdge(n.GroupRef, s.Name()); err != nil {
				return nil, fmt.Errorf("failed to record instantiation of %q: %w", n.GroupRef, err)
			}
			edge := [2]string{n.GroupRef, s.Name()}
			if _, ok := instantiator[edge]; !ok {
				instantiator[edge] = n.Addr
			}
		}
	}

	if err := deps.DetectCycles(); err != nil {
		var cycle *dag.CycleError
		if errors.As(err, &cycle) && len(cycle.Path) > 1 {
			at := instantiator[[2]string{cycle.Path[0], cycle.Path[1]}]
			return nil, &CompileError{Node: at, Msg: "group instantiation cycle", Err: err}
		}
		return nil, err
	}

	var order []string
	emitted := make(map[string]bool, len(scopes))
	var visit func(name string) error
	visit = func(name string) error {
		if emitted[name] {
			return nil
		}
		emitted[name] = true
		used, err := deps.Dependencies(name)
		if err != nil {
			return err
		}
		for _, group := range used {
			if err := visit(group); err != nil {
				return err
			}
		}
		order = append(order, name)
		return nil
	}
	for _, s := range scopes {
		if err := visit(s.Name()); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func scopeLabel(name string) string {
	if name == nodeid.RootScope {
		return "the top level"
	}
	return fmt.Sprintf("group %q", name)
}
