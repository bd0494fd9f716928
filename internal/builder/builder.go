package builder

import (
	"context"
	"time"

	"github.com/vk/bndl/internal/ctxlog"
	"github.com/vk/bndl/internal/plan"
)

// Applier executes single build operations against a host graph.
type Applier interface {
	Apply(ctx context.Context, op plan.Operation) error
}

// Result is the outcome of one operation.
type Result struct {
	Index    int
	Op       plan.Operation
	Err      error
	Duration time.Duration
}

// Report collects the outcome of every operation of a plan, in plan order.
type Report struct {
	Results []Result
}

// Failed returns the results whose operation did not succeed.
func (r *Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// OK reports whether every operation succeeded.
func (r *Report) OK() bool {
	return len(r.Failed()) == 0
}

// Run applies the operations of p in order. Once ctx is done the remaining
// operations are recorded with the context error without being attempted.
func Run(ctx context.Context, a Applier, p *plan.Plan) *Report {
	logger := ctxlog.FromContext(ctx)
	report := &Report{Results: make([]Result, 0, len(p.Ops))}

	for i, op := range p.Ops {
		res := Result{Index: i, Op: op}
		if err := ctx.Err(); err != nil {
			res.Err = err
			report.Results = append(report.Results, res)
			continue
		}

		start := time.Now()
		res.Err = a.Apply(ctx, op)
		res.Duration = time.Since(start)
		if res.Err != nil {
			logger.Warn("Builder rejected operation", "index", i, "op", op.String(), "error", res.Err)
		}
		report.Results = append(report.Results, res)
	}

	logger.Debug("Plan applied", "ops", len(p.Ops), "failed", len(report.Failed()))
	return report
}
