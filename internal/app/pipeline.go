package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vk/bndl/internal/builder"
	"github.com/vk/bndl/internal/ctxlog"
	"github.com/vk/bndl/internal/exporter"
	"github.com/vk/bndl/internal/fsutil"
	"github.com/vk/bndl/internal/model"
	"github.com/vk/bndl/internal/parser"
	"github.com/vk/bndl/internal/plan"
	"github.com/vk/bndl/internal/planstore"
	"github.com/vk/bndl/internal/snapshot"
)

// SourceExt is the extension of BNDL files discovered in directories.
const SourceExt = ".bndl"

// CompileResult is the outcome of compiling one file.
type CompileResult struct {
	Path   string
	Plan   *plan.Plan
	Cached bool
	Err    error
}

// fingerprint identifies every setting that changes compiler output for the
// same source bytes.
func (a *App) fingerprint() string {
	return fmt.Sprintf("v%d;%s;units=%s", plan.FormatVersion, a.compiler.Fingerprint(), a.units.Fingerprint())
}

// Parse parses src. name is only used in errors.
func (a *App) Parse(ctx context.Context, name string, src []byte) (*model.Document, error) {
	start := time.Now()
	doc, err := parser.Parse(a.Context(ctx), bytes.NewReader(src), parser.WithUnits(a.units))
	a.metrics.observeStage("parse", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return doc, nil
}

// Compile parses and compiles src, consulting the plan cache when useCache
// is set and a cache is configured. The second result reports a cache hit.
func (a *App) Compile(ctx context.Context, name string, src []byte, useCache bool) (*plan.Plan, bool, error) {
	ctx = a.Context(ctx)
	logger := ctxlog.FromContext(ctx).With("source", name)

	var key string
	if useCache && a.store != nil {
		key = planstore.Key(src, a.fingerprint())
		p, ok, err := a.store.Get(ctx, key)
		switch {
		case err != nil:
			logger.Warn("Plan cache read failed, compiling.", "error", err)
			a.metrics.cacheTotal.WithLabelValues("error").Inc()
		case ok:
			logger.Debug("Plan served from cache.", "key", key)
			a.metrics.cacheTotal.WithLabelValues("hit").Inc()
			return p, true, nil
		default:
			a.metrics.cacheTotal.WithLabelValues("miss").Inc()
		}
	}

	doc, err := a.Parse(ctx, name, src)
	if err != nil {
		return nil, false, err
	}

	start := time.Now()
	p, err := a.compiler.Compile(ctx, doc)
	a.metrics.observeStage("compile", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", name, err)
	}
	a.metrics.planOps.Observe(float64(len(p.Ops)))

	if key != "" {
		if err := a.store.Put(ctx, key, p); err != nil {
			logger.Warn("Plan cache write failed.", "error", err)
		}
	}
	logger.Debug("Source compiled.", "ops", len(p.Ops))
	return p, false, nil
}

// CompileFile reads and compiles one file.
func (a *App) CompileFile(ctx context.Context, path string, useCache bool) CompileResult {
	res := CompileResult{Path: path}
	src, err := os.ReadFile(path)
	if err != nil {
		res.Err = err
		return res
	}
	res.Plan, res.Cached, res.Err = a.Compile(ctx, path, src, useCache)
	return res
}

// CompileFiles compiles paths concurrently, bounded by the configured
// worker count. Results are returned in input order; per-file failures are
// reported in the results, and the error is only set when ctx ends.
func (a *App) CompileFiles(ctx context.Context, paths []string, useCache bool) ([]CompileResult, error) {
	results := make([]CompileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = CompileResult{Path: path, Err: err}
				return err
			}
			results[i] = a.CompileFile(gctx, path, useCache)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// Export serializes a snapshot into BNDL text.
func (a *App) Export(ctx context.Context, snap *snapshot.Snapshot) ([]byte, error) {
	start := time.Now()
	out, err := exporter.Export(a.Context(ctx), snap)
	a.metrics.observeStage("export", time.Since(start).Seconds(), err)
	return out, err
}

// ExportFile loads a snapshot file and serializes it.
func (a *App) ExportFile(ctx context.Context, path string) ([]byte, error) {
	snap, err := snapshot.LoadFile(path)
	if err != nil {
		return nil, err
	}
	out, err := a.Export(ctx, snap)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// Apply runs p against the configured builder, or the builder named by
// override when it is not empty.
func (a *App) Apply(ctx context.Context, p *plan.Plan, override string) (*builder.Report, error) {
	ctx = a.Context(ctx)
	name := a.cfg.Builder.Name
	if override != "" {
		name = override
	}

	b, closeFn, err := a.builders.New(ctx, name, builder.Options{
		URL:       a.cfg.Builder.URL,
		Namespace: a.cfg.Builder.Namespace,
		Timeout:   a.cfg.Builder.Timeout,
	})
	if err != nil {
		return nil, err
	}
	if closeFn != nil {
		defer closeFn()
	}

	start := time.Now()
	report := builder.Run(ctx, b, p)
	var runErr error
	if !report.OK() {
		runErr = fmt.Errorf("%d operations failed", len(report.Failed()))
	}
	a.metrics.observeStage("apply", time.Since(start).Seconds(), runErr)
	return report, nil
}

// ExpandPaths replaces directories by the BNDL files below them. The result
// is sorted and free of duplicates.
func ExpandPaths(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, filepath.Clean(p))
			continue
		}
		found, err := fsutil.FindFilesByExtension(p, SourceExt)
		if err != nil {
			return nil, err
		}
		out = append(out, found...)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}
