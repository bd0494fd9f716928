package app_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/bndl/internal/app"
	"github.com/vk/bndl/internal/compiler"
	"github.com/vk/bndl/internal/config"
	"github.com/vk/bndl/internal/parser"
	"github.com/vk/bndl/internal/plan"
	"github.com/vk/bndl/internal/testutil"
)

func opStrings(p *plan.Plan) []string {
	out := make([]string, len(p.Ops))
	for i, op := range p.Ops {
		out[i] = op.String()
	}
	return out
}

func TestCompile_UsesCache(t *testing.T) {
	h := testutil.NewHarness(t, nil)
	ctx := context.Background()

	p, cached, err := h.App.Compile(ctx, "twist.bndl", []byte(testutil.TwistSource), true)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, testutil.TwistOps, opStrings(p))

	again, cached, err := h.App.Compile(ctx, "twist.bndl", []byte(testutil.TwistSource), true)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, p, again)

	_, cached, err = h.App.Compile(ctx, "twist.bndl", []byte(testutil.TwistSource), false)
	require.NoError(t, err)
	assert.False(t, cached, "cache bypassed")
}

func TestCompile_PersistentCache(t *testing.T) {
	cacheDir := t.TempDir()
	ctx := context.Background()

	first := testutil.NewHarness(t, func(c *config.Config) { c.CacheDir = cacheDir })
	_, cached, err := first.App.Compile(ctx, "a", []byte(testutil.TwistSource), true)
	require.NoError(t, err)
	assert.False(t, cached)
	require.NoError(t, first.App.Close())

	second := testutil.NewHarness(t, func(c *config.Config) { c.CacheDir = cacheDir })
	_, cached, err = second.App.Compile(ctx, "a", []byte(testutil.TwistSource), true)
	require.NoError(t, err)
	assert.True(t, cached, "plan survives a restart")
}

func TestCompile_PassthroughChangesKey(t *testing.T) {
	cacheDir := t.TempDir()
	ctx := context.Background()

	first := testutil.NewHarness(t, func(c *config.Config) { c.CacheDir = cacheDir })
	_, _, err := first.App.Compile(ctx, "a", []byte(testutil.TwistSource), true)
	require.NoError(t, err)
	require.NoError(t, first.App.Close())

	second := testutil.NewHarness(t, func(c *config.Config) {
		c.CacheDir = cacheDir
		c.Passthrough = []string{"Frame"}
	})
	p, cached, err := second.App.Compile(ctx, "a", []byte(testutil.TwistSource), true)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Contains(t, opStrings(p), "CreateNode(#2, NodeReroute)")
}

func TestCompile_Errors(t *testing.T) {
	h := testutil.NewHarness(t, nil)

	_, _, err := h.App.Compile(context.Background(), "broken.bndl", []byte(testutil.BrokenSource), true)
	var perr *parser.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, perr.Line)
	assert.ErrorContains(t, err, "broken.bndl: line 2")

	src := "# BNDL v1\nCreate [ Group | — | Missing ] ~ ~ #1 ; type=GeometryNodeGroup\n"
	_, _, err = h.App.Compile(context.Background(), "missing.bndl", []byte(src), true)
	var cerr *compiler.CompileError
	assert.ErrorAs(t, err, &cerr)
}

func TestCompileFiles(t *testing.T) {
	h := testutil.NewHarness(t, func(c *config.Config) { c.Workers = 2 })
	paths := testutil.WriteFiles(t, h.Dir, map[string]string{
		"a.bndl":        testutil.TwistSource,
		"nested/b.bndl": testutil.TwistSource,
		"nested/c.bndl": testutil.BrokenSource,
		"readme.txt":    "ignored",
	})

	files, err := app.ExpandPaths([]string{h.Dir, paths["a.bndl"]})
	require.NoError(t, err)
	require.Equal(t, []string{paths["a.bndl"], paths["nested/b.bndl"], paths["nested/c.bndl"]}, files)

	results, err := h.App.CompileFiles(context.Background(), files, true)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.NoError(t, results[1].Err)
	assert.ErrorContains(t, results[2].Err, filepath.Join("nested", "c.bndl"))
}

func TestExpandPaths_Missing(t *testing.T) {
	_, err := app.ExpandPaths([]string{filepath.Join(t.TempDir(), "nope.bndl")})
	assert.Error(t, err)
}

func TestExportFile(t *testing.T) {
	h := testutil.NewHarness(t, nil)
	paths := testutil.WriteFiles(t, h.Dir, map[string]string{"snap.yaml": testutil.TwistSnapshot})

	out, err := h.App.ExportFile(context.Background(), paths["snap.yaml"])
	require.NoError(t, err)

	p, _, err := h.App.Compile(context.Background(), "exported", out, false)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"CreateNode(Twist#1, NodeGroupInput)",
		"CreateNode(Twist#2, NodeGroupOutput)",
		"DeclarePort(Twist#1, output Geometry)",
		"DeclarePort(Twist#2, input Geometry)",
		"Connect(Twist#1.Geometry, Twist#2.Geometry)",
		"CreateNode(#1, GeometryNodeMeshGrid)",
		"CreateNode(#2, GeometryNodeGroup)",
		"DeclarePort(#1, output Mesh)",
		"DeclarePort(#2, input Geometry)",
		"Connect(#1.Mesh, #2.Geometry)",
		"ApplyValue(#1, Size X, <2.5>)",
		"ApplyValue(#1, Vertices X, <3>)",
	}, opStrings(p))
}

func TestApply_Memory(t *testing.T) {
	h := testutil.NewHarness(t, nil)
	p, _, err := h.App.Compile(context.Background(), "twist", []byte(testutil.TwistSource), false)
	require.NoError(t, err)

	report, err := h.App.Apply(context.Background(), p, "")
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Len(t, report.Results, len(testutil.TwistOps))

	_, err = h.App.Apply(context.Background(), p, "blender")
	assert.ErrorContains(t, err, `unknown builder "blender"`)
	assert.Equal(t, []string{"memory", "remote"}, h.App.Builders().Names())
}
