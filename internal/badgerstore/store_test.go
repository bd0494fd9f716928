package badgerstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/bndl/internal/nodeid"
	"github.com/vk/bndl/internal/plan"
	"github.com/vk/bndl/internal/planstore"
	"github.com/vk/bndl/internal/value"
)

var _ planstore.Store = (*Store)(nil)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func samplePlan() *plan.Plan {
	p := plan.New()
	p.Append(
		plan.NewCreateNode(plan.CreateNode{Node: nodeid.New("Twist", 1), TypeID: "NodeGroupInput", TypeName: "Group Input"}),
		plan.NewApplyValue(plan.ApplyValue{Node: nodeid.New("Twist", 1), Field: "Angle", Value: value.Number(1.5), Layer: plan.LayerDefault}),
	)
	return p
}

func TestStore_GetPut(t *testing.T) {
	s := openInMemory(t)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	want := samplePlan()
	key := planstore.Key([]byte("src"), "fp")
	require.NoError(t, s.Put(ctx, key, want))

	got, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	require.NoError(t, s.Put(ctx, key, plan.New()))
	got, _, err = s.Get(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, got.Ops)

	n, err := s.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_Persistent(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(Config{Path: dir})
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "k", samplePlan()))
	require.NoError(t, s.Close())

	s, err = Open(Config{Path: dir})
	require.NoError(t, err)
	defer s.Close()

	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, samplePlan(), got)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.ErrorContains(t, err, "path is required")
}

func TestStore_Canceled(t *testing.T) {
	s := openInMemory(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Put(ctx, "k", samplePlan()), context.Canceled)
	_, _, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}
