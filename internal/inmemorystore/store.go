package inmemorystore

import (
	"context"
	"fmt"
	"sync"

	"github.com/vk/bndl/internal/plan"
	"github.com/vk/bndl/internal/planstore"
)

// Store is an in-memory implementation of planstore.Store.
type Store struct {
	plans sync.Map // Key: cache key, Value: msgpack-encoded plan
}

// New creates a new, empty in-memory plan store.
func New() planstore.Store {
	return &Store{}
}

// Get retrieves a cached plan. A missing key is not an error.
func (s *Store) Get(ctx context.Context, key string) (*plan.Plan, bool, error) {
	raw, ok := s.plans.Load(key)
	if !ok {
		return nil, false, nil
	}
	p, err := plan.UnmarshalMsgpack(raw.([]byte))
	if err != nil {
		return nil, false, fmt.Errorf("cached plan %s: %w", key, err)
	}
	return p, true, nil
}

// Put stores a copy of p.
func (s *Store) Put(ctx context.Context, key string, p *plan.Plan) error {
	raw, err := plan.MarshalMsgpack(p)
	if err != nil {
		return err
	}
	s.plans.Store(key, raw)
	return nil
}
