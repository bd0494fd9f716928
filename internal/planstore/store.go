// Package planstore defines the cache for compiled build plans.
//
// A plan is cached under a key derived from the exact source bytes and the
// compiler fingerprint (pass-through list and unit table), so a change to
// either produces a different key and stale plans are never served.
//
// Implementations:
//   - internal/inmemorystore: per-process cache backed by sync.Map
//   - internal/badgerstore: persistent cache backed by BadgerDB
package planstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/vk/bndl/internal/plan"
)

// Store caches compiled plans.
//
// Implementations MUST be safe for concurrent use, as batch compilation
// reads and writes the cache from several goroutines.
type Store interface {
	// Get returns the plan cached under key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) (*plan.Plan, bool, error)
	// Put caches p under key, replacing any previous entry.
	Put(ctx context.Context, key string, p *plan.Plan) error
}

// Key derives the cache key for source compiled under fingerprint.
func Key(source []byte, fingerprint string) string {
	h := sha256.New()
	h.Write(source)
	h.Write([]byte{0})
	h.Write([]byte(fingerprint))
	return hex.EncodeToString(h.Sum(nil))
}
