// Package inmemorystore provides an ephemeral, thread-safe, in-memory
// implementation of the planstore.Store interface.
//
// # Characteristics
//
//   - **Ephemeral:** lives as long as the process; used by `bndl serve` and watch mode
//   - **Thread-Safe:** uses sync.Map, so concurrent compilations of different files never contend
//   - **Isolated:** plans are stored msgpack-encoded, so callers can never mutate a cached plan
//
// For caching across runs use internal/badgerstore.
package inmemorystore
