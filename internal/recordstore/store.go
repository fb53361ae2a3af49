// Package recordstore defines the interface for the keyed store of module
// records.
//
// # Why Record Store Exists
//
// The store isolates record ownership and identity canonicalization from
// the runner's coordination logic. The runner decides *when* a record is
// fetched, executed, or invalidated; the store decides *which* record a
// canonical identity maps to and guarantees that re-fetching the same
// location updates the same record rather than forking a duplicate.
//
// # Lifecycle
//
// A record is created on first lookup miss, populated by the fetch
// coordinator, mutated by the scheduler and execution adapter, and
// destroyed only by an explicit Invalidate or Clear driven by hot reload or
// runtime teardown.
package recordstore

import "github.com/vk/modrunnergo/internal/record"

// Store is the keyed store of per-module state.
//
// Implementations MUST be safe for concurrent use: requests for different
// modules resolve in parallel and all race on the identity map.
type Store interface {
	// GetByIdentity returns the record for a canonical module identity,
	// creating an empty one on first miss. The identity is normalized via
	// Normalize before lookup, so decorated spellings of the same location
	// land on the same record.
	GetByIdentity(id string) *record.Record

	// Lookup returns the record for an identity without creating one.
	// Graph traversals use it so cycle detection never forges nodes.
	Lookup(id string) (*record.Record, bool)

	// Normalize canonicalizes a file-derived identity: separators unified,
	// filesystem-passthrough prefixes stripped, the configured root
	// removed so identities stay server-rooted.
	Normalize(fileID string) string

	// Invalidate clears a record's execution state (meta, exports, future,
	// evaluated flag, edges) while preserving its identity, so the next
	// fetch repopulates the same record.
	Invalidate(rec *record.Record)

	// Clear drops every record.
	Clear()

	// Len reports the number of live records.
	Len() int
}
