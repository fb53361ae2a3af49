// Package inmemorystore provides an ephemeral, thread-safe, in-memory
// implementation of the recordstore.Store interface.
//
// # Characteristics
//
//   - Ephemeral: created fresh per runner, not persistent across runs
//   - Thread-safe: a single RWMutex guards the identity map; per-record
//     state carries its own lock inside the record package
//   - Identity-stable: GetByIdentity for the same canonical location always
//     returns the same *record.Record pointer until an explicit Clear
//
// For a runtime whose module graph must survive process restarts, a
// different implementation (backed by a persistent keyed store) would be
// needed; nothing in the runner assumes this one.
package inmemorystore

import (
	"strings"
	"sync"

	"github.com/vk/modrunnergo/internal/record"
	"github.com/vk/modrunnergo/internal/recordstore"
)

// fsPassthroughPrefix marks URLs that address files outside the server
// root. It is stripped during identity normalization.
const fsPassthroughPrefix = "/@fs/"

// Store is an in-memory recordstore.Store keyed by canonical identity.
type Store struct {
	root string

	mu      sync.RWMutex
	records map[string]*record.Record
}

// New creates an empty store rooted at the given directory. The root is
// stripped from file-derived identities during normalization.
func New(root string) recordstore.Store {
	return &Store{
		root:    strings.TrimSuffix(root, "/"),
		records: make(map[string]*record.Record),
	}
}

// GetByIdentity returns the record for id, creating it on first miss.
func (s *Store) GetByIdentity(id string) *record.Record {
	id = s.Normalize(id)

	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()
	if ok {
		return rec
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[id]; ok {
		return rec
	}
	rec = record.NewRecord(id)
	s.records[id] = rec
	return rec
}

// Lookup returns the record for id without creating one.
func (s *Store) Lookup(id string) (*record.Record, bool) {
	id = s.Normalize(id)
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	return rec, ok
}

// Normalize canonicalizes a file-derived identity.
func (s *Store) Normalize(fileID string) string {
	id := strings.ReplaceAll(fileID, "\\", "/")
	if strings.HasPrefix(id, fsPassthroughPrefix) {
		id = id[len(fsPassthroughPrefix)-1:]
	}
	if s.root != "" && strings.HasPrefix(id, s.root+"/") {
		id = id[len(s.root):]
	}
	for strings.HasPrefix(id, "//") {
		id = id[1:]
	}
	return id
}

// Invalidate resets a record's execution state in place.
func (s *Store) Invalidate(rec *record.Record) {
	rec.Reset()
}

// Clear drops every record.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]*record.Record)
}

// Len reports the number of live records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
