package record

import (
	"sync"

	"github.com/vk/modrunnergo/internal/transport"
)

// Record is the per-identity module state. All mutation is concurrency-safe;
// the correctness-bearing writes (edge insertion, future attachment) are
// atomic check-and-set operations so no request observes a half-written
// record.
type Record struct {
	id string

	mu        sync.Mutex
	url       string
	file      string
	meta      *transport.FetchResult
	exports   any
	hasExport bool
	imports   map[string]struct{}
	importers map[string]struct{}
	future    *Future
	evaluated bool
	interop   *Namespace
}

// NewRecord creates an empty record for a canonical module identity.
func NewRecord(id string) *Record {
	return &Record{
		id:        id,
		imports:   make(map[string]struct{}),
		importers: make(map[string]struct{}),
	}
}

// ID returns the canonical module identity. It is stable once assigned.
func (r *Record) ID() string { return r.id }

// SetURL records the request URL the record was first reached through.
func (r *Record) SetURL(url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.url == "" {
		r.url = url
	}
}

// URL returns the first request URL seen for this record.
func (r *Record) URL() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.url
}

// SetMeta attaches the fetch result for this module.
func (r *Record) SetMeta(meta *transport.FetchResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.meta = meta
	if meta != nil && meta.File != "" {
		r.file = meta.File
	}
}

// Meta returns the fetch result, or nil before the first fetch completes.
func (r *Record) Meta() *transport.FetchResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.meta
}

// File returns the originating file path, when the transport reported one.
func (r *Record) File() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.file
}

// SetExports assigns the exports object. It is assigned before execution
// starts and shared by reference with every importer; invalidation is the
// only way it is ever cleared.
func (r *Record) SetExports(exports any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exports = exports
	r.hasExport = true
}

// Exports returns the exports object and whether one has been assigned.
func (r *Record) Exports() (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exports, r.hasExport
}

// AddImport records a dependency edge: this module requested id.
func (r *Record) AddImport(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.imports[id] = struct{}{}
}

// AddImporter records a reverse edge: id requested this module.
func (r *Record) AddImporter(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.importers[id] = struct{}{}
}

// HasImport reports whether id is in this module's dependency set.
func (r *Record) HasImport(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.imports[id]
	return ok
}

// HasImporter reports whether id has requested this module.
func (r *Record) HasImporter(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.importers[id]
	return ok
}

// Imports returns a snapshot of the dependency edge set.
func (r *Record) Imports() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return setSnapshot(r.imports)
}

// Importers returns a snapshot of the reverse edge set.
func (r *Record) Importers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return setSnapshot(r.importers)
}

// StartExecution attaches a fresh future if no execution is in flight.
// It returns the record's future and whether the caller won the start: a
// false result means another request already holds the execution and the
// caller must await the returned future instead.
func (r *Record) StartExecution() (*Future, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.future != nil {
		return r.future, false
	}
	r.future = NewFuture()
	r.evaluated = false
	return r.future, true
}

// Future returns the in-flight or settled execution future, if any.
func (r *Record) Future() *Future {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.future
}

// SetEvaluated flips the evaluated flag. It becomes true only after the
// execution future settles, success or failure alike.
func (r *Record) SetEvaluated(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evaluated = v
}

// Evaluated reports whether the execution future has settled.
func (r *Record) Evaluated() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.evaluated
}

// InteropNamespace returns the commonjs interop view of a raw exports
// value: a namespace carrying "default" plus live copies of every named
// binding. The view is built once per record so every caller receives the
// same instance.
func (r *Record) InteropNamespace(raw any) *Namespace {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.interop == nil {
		ns := NewNamespace()
		_ = ns.Set("default", raw)
		ExportAll(ns, raw)
		r.interop = ns
	}
	return r.interop
}

// Reset clears all execution state ahead of repopulation: meta, exports,
// future, evaluated flag, and both edge sets. The identity survives.
func (r *Record) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.meta = nil
	r.exports = nil
	r.hasExport = false
	r.future = nil
	r.evaluated = false
	r.interop = nil
	r.imports = make(map[string]struct{})
	r.importers = make(map[string]struct{})
}

func setSnapshot(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
