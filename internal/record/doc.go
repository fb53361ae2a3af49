// Package record defines the module record data model: one record per
// resolved module identity, the mutable namespace object its execution
// populates, and the single-flight future guarding that execution.
//
// # Why Records Are Mutable
//
// Circular importers must be able to observe partially-initialized modules.
// The namespace object is therefore created empty before execution begins,
// mutated in place while the module body runs, and shared by reference with
// every importer. It is never replaced for the lifetime of the record.
//
// # Ownership
//
// Records are owned by a recordstore.Store. The fetch coordinator populates
// Meta, the request scheduler grows the importer edge set and attaches the
// execution future, and the execution adapter assigns the exports object and
// flips the evaluated flag. Records are destroyed only by an explicit
// invalidate or clear, never implicitly.
package record
