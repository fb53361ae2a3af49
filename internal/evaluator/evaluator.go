// Package evaluator defines the capability boundary to the code evaluator
// and the per-module context injected into it.
//
// The evaluator executes a code string against an injected context and
// returns nothing: all observable output flows through side effects on the
// shared exports namespace. That contract is what lets circular importers
// see live, partially-populated bindings.
package evaluator

import (
	"context"

	"github.com/vk/modrunnergo/internal/record"
)

// ImportMetadata qualifies one import site, e.g. which named bindings the
// importer statically requested. It is threaded through the request path
// for interop validation.
type ImportMetadata struct {
	// ImportedNames lists the named bindings the import site destructures.
	ImportedNames []string
	// IsDynamicImport marks requests originating from a dynamic import.
	IsDynamicImport bool
}

// ImportFunc requests a module on behalf of the executing one.
type ImportFunc func(ctx context.Context, specifier string, meta *ImportMetadata) (any, error)

// Context is the injected evaluation context for one inline module.
type Context struct {
	// Exports is the module's namespace object, created empty before
	// execution begins and mutated in place by the module body.
	Exports *record.Namespace

	// Meta is the module's import-meta surface.
	Meta *ImportMeta

	// Import resolves a static import with this module as the caller.
	Import ImportFunc

	// DynamicImport additionally resolves relative specifiers against this
	// module's directory before delegating to the same import path.
	DynamicImport ImportFunc

	// ExportAll implements "export * from" semantics: it copies every
	// binding of source onto the module's exports as live accessors.
	ExportAll func(source any)
}

// Evaluator executes module code. A single instance serves the whole
// runtime; implementations must be safe for concurrent use.
type Evaluator interface {
	// RunInlinedModule executes a compiled module body against its
	// injected context. The return value of the body is discarded; results
	// are observed via the mutated exports namespace.
	RunInlinedModule(ctx context.Context, modCtx *Context, code, id string) error

	// RunExternalModule obtains the value of an externalized module from
	// the delegate target reference.
	RunExternalModule(ctx context.Context, target string) (any, error)
}
