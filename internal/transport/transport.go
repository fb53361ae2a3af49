// Package transport defines the capability boundary between the module
// runner and whatever turns a URL into compiled code. The runner consumes
// this interface; the network or IPC mechanics behind it live elsewhere.
package transport

import "context"

// ResultKind discriminates the FetchResult tagged union.
type ResultKind int

const (
	// KindCache means the transport has nothing newer: the previously
	// resolved record must be reused as-is. Reporting a cache hit for a URL
	// with no prior record is a protocol violation.
	KindCache ResultKind = iota
	// KindExternalize means the module's content must not be executed by
	// this runtime; its value comes from the evaluator's external-module
	// capability instead.
	KindExternalize
	// KindInline carries compiled code for execution in this runtime.
	KindInline
)

// String implements fmt.Stringer for log output.
func (k ResultKind) String() string {
	switch k {
	case KindCache:
		return "cache"
	case KindExternalize:
		return "externalize"
	case KindInline:
		return "inline"
	default:
		return "unknown"
	}
}

// ModuleType classifies an externalized or inline module for interop
// purposes.
type ModuleType string

const (
	TypeModule   ModuleType = "module"
	TypeCommonJS ModuleType = "commonjs"
	TypeBuiltin  ModuleType = "builtin"
)

// FetchResult is the transport's answer for one module URL.
type FetchResult struct {
	Kind ResultKind

	// Externalize is the delegate target reference (KindExternalize only).
	Externalize string

	// Type is the module kind for interop handling.
	Type ModuleType

	// Code is the compiled module body (KindInline only). An empty body is
	// a load failure: the transport always ships at least the export
	// scaffolding for a real module.
	Code string

	// File is the originating file path of an inline module, when known.
	// Module identity derives from it in preference to the request URL.
	File string

	// Invalidate requests that any previously cached state for this
	// identity be discarded before the new result is attached.
	Invalidate bool
}

// FetchOptions qualifies a fetch request.
type FetchOptions struct {
	// Cached tells the transport a resolved record already exists for this
	// URL, making the request a cache revalidation rather than a cold
	// fetch. The transport may answer KindCache to skip recompilation.
	Cached bool
}

// Transport obtains the compiled or externalized representation of a
// module. Implementations must be safe for concurrent use.
type Transport interface {
	FetchModule(ctx context.Context, url, importer string, opts FetchOptions) (FetchResult, error)
}
