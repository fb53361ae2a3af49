// Package runner coordinates module resolution, caching, and execution.
//
// # Why Runner Exists
//
// The hard part of a client-side module runtime is not evaluating code, it
// is the request/cache/execution coordination around it: reconciling URL
// identity with content identity, deduplicating concurrent fetches for the
// same module, detecting circular import chains mid-resolution, and
// guaranteeing exactly one execution per resolved identity no matter how
// many concurrent import chains reference it.
//
// # Control Flow
//
// Import(url) → identity normalization (moduleid) → fetch coordination
// (transport round trip, record population) → circular-safe request
// scheduling (cycle checks against the live import/importer graph, single
// flight) → execution adaptation (injected context, evaluator delegation)
// → export-shape adjustment on the return path.
//
// # Concurrency
//
// All correctness-bearing shared-state writes (edge insertion, future
// attachment) are atomic check-and-set operations performed before any
// blocking point in their operation, so no request ever observes a
// half-written record. The execution future is attached to the record
// before it is awaited: any request arriving while execution is pending
// joins the same future instead of re-triggering execution or re-fetching.
//
// There is no cooperative cancellation of an in-flight execution. Pending
// work is discarded, not cancelled, by invalidating the store or
// destroying the runner; after destruction every operation fails
// immediately.
package runner
