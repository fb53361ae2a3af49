package runner

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/vk/modrunnergo/internal/evaluator"
	"github.com/vk/modrunnergo/internal/record"
)

// resolveDiagnosticThreshold is how long one module resolution may take
// before the debug sink reports the caller chain. Diagnostic only: nothing
// is aborted or retried.
const resolveDiagnosticThreshold = 2000 * time.Millisecond

// cachedRequest decides whether a request can be answered with the
// (possibly incomplete) cached exports immediately, joins an in-flight
// execution, or starts the single execution for this record.
//
// callstack is the ordered chain of module identities currently being
// executed, ancestor to descendant, shared across one root-level import
// and threaded through every nested request.
func (r *Runner) cachedRequest(ctx context.Context, url string, rec *record.Record, callstack []string, im *evaluator.ImportMetadata) (any, error) {
	moduleID := rec.ID()

	if r.detectCycle(moduleID, rec, callstack) {
		if exports, ok := rec.Exports(); ok {
			return r.processImport(rec, exports, im)
		}
		// No exports exist yet, so execution proceeds best-effort rather
		// than deadlocking. Partial results depend on import ordering.
	}

	if importee := lastEntry(callstack); importee != "" {
		rec.AddImporter(importee)
	}

	if r.debug != nil {
		chain := strings.Join(append(slices.Clone(callstack), moduleID), " -> ")
		timer := time.AfterFunc(resolveDiagnosticThreshold, func() {
			r.debug.Warn("Module resolution is taking longer than expected.",
				"moduleID", moduleID, "callChain", chain)
		})
		defer timer.Stop()
	}

	// The future is attached before anything awaits, so concurrent
	// requests arriving during execution observe it instead of starting a
	// duplicate.
	fut, started := rec.StartExecution()
	if !started {
		exports, err := fut.Await(ctx)
		if err != nil {
			return nil, err
		}
		return r.processImport(rec, exports, im)
	}

	exports, err := r.directRequest(ctx, url, rec, callstack)
	fut.Resolve(exports, err)
	rec.SetEvaluated(true)
	if err != nil {
		return nil, err
	}
	return r.processImport(rec, exports, im)
}

// detectCycle applies the three cycle checks in priority order: direct
// re-entry within the active resolution chain, a materialized 2-node
// cycle, and a transitive search over the importer edges.
func (r *Runner) detectCycle(moduleID string, rec *record.Record, callstack []string) bool {
	if slices.Contains(callstack, moduleID) {
		return true
	}
	if isCircularModule(rec) {
		return true
	}
	return r.isCircularImport(rec.Importers(), moduleID, make(map[string]bool))
}

// isCircularModule reports a 2-node cycle: the module both imports and is
// imported by the same neighbor. The persisted edge sets make this
// detectable across separate resolution chains.
func isCircularModule(rec *record.Record) bool {
	for _, imported := range rec.Imports() {
		if rec.HasImporter(imported) {
			return true
		}
	}
	return false
}

// isCircularImport walks the importer edges depth-first looking for
// moduleID. The visited set keeps already-traversed importer sets from
// recursing without bound.
func (r *Runner) isCircularImport(importers []string, moduleID string, visited map[string]bool) bool {
	for _, importer := range importers {
		if visited[importer] {
			continue
		}
		visited[importer] = true
		if importer == moduleID {
			return true
		}
		if rec, ok := r.store.Lookup(importer); ok {
			if r.isCircularImport(rec.Importers(), moduleID, visited) {
				return true
			}
		}
	}
	return false
}

func lastEntry(callstack []string) string {
	if len(callstack) == 0 {
		return ""
	}
	return callstack[len(callstack)-1]
}
