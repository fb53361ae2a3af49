package runner

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/vk/modrunnergo/internal/moduleid"
	"github.com/vk/modrunnergo/internal/record"
	"github.com/vk/modrunnergo/internal/transport"
)

// dataURIPrefix marks inlined constant imports that never reach the
// transport.
const dataURIPrefix = "data:"

// fetchFlight is the in-flight fetch for one URL. Concurrent requests for
// the same URL join the first one instead of hitting the transport again.
type fetchFlight struct {
	done chan struct{}
	rec  *record.Record
	err  error
}

// fetchModule obtains the fetch result for a URL exactly once per cache
// generation, assigns the stable module identity derived from the content
// location, and records the URL→identity cross references. Concurrent
// calls for one URL share a single transport round trip.
func (r *Runner) fetchModule(ctx context.Context, url, importer string) (*record.Record, error) {
	if r.destroyed.Load() {
		return nil, ErrDestroyed
	}
	// Entry points arrive normalized; internal requests are not.
	url = moduleid.NormalizeEntry(r.root, url)

	if strings.HasPrefix(url, dataURIPrefix) {
		// Constant imports short-circuit to a synthetic builtin without
		// touching the transport or the flight index.
		return r.resolveFetch(url, importer, transport.FetchResult{
			Kind:        transport.KindExternalize,
			Externalize: url,
			Type:        transport.TypeBuiltin,
		}, nil)
	}

	// The flight must be attached before any blocking point so every
	// concurrent request for this URL finds it.
	r.mu.Lock()
	if flight, ok := r.inflight[url]; ok {
		r.mu.Unlock()
		select {
		case <-flight.done:
			return flight.rec, flight.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	flight := &fetchFlight{done: make(chan struct{})}
	r.inflight[url] = flight
	r.mu.Unlock()

	flight.rec, flight.err = r.transportFetch(ctx, url, importer)
	close(flight.done)

	r.mu.Lock()
	// ClearCache swaps the flight index; only remove an entry this flight
	// still owns.
	if r.inflight[url] == flight {
		delete(r.inflight, url)
	}
	r.mu.Unlock()
	return flight.rec, flight.err
}

// transportFetch performs the actual transport round trip for one URL and
// resolves the answer into a record.
func (r *Runner) transportFetch(ctx context.Context, url, importer string) (*record.Record, error) {
	cached := r.cachedRecord(url)

	fr, err := r.transport.FetchModule(ctx, url, importer, transport.FetchOptions{
		Cached: cached != nil,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching %q: %w", url, err)
	}
	return r.resolveFetch(url, importer, fr, cached)
}

// resolveFetch turns a fetch result into the canonical record and indexes
// it.
func (r *Runner) resolveFetch(url, importer string, fr transport.FetchResult, cached *record.Record) (*record.Record, error) {
	if fr.Kind == transport.KindCache {
		if cached == nil {
			return nil, fmt.Errorf("module %q was reported as a cache hit with no resolvable record: %w", url, ErrProtocolViolation)
		}
		return cached, nil
	}

	// Identity derives from the file location when one exists, keeping the
	// original query suffix so decorated URL variants of one file stay
	// distinguishable while sharing the file index.
	id := url
	if fr.Kind == transport.KindInline && fr.File != "" {
		id = fr.File + moduleid.Query(url)
	}

	rec := r.store.GetByIdentity(id)
	rec.SetURL(url)
	if fr.Invalidate {
		r.store.Invalidate(rec)
	}
	frCopy := fr
	rec.SetMeta(&frCopy)

	r.mu.Lock()
	canonical := rec.ID()
	if fr.File != "" {
		if !slices.Contains(r.fileToIDs[fr.File], canonical) {
			r.fileToIDs[fr.File] = append(r.fileToIDs[fr.File], canonical)
		}
	}
	r.urlToID[url] = canonical
	r.urlToID[moduleid.Unwrap(url)] = canonical
	r.mu.Unlock()

	r.logger.Debug("Module fetched.", "url", url, "moduleID", canonical, "kind", fr.Kind, "importer", importer)
	return rec, nil
}

// cachedRecord returns the resolvable record for a URL: one that has been
// seen before and still carries a fetch result. Invalidated records do not
// count, so the transport sees them as cold fetches.
func (r *Runner) cachedRecord(url string) *record.Record {
	r.mu.Lock()
	id, ok := r.urlToID[url]
	r.mu.Unlock()
	if !ok {
		return nil
	}
	rec, ok := r.store.Lookup(id)
	if !ok || rec.Meta() == nil {
		return nil
	}
	return rec
}
