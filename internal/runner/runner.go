package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/vk/modrunnergo/internal/evaluator"
	"github.com/vk/modrunnergo/internal/hotreload"
	"github.com/vk/modrunnergo/internal/inmemorystore"
	"github.com/vk/modrunnergo/internal/moduleid"
	"github.com/vk/modrunnergo/internal/recordstore"
	"github.com/vk/modrunnergo/internal/sourcemaps"
	"github.com/vk/modrunnergo/internal/transport"
)

// HMROptions enables hot reload for a runner.
type HMROptions struct {
	// Connection delivers update notifications; the runner does not own it
	// and never closes it.
	Connection hotreload.Connection
	// Logger overrides the runner logger for the hot-reload client.
	Logger *slog.Logger
}

// Options configures a Runner.
type Options struct {
	// Root is the directory module specifiers are normalized against.
	Root string
	// Transport obtains compiled or externalized module representations.
	Transport transport.Transport
	// Evaluator executes module code.
	Evaluator evaluator.Evaluator
	// Store keeps module records. Defaults to an in-memory store rooted at
	// Root.
	Store recordstore.Store
	// Logger receives runtime diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
	// Debug enables the slow-resolution diagnostic sink.
	Debug bool
	// Env is the statically known key set of the per-module env surface.
	Env map[string]string
	// HMR enables hot reload when non-nil.
	HMR *HMROptions
	// SourceMaps installs process-wide source-map interception for the
	// lifetime of the runner.
	SourceMaps bool
}

// Runner is the client-side module execution runtime.
type Runner struct {
	root      string
	transport transport.Transport
	eval      evaluator.Evaluator
	store     recordstore.Store
	logger    *slog.Logger
	debug     *slog.Logger
	envGuard  *evaluator.EnvGuard
	hmr       *hotreload.Client

	teardownSourceMaps func()
	destroyed          atomic.Bool

	// mu guards the auxiliary indices below. Index writes complete before
	// any blocking point in the operation that makes them.
	mu        sync.Mutex
	urlToID   map[string]string
	fileToIDs map[string][]string
	inflight  map[string]*fetchFlight
}

// New constructs a runner. Transport and Evaluator are mandatory.
func New(opts Options) (*Runner, error) {
	if opts.Transport == nil {
		return nil, errors.New("runner: a transport is required")
	}
	if opts.Evaluator == nil {
		return nil, errors.New("runner: an evaluator is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	store := opts.Store
	if store == nil {
		store = inmemorystore.New(opts.Root)
	}

	r := &Runner{
		root:      opts.Root,
		transport: opts.Transport,
		eval:      opts.Evaluator,
		store:     store,
		logger:    logger,
		envGuard:  evaluator.NewEnvGuard(opts.Env),
		urlToID:   make(map[string]string),
		fileToIDs: make(map[string][]string),
		inflight:  make(map[string]*fetchFlight),
	}
	if opts.Debug {
		r.debug = logger.With("diagnostic", "slow-resolve")
	}

	if opts.SourceMaps {
		teardown, err := sourcemaps.Install(logger)
		if err != nil {
			return nil, fmt.Errorf("runner: %w", err)
		}
		r.teardownSourceMaps = teardown
	}

	if opts.HMR != nil {
		hmrLogger := opts.HMR.Logger
		if hmrLogger == nil {
			hmrLogger = logger
		}
		r.hmr = hotreload.NewClient(hmrLogger, opts.HMR.Connection, r.acceptUpdate)
	}

	return r, nil
}

// Import resolves, caches, and executes a module, returning its exports.
// Subsequent imports of the same module are served from cache.
func (r *Runner) Import(ctx context.Context, rawURL string) (any, error) {
	if r.destroyed.Load() {
		return nil, ErrDestroyed
	}
	url := moduleid.NormalizeEntry(r.root, rawURL)
	rec, err := r.fetchModule(ctx, url, "")
	if err != nil {
		return nil, err
	}
	return r.cachedRequest(ctx, url, rec, nil, nil)
}

// ClearCache drops every record and both auxiliary indices. The next
// import of any module triggers a cold fetch.
func (r *Runner) ClearCache() error {
	if r.destroyed.Load() {
		return ErrDestroyed
	}
	r.clearCache()
	return nil
}

func (r *Runner) clearCache() {
	r.store.Clear()
	r.mu.Lock()
	r.urlToID = make(map[string]string)
	r.fileToIDs = make(map[string][]string)
	// In-flight fetches belong to the old generation; requests arriving
	// after the clear must not join them.
	r.inflight = make(map[string]*fetchFlight)
	r.mu.Unlock()
}

// InvalidateFile resets every query-suffixed record variant of one file
// location. In-flight futures are discarded, not cancelled.
func (r *Runner) InvalidateFile(file string) error {
	if r.destroyed.Load() {
		return ErrDestroyed
	}
	r.mu.Lock()
	ids := append([]string(nil), r.fileToIDs[file]...)
	r.mu.Unlock()
	for _, id := range ids {
		if rec, ok := r.store.Lookup(id); ok {
			r.store.Invalidate(rec)
		}
	}
	return nil
}

// Destroy tears the runtime down: the hot-reload client is cleared,
// source-map interception removed, and the cache discarded. All new
// operations fail with ErrDestroyed afterwards. Destroy is idempotent.
func (r *Runner) Destroy(ctx context.Context) error {
	if !r.destroyed.CompareAndSwap(false, true) {
		return nil
	}
	if r.hmr != nil {
		r.hmr.Clear()
	}
	if r.teardownSourceMaps != nil {
		r.teardownSourceMaps()
	}
	r.clearCache()
	r.logger.Debug("Module runner destroyed.")
	return nil
}

// ModuleInfo is a read-only snapshot of a cached module record.
type ModuleInfo struct {
	ID        string
	URL       string
	File      string
	Kind      transport.ResultKind
	Type      transport.ModuleType
	Evaluated bool
}

// ModuleInfo reports what the cache holds for a previously imported URL.
func (r *Runner) ModuleInfo(rawURL string) (ModuleInfo, bool) {
	if r.destroyed.Load() {
		return ModuleInfo{}, false
	}
	url := moduleid.NormalizeEntry(r.root, rawURL)
	r.mu.Lock()
	id, ok := r.urlToID[url]
	r.mu.Unlock()
	if !ok {
		return ModuleInfo{}, false
	}
	rec, ok := r.store.Lookup(id)
	if !ok {
		return ModuleInfo{}, false
	}
	info := ModuleInfo{
		ID:        rec.ID(),
		URL:       rec.URL(),
		File:      rec.File(),
		Evaluated: rec.Evaluated(),
	}
	if meta := rec.Meta(); meta != nil {
		info.Kind = meta.Kind
		info.Type = meta.Type
	}
	return info, true
}

// IsDestroyed reports whether Destroy has been called.
func (r *Runner) IsDestroyed() bool {
	return r.destroyed.Load()
}

// acceptUpdate is the hot-reload accept callback: invalidate every cached
// variant of the updated file, then re-import it.
func (r *Runner) acceptUpdate(ctx context.Context, path string) error {
	if err := r.InvalidateFile(path); err != nil {
		return err
	}
	_, err := r.Import(ctx, path)
	return err
}
