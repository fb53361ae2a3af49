package hotreload

import "sync"

// HotContext is the per-module hot-reload handle exposed on the module's
// import-meta surface. Modules register accept and dispose callbacks on it
// and stash state in Data across re-executions.
type HotContext struct {
	id string

	mu        sync.Mutex
	accepts   []func(Update)
	disposers []func()
	data      map[string]any
	disposed  bool
}

func newHotContext(id string) *HotContext {
	return &HotContext{id: id, data: make(map[string]any)}
}

// ID returns the module identity this handle belongs to.
func (h *HotContext) ID() string { return h.id }

// Accept registers a callback invoked when an update for this module
// arrives.
func (h *HotContext) Accept(fn func(Update)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.disposed {
		return
	}
	h.accepts = append(h.accepts, fn)
}

// Dispose registers a cleanup callback invoked when the handle is torn
// down.
func (h *HotContext) Dispose(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.disposed {
		return
	}
	h.disposers = append(h.disposers, fn)
}

// Data returns the handle's persistent state map. It survives module
// re-execution so modules can hand state to their next incarnation.
func (h *HotContext) Data() map[string]any {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.data
}

func (h *HotContext) notify(u Update) {
	h.mu.Lock()
	accepts := make([]func(Update), len(h.accepts))
	copy(accepts, h.accepts)
	h.mu.Unlock()
	for _, fn := range accepts {
		fn(u)
	}
}

func (h *HotContext) dispose() {
	h.mu.Lock()
	if h.disposed {
		h.mu.Unlock()
		return
	}
	h.disposed = true
	disposers := h.disposers
	h.accepts = nil
	h.disposers = nil
	h.mu.Unlock()
	for _, fn := range disposers {
		fn()
	}
}
