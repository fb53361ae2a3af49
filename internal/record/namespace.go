package record

import (
	"fmt"
	"sort"
	"sync"
)

// Namespace is the mutable exports object of an inline module. It is
// property-extensible but never re-assigned: every importer holds the same
// instance and observes bindings as they are defined.
//
// Bindings are either plain values or live getters. Key enumeration order
// is sorted string order; no other ordering is guaranteed.
type Namespace struct {
	mu     sync.RWMutex
	props  map[string]property
	frozen map[string]struct{}
}

type property struct {
	value any
	get   func() any
}

// NewNamespace returns an empty namespace object.
func NewNamespace() *Namespace {
	return &Namespace{props: make(map[string]property)}
}

// Set defines or overwrites a plain value binding. Frozen keys are refused.
func (n *Namespace) Set(key string, value any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.frozen[key]; ok {
		return fmt.Errorf("namespace: cannot define frozen key %q", key)
	}
	n.props[key] = property{value: value}
	return nil
}

// DefineGetter defines or overwrites a live accessor binding: every read of
// key re-invokes get. Frozen keys are refused.
func (n *Namespace) DefineGetter(key string, get func() any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.frozen[key]; ok {
		return fmt.Errorf("namespace: cannot define frozen key %q", key)
	}
	n.props[key] = property{get: get}
	return nil
}

// Freeze marks a key as no longer definable. Reads still work.
func (n *Namespace) Freeze(key string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.frozen == nil {
		n.frozen = make(map[string]struct{})
	}
	n.frozen[key] = struct{}{}
}

// Get reads a binding. Getter bindings are evaluated on every read.
func (n *Namespace) Get(key string) (any, bool) {
	n.mu.RLock()
	p, ok := n.props[key]
	n.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if p.get != nil {
		return p.get(), true
	}
	return p.value, true
}

// Has reports whether a binding exists without evaluating it.
func (n *Namespace) Has(key string) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	_, ok := n.props[key]
	return ok
}

// Keys returns all binding names in sorted string order.
func (n *Namespace) Keys() []string {
	n.mu.RLock()
	keys := make([]string, 0, len(n.props))
	for k := range n.props {
		keys = append(keys, k)
	}
	n.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Len returns the number of bindings.
func (n *Namespace) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.props)
}

// String tags the object as a module namespace in logs and diagnostics.
func (n *Namespace) String() string {
	return fmt.Sprintf("[module namespace: %d bindings]", n.Len())
}
