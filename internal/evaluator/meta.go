package evaluator

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vk/modrunnergo/internal/hotreload"
)

// ErrUnsupportedCapability marks capabilities that must be compiled away
// before code reaches this runtime. Hitting one at run time means an
// earlier transformation stage was skipped.
var ErrUnsupportedCapability = errors.New("capability not supported at run time")

// ErrRestrictedAccess marks reads of the env surface outside its statically
// known key set.
var ErrRestrictedAccess = errors.New("restricted env access")

// ImportMeta is the per-module metadata object handed to the evaluator.
type ImportMeta struct {
	// Filename is the resolved file path in OS-appropriate separators.
	Filename string
	// Dirname is the resolved directory of Filename.
	Dirname string
	// URL is the file-location address form of the module.
	URL string
	// Env is the restricted-access environment surface.
	Env *EnvGuard

	mu         sync.Mutex
	hot        *hotreload.HotContext
	hotFactory func() (*hotreload.HotContext, error)
}

// Resolve is intentionally unimplemented: static resolution happens ahead
// of time, so a runtime call signals misuse.
func (m *ImportMeta) Resolve(specifier string) (string, error) {
	return "", fmt.Errorf("import.meta.resolve(%q): %w", specifier, ErrUnsupportedCapability)
}

// Glob is intentionally unimplemented: glob imports are rewritten away at
// an earlier transformation stage; reaching this call means that stage was
// skipped.
func (m *ImportMeta) Glob(pattern string) (map[string]any, error) {
	return nil, fmt.Errorf("import.meta.glob(%q): %w", pattern, ErrUnsupportedCapability)
}

// EnableHot installs the lazy constructor for the hot-reload handle.
func (m *ImportMeta) EnableHot(factory func() (*hotreload.HotContext, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hotFactory = factory
}

// Hot returns the module's hot-reload handle, constructing it on first
// read and reusing it afterwards. It fails when hot reload is disabled or
// its client has been torn down.
func (m *ImportMeta) Hot() (*hotreload.HotContext, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hot != nil {
		return m.hot, nil
	}
	if m.hotFactory == nil {
		return nil, errors.New("import.meta.hot: hot reload is not enabled")
	}
	hc, err := m.hotFactory()
	if err != nil {
		return nil, err
	}
	m.hot = hc
	return hc, nil
}

// SetHot replaces the handle directly, bypassing the lazy constructor.
func (m *ImportMeta) SetHot(hc *hotreload.HotContext) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hot = hc
}

// EnvGuard is the environment surface with a statically known key set.
// Reads of any other key fail loudly instead of silently yielding a zero
// value, which is how dynamic property access is caught.
type EnvGuard struct {
	values map[string]string
}

// NewEnvGuard builds a guard over a fixed key set.
func NewEnvGuard(values map[string]string) *EnvGuard {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &EnvGuard{values: copied}
}

// Get reads a known key. Unknown keys fail with ErrRestrictedAccess.
func (g *EnvGuard) Get(key string) (string, error) {
	v, ok := g.values[key]
	if !ok {
		return "", fmt.Errorf("env key %q: %w", key, ErrRestrictedAccess)
	}
	return v, nil
}

// Has reports key membership without failing.
func (g *EnvGuard) Has(key string) bool {
	_, ok := g.values[key]
	return ok
}

// Keys returns the statically known key set in sorted order.
func (g *EnvGuard) Keys() []string {
	keys := make([]string, 0, len(g.values))
	for k := range g.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
