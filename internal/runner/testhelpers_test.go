package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/vk/modrunnergo/internal/evaluator"
	"github.com/vk/modrunnergo/internal/transport"
)

const testRoot = "/srv/app"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fetchCall struct {
	url      string
	importer string
	cached   bool
}

// fakeTransport serves scripted fetch results keyed by normalized URL and
// records every call. By default it answers cache-revalidation requests
// with a cache hit, like a well-behaved server would for unchanged content.
type fakeTransport struct {
	mu      sync.Mutex
	modules map[string]transport.FetchResult
	calls   []fetchCall
	// hook overrides the scripted answer when it returns true.
	hook func(url, importer string, opts transport.FetchOptions) (transport.FetchResult, bool)
	// noRevalidate disables the automatic cache-hit answer.
	noRevalidate bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{modules: make(map[string]transport.FetchResult)}
}

func (f *fakeTransport) serve(url string, fr transport.FetchResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.modules[url] = fr
}

func (f *fakeTransport) FetchModule(ctx context.Context, url, importer string, opts transport.FetchOptions) (transport.FetchResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fetchCall{url: url, importer: importer, cached: opts.Cached})
	hook := f.hook
	fr, ok := f.modules[url]
	noRevalidate := f.noRevalidate
	f.mu.Unlock()

	if hook != nil {
		if hooked, handled := hook(url, importer, opts); handled {
			return hooked, nil
		}
	}
	if opts.Cached && !noRevalidate {
		return transport.FetchResult{Kind: transport.KindCache}, nil
	}
	if !ok {
		return transport.FetchResult{}, fmt.Errorf("no module for %q", url)
	}
	return fr, nil
}

func (f *fakeTransport) callsFor(url string) []fetchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []fetchCall
	for _, c := range f.calls {
		if c.url == url {
			out = append(out, c)
		}
	}
	return out
}

// scriptedEvaluator runs Go functions in place of compiled module bodies,
// keyed by module identity, and counts executions.
type scriptedEvaluator struct {
	mu       sync.Mutex
	scripts  map[string]func(ctx context.Context, modCtx *evaluator.Context) error
	runs     []string
	external func(target string) (any, error)
}

func newScriptedEvaluator() *scriptedEvaluator {
	return &scriptedEvaluator{scripts: make(map[string]func(context.Context, *evaluator.Context) error)}
}

func (s *scriptedEvaluator) script(id string, fn func(ctx context.Context, modCtx *evaluator.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts[id] = fn
}

func (s *scriptedEvaluator) RunInlinedModule(ctx context.Context, modCtx *evaluator.Context, code, id string) error {
	s.mu.Lock()
	s.runs = append(s.runs, id)
	fn := s.scripts[id]
	s.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(ctx, modCtx)
}

func (s *scriptedEvaluator) RunExternalModule(ctx context.Context, target string) (any, error) {
	s.mu.Lock()
	external := s.external
	s.mu.Unlock()
	if external != nil {
		return external(target)
	}
	return map[string]any{"target": target}, nil
}

func (s *scriptedEvaluator) runCount(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, run := range s.runs {
		if run == id {
			n++
		}
	}
	return n
}

func newTestRunner(tr transport.Transport, ev evaluator.Evaluator, opts ...func(*Options)) (*Runner, error) {
	o := Options{
		Root:      testRoot,
		Transport: tr,
		Evaluator: ev,
		Logger:    testLogger(),
		Env:       map[string]string{"MODE": "test"},
	}
	for _, fn := range opts {
		fn(&o)
	}
	return New(o)
}
