package runner

import (
	"context"
	"fmt"
	"path"
	"slices"

	"github.com/vk/modrunnergo/internal/evaluator"
	"github.com/vk/modrunnergo/internal/hotreload"
	"github.com/vk/modrunnergo/internal/moduleid"
	"github.com/vk/modrunnergo/internal/record"
	"github.com/vk/modrunnergo/internal/transport"
)

// directRequest performs the one execution a record ever gets: it builds
// the injected context and delegates to the evaluator. Callers go through
// cachedRequest, which guards single flight.
func (r *Runner) directRequest(ctx context.Context, url string, rec *record.Record, callstack []string) (any, error) {
	moduleID := rec.ID()
	stack := append(slices.Clone(callstack), moduleID)

	fr := rec.Meta()
	if fr == nil {
		return nil, fmt.Errorf("%w: %q has no fetch result attached", ErrLoadFailure, url)
	}

	if fr.Kind == transport.KindExternalize {
		// Externalized values are stored raw; no namespace wrapping.
		exports, err := r.eval.RunExternalModule(ctx, fr.Externalize)
		if err != nil {
			return nil, fmt.Errorf("externalized module %q: %w", moduleID, err)
		}
		rec.SetExports(exports)
		return exports, nil
	}

	if fr.Code == "" {
		if importer := lastEntry(callstack); importer != "" {
			return nil, fmt.Errorf("%w: %q (imported from %q) has no code payload", ErrLoadFailure, url, importer)
		}
		return nil, fmt.Errorf("%w: %q has no code payload", ErrLoadFailure, url)
	}

	modulePath := fr.File
	if modulePath == "" {
		modulePath = moduleid.StripQuery(moduleID)
	}
	dirname := moduleid.Dirname(modulePath)

	// Exports are assigned before execution begins so circular importers
	// observe live, if partial, bindings.
	exports := record.NewNamespace()
	rec.SetExports(exports)

	meta := &evaluator.ImportMeta{
		Filename: moduleid.OSPath(modulePath),
		Dirname:  moduleid.OSPath(dirname),
		URL:      moduleid.FileHref(modulePath),
		Env:      r.envGuard,
	}
	if r.hmr != nil {
		hmr := r.hmr
		meta.EnableHot(func() (*hotreload.HotContext, error) {
			return hmr.ContextFor(moduleID)
		})
	}

	importFn := func(ctx context.Context, dep string, im *evaluator.ImportMetadata) (any, error) {
		depRec, err := r.fetchModule(ctx, dep, moduleID)
		if err != nil {
			return nil, err
		}
		rec.AddImport(depRec.ID())
		depRec.AddImporter(moduleID)
		return r.cachedRequest(ctx, dep, depRec, stack, im)
	}
	dynamicFn := func(ctx context.Context, dep string, im *evaluator.ImportMetadata) (any, error) {
		if im == nil {
			im = &evaluator.ImportMetadata{}
		}
		im.IsDynamicImport = true
		if moduleid.IsRelative(dep) {
			dep = path.Join(dirname, dep)
		}
		return importFn(ctx, dep, im)
	}

	modCtx := &evaluator.Context{
		Exports:       exports,
		Meta:          meta,
		Import:        importFn,
		DynamicImport: dynamicFn,
		ExportAll: func(source any) {
			record.ExportAll(exports, source)
		},
	}

	// The evaluator's return value is discarded: all observable output is
	// the mutated exports namespace.
	if err := r.eval.RunInlinedModule(ctx, modCtx, fr.Code, moduleID); err != nil {
		return nil, fmt.Errorf("evaluating %q: %w", moduleID, err)
	}
	return exports, nil
}
