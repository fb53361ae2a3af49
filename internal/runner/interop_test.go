package runner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/modrunnergo/internal/evaluator"
	"github.com/vk/modrunnergo/internal/record"
	"github.com/vk/modrunnergo/internal/transport"
)

func TestCommonJSInterop(t *testing.T) {
	tr := newFakeTransport()
	tr.serve("/@id/cjs-dep", transport.FetchResult{
		Kind:        transport.KindExternalize,
		Externalize: "cjs-dep",
		Type:        transport.TypeCommonJS,
	})

	ev := newScriptedEvaluator()
	raw := map[string]any{"named": "value"}
	ev.external = func(target string) (any, error) { return raw, nil }

	r, err := newTestRunner(tr, ev)
	require.NoError(t, err)

	t.Run("wraps raw exports into an interop namespace", func(t *testing.T) {
		exports, err := r.Import(context.Background(), "cjs-dep")
		require.NoError(t, err)

		ns, ok := exports.(*record.Namespace)
		require.True(t, ok)
		d, _ := ns.Get("default")
		assert.Equal(t, raw, d, "default binding is the raw module value")
		v, _ := ns.Get("named")
		assert.Equal(t, "value", v)

		raw["named"] = "changed"
		v, _ = ns.Get("named")
		assert.Equal(t, "changed", v, "named bindings are live accessors")
	})

	t.Run("same interop view for every caller", func(t *testing.T) {
		first, err := r.Import(context.Background(), "cjs-dep")
		require.NoError(t, err)
		second, err := r.Import(context.Background(), "cjs-dep")
		require.NoError(t, err)
		assert.Same(t, first.(*record.Namespace), second.(*record.Namespace))
	})
}

func TestCommonJSMissingNamedExport(t *testing.T) {
	tr := newFakeTransport()
	tr.serve("/src/main.js", inlineModule("import { missing } from 'cjs-dep'"))
	tr.serve("/@id/cjs-dep", transport.FetchResult{
		Kind:        transport.KindExternalize,
		Externalize: "cjs-dep",
		Type:        transport.TypeCommonJS,
	})

	ev := newScriptedEvaluator()
	ev.external = func(target string) (any, error) {
		return map[string]any{"present": 1}, nil
	}
	ev.script("/src/main.js", func(ctx context.Context, mc *evaluator.Context) error {
		_, err := mc.Import(ctx, "cjs-dep", &evaluator.ImportMetadata{ImportedNames: []string{"missing"}})
		return err
	})

	r, err := newTestRunner(tr, ev)
	require.NoError(t, err)

	_, err = r.Import(context.Background(), "/src/main.js")
	assert.ErrorContains(t, err, `does not provide an export named "missing"`)
}

func TestExportAllOnContext(t *testing.T) {
	tr := newFakeTransport()
	tr.serve("/src/barrel.js", inlineModule("export * from './impl.js'"))
	tr.serve("/src/impl.js", inlineModule("export const a = 1"))

	ev := newScriptedEvaluator()
	ev.script("/src/barrel.js", func(ctx context.Context, mc *evaluator.Context) error {
		implExports, err := mc.Import(ctx, "/src/impl.js", nil)
		if err != nil {
			return err
		}
		mc.ExportAll(implExports)
		return nil
	})
	ev.script("/src/impl.js", func(ctx context.Context, mc *evaluator.Context) error {
		if err := mc.Exports.Set("a", 1); err != nil {
			return err
		}
		return mc.Exports.Set("default", "skip-me")
	})

	r, err := newTestRunner(tr, ev)
	require.NoError(t, err)

	exports, err := r.Import(context.Background(), "/src/barrel.js")
	require.NoError(t, err)

	barrel := exports.(*record.Namespace)
	assert.Equal(t, []string{"a"}, barrel.Keys(), "default is not re-exported")

	// Live binding: mutate the implementation module afterwards.
	implRec, ok := r.store.Lookup("/src/impl.js")
	require.True(t, ok)
	implExports, _ := implRec.Exports()
	require.NoError(t, implExports.(*record.Namespace).Set("a", 2))
	v, _ := barrel.Get("a")
	assert.Equal(t, 2, v)
}
