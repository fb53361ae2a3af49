package evaluator

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/modrunnergo/internal/hotreload"
)

func TestEnvGuard(t *testing.T) {
	g := NewEnvGuard(map[string]string{"MODE": "development", "BASE_URL": "/"})

	t.Run("known keys read through", func(t *testing.T) {
		v, err := g.Get("MODE")
		require.NoError(t, err)
		assert.Equal(t, "development", v)
	})

	t.Run("unknown keys fail loudly", func(t *testing.T) {
		_, err := g.Get("someKey")
		assert.ErrorIs(t, err, ErrRestrictedAccess)
		assert.ErrorContains(t, err, "someKey")
	})

	t.Run("key set is fixed and sorted", func(t *testing.T) {
		assert.Equal(t, []string{"BASE_URL", "MODE"}, g.Keys())
		assert.True(t, g.Has("MODE"))
		assert.False(t, g.Has("PATH"))
	})
}

func TestImportMetaUnsupportedCapabilities(t *testing.T) {
	m := &ImportMeta{}

	_, err := m.Resolve("./dep.js")
	assert.ErrorIs(t, err, ErrUnsupportedCapability)

	_, err = m.Glob("./*.js")
	assert.ErrorIs(t, err, ErrUnsupportedCapability)
}

func TestImportMetaHot(t *testing.T) {
	t.Run("disabled by default", func(t *testing.T) {
		m := &ImportMeta{}
		_, err := m.Hot()
		assert.Error(t, err)
	})

	t.Run("lazily constructed and reused", func(t *testing.T) {
		m := &ImportMeta{}
		calls := 0
		m.EnableHot(func() (*hotreload.HotContext, error) {
			calls++
			conn := &stubConn{}
			client := hotreload.NewClient(testDiscardLogger(), conn, nil)
			return client.ContextFor("/src/a.js")
		})

		first, err := m.Hot()
		require.NoError(t, err)
		second, err := m.Hot()
		require.NoError(t, err)
		assert.Same(t, first, second)
		assert.Equal(t, 1, calls)
	})

	t.Run("factory failure surfaces", func(t *testing.T) {
		m := &ImportMeta{}
		m.EnableHot(func() (*hotreload.HotContext, error) {
			return nil, errors.New("client torn down")
		})
		_, err := m.Hot()
		assert.ErrorContains(t, err, "torn down")
	})

	t.Run("direct assignment replaces the handle", func(t *testing.T) {
		m := &ImportMeta{}
		conn := &stubConn{}
		client := hotreload.NewClient(testDiscardLogger(), conn, nil)
		hc, err := client.ContextFor("/src/b.js")
		require.NoError(t, err)

		m.SetHot(hc)
		got, err := m.Hot()
		require.NoError(t, err)
		assert.Same(t, hc, got)
	})
}

func testDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubConn struct{ handler func(hotreload.Update) }

func (s *stubConn) OnUpdate(h func(hotreload.Update)) { s.handler = h }
func (s *stubConn) Send(string, any) error            { return nil }
func (s *stubConn) Close() error                      { return nil }
