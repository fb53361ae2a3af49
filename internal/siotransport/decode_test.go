package siotransport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/modrunnergo/internal/transport"
)

func TestDecodeFetchResult(t *testing.T) {
	t.Run("cache hit", func(t *testing.T) {
		fr, err := decodeFetchResult(map[string]any{"cache": true})
		require.NoError(t, err)
		assert.Equal(t, transport.KindCache, fr.Kind)
	})

	t.Run("externalize", func(t *testing.T) {
		fr, err := decodeFetchResult(map[string]any{
			"externalize": "node:fs",
			"type":        "builtin",
		})
		require.NoError(t, err)
		assert.Equal(t, transport.KindExternalize, fr.Kind)
		assert.Equal(t, "node:fs", fr.Externalize)
		assert.Equal(t, transport.TypeBuiltin, fr.Type)
	})

	t.Run("inline with file and invalidate", func(t *testing.T) {
		fr, err := decodeFetchResult(map[string]any{
			"code":       "export {}",
			"file":       "/srv/app/src/a.js",
			"invalidate": true,
		})
		require.NoError(t, err)
		assert.Equal(t, transport.KindInline, fr.Kind)
		assert.Equal(t, "export {}", fr.Code)
		assert.Equal(t, "/srv/app/src/a.js", fr.File)
		assert.Equal(t, transport.TypeModule, fr.Type, "module is the default type")
		assert.True(t, fr.Invalidate)
	})

	t.Run("malformed payload", func(t *testing.T) {
		_, err := decodeFetchResult(map[string]any{"unrelated": 1})
		assert.Error(t, err)
	})
}

func TestDecodeUpdate(t *testing.T) {
	u := decodeUpdate(map[string]any{
		"type":      "js-update",
		"path":      "/src/a.js",
		"timestamp": float64(1700000000000),
	})
	assert.Equal(t, "js-update", u.Type)
	assert.Equal(t, "/src/a.js", u.Path)
	assert.Equal(t, int64(1700000000000), u.Timestamp)
}

func TestNumberFieldTolerance(t *testing.T) {
	for _, v := range []any{float64(7), int64(7), int(7), uint64(7)} {
		got, ok := numberField(map[string]any{"seq": v}, "seq")
		require.True(t, ok, "%T", v)
		assert.Equal(t, float64(7), got)
	}
	_, ok := numberField(map[string]any{"seq": "7"}, "seq")
	assert.False(t, ok)
}
