package moduleid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEntry(t *testing.T) {
	root := "/srv/app"

	t.Run("relative specifiers pass through", func(t *testing.T) {
		assert.Equal(t, "./mod.js", NormalizeEntry(root, "./mod.js"))
		assert.Equal(t, "../mod.js", NormalizeEntry(root, "../mod.js"))
	})

	t.Run("root-prefixed paths become server rooted", func(t *testing.T) {
		assert.Equal(t, "/src/mod.js", NormalizeEntry(root, "/srv/app/src/mod.js"))
	})

	t.Run("absolute server paths are kept", func(t *testing.T) {
		assert.Equal(t, "/src/mod.js", NormalizeEntry(root, "/src/mod.js"))
	})

	t.Run("data URIs pass through", func(t *testing.T) {
		uri := "data:text/javascript,export default 1"
		assert.Equal(t, uri, NormalizeEntry(root, uri))
	})

	t.Run("bare specifiers are wrapped as virtual modules", func(t *testing.T) {
		assert.Equal(t, "/@id/virtual:config", NormalizeEntry(root, "virtual:config"))
	})

	t.Run("idempotent", func(t *testing.T) {
		for _, url := range []string{"./m.js", "/src/m.js", "virtual:m", "/srv/app/src/m.js"} {
			once := NormalizeEntry(root, url)
			assert.Equal(t, once, NormalizeEntry(root, once), "url %q", url)
		}
	})
}

func TestWrapUnwrap(t *testing.T) {
	assert.Equal(t, "/@id/virtual:x", Wrap("virtual:x"))
	assert.Equal(t, "/@id/virtual:x", Wrap("/@id/virtual:x"))
	assert.Equal(t, "virtual:x", Unwrap("/@id/virtual:x"))
	assert.Equal(t, "/src/x.js", Unwrap("/src/x.js"))

	t.Run("null bytes survive a round trip", func(t *testing.T) {
		id := "\x00virtual:x"
		wrapped := Wrap(id)
		assert.NotContains(t, wrapped, "\x00")
		assert.Equal(t, id, Unwrap(wrapped))
	})
}

func TestQuery(t *testing.T) {
	assert.Equal(t, "?v=1", Query("/src/mod.js?v=1"))
	assert.Equal(t, "", Query("/src/mod.js"))
	assert.Equal(t, "/src/mod.js", StripQuery("/src/mod.js?v=1"))
}

func TestFileHref(t *testing.T) {
	assert.Equal(t, "file:///srv/app/src/mod.js", FileHref("/srv/app/src/mod.js"))
}
