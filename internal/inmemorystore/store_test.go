package inmemorystore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetByIdentity(t *testing.T) {
	s := New("/srv/app")

	t.Run("creates on miss and dedupes", func(t *testing.T) {
		a := s.GetByIdentity("/src/a.js")
		b := s.GetByIdentity("/src/a.js")
		require.NotNil(t, a)
		assert.Same(t, a, b)
		assert.Equal(t, 1, s.Len())
	})

	t.Run("decorated spellings land on the same record", func(t *testing.T) {
		plain := s.GetByIdentity("/src/b.js")
		rooted := s.GetByIdentity("/srv/app/src/b.js")
		backslashed := s.GetByIdentity("\\srv\\app\\src\\b.js")
		assert.Same(t, plain, rooted)
		assert.Same(t, plain, backslashed)
	})
}

func TestLookup(t *testing.T) {
	s := New("/srv/app")

	_, ok := s.Lookup("/src/a.js")
	assert.False(t, ok, "lookup must not create records")

	created := s.GetByIdentity("/src/a.js")
	found, ok := s.Lookup("/srv/app/src/a.js")
	require.True(t, ok)
	assert.Same(t, created, found)
}

func TestNormalize(t *testing.T) {
	s := New("/srv/app")

	assert.Equal(t, "/src/a.js", s.Normalize("/srv/app/src/a.js"))
	assert.Equal(t, "/src/a.js", s.Normalize("\\srv\\app\\src\\a.js"))
	assert.Equal(t, "/outside/dep.js", s.Normalize("/@fs/outside/dep.js"))
	assert.Equal(t, "/src/a.js", s.Normalize("//src/a.js"))
	assert.Equal(t, "/src/a.js", s.Normalize("/src/a.js"))
}

func TestInvalidatePreservesIdentity(t *testing.T) {
	s := New("/srv/app")
	rec := s.GetByIdentity("/src/a.js")
	rec.AddImporter("/src/main.js")

	s.Invalidate(rec)

	assert.Empty(t, rec.Importers())
	assert.Same(t, rec, s.GetByIdentity("/src/a.js"), "invalidation must not fork the record")
}

func TestClear(t *testing.T) {
	s := New("/srv/app")
	old := s.GetByIdentity("/src/a.js")
	s.Clear()

	assert.Zero(t, s.Len())
	assert.NotSame(t, old, s.GetByIdentity("/src/a.js"), "clear discards prior records")
}
