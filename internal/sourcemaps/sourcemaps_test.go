package sourcemaps

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInstallLifecycle(t *testing.T) {
	teardown, err := Install(testLogger())
	require.NoError(t, err)
	assert.True(t, Active())

	_, err = Install(testLogger())
	assert.ErrorIs(t, err, ErrAlreadyInstalled)

	teardown()
	assert.False(t, Active())

	// Teardown is idempotent; a fresh install works afterwards.
	teardown()
	again, err := Install(testLogger())
	require.NoError(t, err)
	again()
}
