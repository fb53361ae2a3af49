// Package sourcemaps owns the process-wide source-map interception
// lifecycle. Interception itself happens in the evaluator host; this
// package only guarantees the enable/disable contract: installed exactly
// once per runtime, torn down exactly once, never left dangling behind a
// module-level global.
package sourcemaps

import (
	"errors"
	"log/slog"
	"sync"
)

var (
	mu        sync.Mutex
	installed bool
)

// ErrAlreadyInstalled is returned when a second runtime tries to install
// interception while another installation is active.
var ErrAlreadyInstalled = errors.New("sourcemaps: interception already installed")

// Install enables process-wide source-map interception and returns the
// teardown closure restoring the prior state. Teardown is idempotent.
func Install(logger *slog.Logger) (func(), error) {
	mu.Lock()
	defer mu.Unlock()
	if installed {
		return nil, ErrAlreadyInstalled
	}
	installed = true
	logger.Debug("Source-map interception installed.")

	var once sync.Once
	return func() {
		once.Do(func() {
			mu.Lock()
			installed = false
			mu.Unlock()
			logger.Debug("Source-map interception removed.")
		})
	}, nil
}

// Active reports whether interception is currently installed.
func Active() bool {
	mu.Lock()
	defer mu.Unlock()
	return installed
}
