package app

import (
	"context"
	"fmt"

	"github.com/vk/modrunnergo/internal/ctxlog"
	"github.com/vk/modrunnergo/internal/evaluator"
	"github.com/vk/modrunnergo/internal/runner"
	"github.com/vk/modrunnergo/internal/siotransport"
)

// Run connects to the module server, imports the configured entry module
// through a probe evaluator, and reports what came back.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.model.Entry == "" {
		return fmt.Errorf("no entry module configured: set runner.entry or pass --entry")
	}

	client, err := siotransport.Dial(ctx, siotransport.Options{
		URL:                a.model.Server,
		Namespace:          a.model.Namespace,
		InsecureSkipVerify: a.model.InsecureSkipVerify,
		Logger:             a.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to module server: %w", err)
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			a.logger.Warn("Failed to close server connection.", "error", closeErr)
		}
	}()
	a.logger.Info("Connected to module server.", "server", a.model.Server, "namespace", a.model.Namespace)

	opts := runner.Options{
		Root:      a.model.Root,
		Transport: client,
		Evaluator: evaluator.Probe{},
		Logger:    a.logger,
		Debug:     a.model.LogLevel == "debug",
		Env:       a.model.Env,
	}
	if a.model.HotReload {
		opts.HMR = &runner.HMROptions{Connection: client}
	}

	r, err := runner.New(opts)
	if err != nil {
		return fmt.Errorf("failed to construct runner: %w", err)
	}
	defer func() {
		if destroyErr := r.Destroy(context.WithoutCancel(ctx)); destroyErr != nil {
			a.logger.Warn("Failed to destroy runner.", "error", destroyErr)
		}
	}()

	a.logger.Info("🚀 Importing entry module...", "entry", a.model.Entry)
	exports, err := r.Import(ctx, a.model.Entry)
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", a.model.Entry, err)
	}
	a.logger.Info("🏁 Import finished.")

	if info, ok := r.ModuleInfo(a.model.Entry); ok {
		a.logger.Info("Module resolved.",
			"id", info.ID,
			"kind", info.Kind.String(),
			"type", string(info.Type),
			"file", info.File,
			"evaluated", info.Evaluated,
		)
	}

	a.report(a.model.Entry, exports)

	a.logger.Debug("App.Run method finished.")
	return nil
}
