package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/modrunnergo/internal/config"
	"github.com/vk/modrunnergo/internal/ctxlog"
)

// App encapsulates the probe tool's dependencies, configuration, and
// lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	model  *config.Model
}

// NewApp is the constructor for the main application. It loads the HCL
// config, applies CLI overrides, and returns a fully initialized App with
// its own isolated logger.
func NewApp(outW io.Writer, appConfig *Config) *App {
	// Bootstrap logger until the configured one exists; config loading
	// itself wants a logger in context.
	ctx := ctxlog.WithLogger(context.Background(), slog.Default())

	model, err := config.Load(ctx, appConfig.ConfigPath)
	if err != nil {
		// A failure to load config is a fatal startup error.
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}

	// CLI flags override file-level settings.
	if appConfig.Entry != "" {
		model.Entry = appConfig.Entry
	}
	if appConfig.LogLevel != "" {
		model.LogLevel = appConfig.LogLevel
	}
	if appConfig.LogFormat != "" {
		model.LogFormat = appConfig.LogFormat
	}

	logger := newLogger(model.LogLevel, model.LogFormat, outW)
	logger.Debug("Logger configured successfully.")
	logger.Debug("Configuration loaded.", "root", model.Root, "server", model.Server, "entry", model.Entry)

	return &App{
		outW:   outW,
		logger: logger,
		model:  model,
	}
}

// Model returns the merged configuration. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}
