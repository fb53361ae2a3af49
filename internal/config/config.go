package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/modrunnergo/internal/ctxlog"
)

// Model is the validated, ready-to-use configuration for the probe tool.
type Model struct {
	Root      string
	Server    string
	Namespace string
	Entry     string

	LogLevel  string
	LogFormat string

	HotReload          bool
	InsecureSkipVerify bool

	Env map[string]string
}

// fileRoot decodes the top-level blocks of a config file.
type fileRoot struct {
	Runner *runnerBlock `hcl:"runner,block"`
	Remain hcl.Body     `hcl:",remain"`
}

type runnerBlock struct {
	Root      string `hcl:"root"`
	Server    string `hcl:"server"`
	Namespace string `hcl:"namespace,optional"`
	Entry     string `hcl:"entry,optional"`

	LogLevel  string `hcl:"log_level,optional"`
	LogFormat string `hcl:"log_format,optional"`

	HotReload          bool `hcl:"hot_reload,optional"`
	InsecureSkipVerify bool `hcl:"insecure_skip_verify,optional"`

	Env map[string]string `hcl:"env,optional"`
}

// Load parses a single HCL config file and translates it into a Model.
func Load(ctx context.Context, path string) (*Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Config loader started.", "path", path)

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(hclFile.Body, evalContext(), &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, diags)
	}
	if root.Runner == nil {
		return nil, fmt.Errorf("config file %s has no runner block", path)
	}

	model := &Model{
		Root:               root.Runner.Root,
		Server:             root.Runner.Server,
		Namespace:          root.Runner.Namespace,
		Entry:              root.Runner.Entry,
		LogLevel:           root.Runner.LogLevel,
		LogFormat:          root.Runner.LogFormat,
		HotReload:          root.Runner.HotReload,
		InsecureSkipVerify: root.Runner.InsecureSkipVerify,
		Env:                root.Runner.Env,
	}
	applyDefaults(model)

	if err := validate(model); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	logger.Debug("Config loading complete.", "root", model.Root, "server", model.Server, "namespace", model.Namespace)
	return model, nil
}

// evalContext exposes the process environment as the `env` object so config
// values can interpolate variables without shell templating.
func evalContext() *hcl.EvalContext {
	vars := map[string]cty.Value{}
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		vars[key] = cty.StringVal(value)
	}

	envVal := cty.EmptyObjectVal
	if len(vars) > 0 {
		envVal = cty.ObjectVal(vars)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": envVal,
		},
	}
}

func applyDefaults(m *Model) {
	if m.Namespace == "" {
		m.Namespace = "/"
	}
	if m.LogLevel == "" {
		m.LogLevel = "info"
	}
	if m.LogFormat == "" {
		m.LogFormat = "text"
	}
}

func validate(m *Model) error {
	if m.Root == "" {
		return fmt.Errorf("runner.root is required")
	}
	if m.Server == "" {
		return fmt.Errorf("runner.server is required")
	}
	switch m.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("runner.log_level must be 'debug', 'info', 'warn', or 'error', got %q", m.LogLevel)
	}
	switch m.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("runner.log_format must be 'text' or 'json', got %q", m.LogFormat)
	}
	return nil
}
