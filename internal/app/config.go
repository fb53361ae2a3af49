package app

import "errors"

// Config holds the CLI-level configuration for an App instance. File-level
// settings come from the HCL config the ConfigPath points at; the remaining
// fields override it when non-empty.
type Config struct {
	ConfigPath string

	Entry     string
	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}

	return &cfg, nil
}
