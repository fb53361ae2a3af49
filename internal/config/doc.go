// Package config loads the probe tool's HCL configuration file and
// translates it into a validated model. Expressions inside the file may
// reference process environment variables through the `env` object, e.g.
// `server = "ws://${env.RUNNER_HOST}:3000"`.
package config
