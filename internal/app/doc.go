// Package app contains the probe tool's application logic. It defines the
// main App struct, its configuration, and the primary execution lifecycle,
// decoupled from any specific entrypoint like a CLI.
package app
