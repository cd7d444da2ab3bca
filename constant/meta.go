// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Remocast is the canonical application identifier used for filesystem paths and CLI branding.
	Remocast = "remocast"

	// Version is the current application semantic version string.
	Version = "0.1.0"

	// PlayerWindowTitle is the window title forced onto the spawned mpv instance.
	PlayerWindowTitle = "Remocast Player"
)

// Build metadata, overridden at link time via -ldflags.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
