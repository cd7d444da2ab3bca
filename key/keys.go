// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Media Player Process - these keys govern how the external mpv process is spawned and supervised.
const (
	PlayerPath            = "player.path"
	PlayerConnectAttempts = "player.connect_attempts"
	PlayerConnectDelayMs  = "player.connect_delay_ms"
	PlayerReadAttempts    = "player.read_attempts"
	PlayerQuitGraceMs     = "player.quit_grace_ms"
	PlayerFullscreen      = "player.fullscreen"
)

// Media Streaming - these keys configure the LAN byte-range streaming server.
const (
	StreamingPort = "streaming.port"
)

// Remote Control Surface - these keys configure the localized command-dispatch listener.
const (
	RemotePort = "remote.port"
)

// Cloud Mount Integration - these keys manage the optional rclone mount wrapper.
const (
	RclonePath         = "rclone.path"
	RcloneRemote       = "rclone.remote"
	RcloneFolder       = "rclone.folder"
	RcloneMountPoint   = "rclone.mount_point"
	RcloneVfsCacheMode = "rclone.vfs_cache_mode"
	RcloneAutoMount    = "rclone.auto_mount"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-daemon application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
