// Package rclone manages a cloud storage mount through an external
// rclone process, so remote media libraries appear as local files the
// streaming server can serve.
package rclone

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/remocast/remocast/filesystem"
	"github.com/remocast/remocast/key"
)

const mountPollInterval = 500 * time.Millisecond

// Config describes the remote and where to mount it.
type Config struct {
	Path         string `json:"path"`
	Remote       string `json:"remote"`
	Folder       string `json:"folder"`
	MountPoint   string `json:"mount_point"`
	VfsCacheMode string `json:"vfs_cache_mode"`
	AutoMount    bool   `json:"auto_mount"`
}

// ConfigFromSettings builds a Config from the application settings.
func ConfigFromSettings() Config {
	return Config{
		Path:         viper.GetString(key.RclonePath),
		Remote:       viper.GetString(key.RcloneRemote),
		Folder:       viper.GetString(key.RcloneFolder),
		MountPoint:   viper.GetString(key.RcloneMountPoint),
		VfsCacheMode: viper.GetString(key.RcloneVfsCacheMode),
		AutoMount:    viper.GetBool(key.RcloneAutoMount),
	}
}

// remotePath is the rclone source argument, e.g. "gdrive:media".
func (c Config) remotePath() string {
	return fmt.Sprintf("%s:%s", c.Remote, c.Folder)
}

// CheckInstalled verifies the rclone binary is reachable and returns
// its version line.
func CheckInstalled(path string) (string, error) {
	output, err := exec.Command(path, "version").Output()
	if err != nil {
		return "", fmt.Errorf("rclone not found, install it and ensure it is in PATH: %w", err)
	}

	version, _, _ := strings.Cut(string(output), "\n")
	return strings.TrimSpace(version), nil
}

// Mounted reports whether the mount point is present and readable.
// Bare existence is not enough for drive-letter style mount points,
// those only count once they can be listed.
func Mounted(mountPoint string) bool {
	exists, err := filesystem.API().DirExists(mountPoint)
	if err != nil || !exists {
		return false
	}

	if len(mountPoint) <= 3 && strings.Contains(mountPoint, ":") {
		_, err := filesystem.API().ReadDir(mountPoint)
		return err == nil
	}

	return true
}

// waitForMount polls until the mount point becomes readable.
func waitForMount(mountPoint string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		if Mounted(mountPoint) {
			return nil
		}
		time.Sleep(mountPollInterval)
	}

	return fmt.Errorf("timed out waiting for mount at %s", mountPoint)
}

// unmountCommand detaches the mount point outside of the rclone
// process itself, as a fallback after the process is killed.
func unmountCommand(config Config) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.Command(config.Path, "unmount", config.MountPoint)
	}

	return exec.Command("fusermount", "-u", config.MountPoint)
}
