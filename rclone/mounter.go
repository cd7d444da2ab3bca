package rclone

import (
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/remocast/remocast/log"
)

const mountReadyTimeout = 30 * time.Second

// Status is a point-in-time view of the rclone integration.
type Status struct {
	Installed  bool   `json:"installed"`
	Version    string `json:"version,omitempty"`
	Mounted    bool   `json:"mounted"`
	MountPoint string `json:"mount_point"`
}

// Mounter owns the rclone mount process for one configured remote.
type Mounter struct {
	mutex  sync.Mutex
	config Config
	cmd    *exec.Cmd
}

// NewMounter creates a mounter for the given configuration.
func NewMounter(config Config) *Mounter {
	return &Mounter{config: config}
}

// Mount starts the rclone mount and waits for the mount point to
// become readable. Mounting an already mounted remote is a no-op, even
// when something other than this process mounted it.
func (m *Mounter) Mount() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if Mounted(m.config.MountPoint) {
		log.Infof("rclone: %s is already mounted", m.config.MountPoint)
		return nil
	}

	if _, err := CheckInstalled(m.config.Path); err != nil {
		return err
	}

	log.Infof("rclone: mounting %s at %s", m.config.remotePath(), m.config.MountPoint)

	// The network-mode flag makes the mount visible to other
	// processes, which media servers on the same machine need.
	cmd := exec.Command(m.config.Path,
		"mount",
		m.config.remotePath(),
		m.config.MountPoint,
		"--vfs-cache-mode", m.config.VfsCacheMode,
		"--network-mode",
	)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start rclone: %w", err)
	}

	m.cmd = cmd

	if err := waitForMount(m.config.MountPoint, mountReadyTimeout); err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		m.cmd = nil
		return err
	}

	return nil
}

// Unmount kills the mount process and detaches the mount point.
// Safe to call when nothing is mounted.
func (m *Mounter) Unmount() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.cmd != nil {
		_ = m.cmd.Process.Kill()
		_ = m.cmd.Wait()
		m.cmd = nil
		log.Infof("rclone: killed mount process")
	}

	// The kernel side can outlive the process.
	_ = unmountCommand(m.config).Run()
	time.Sleep(mountPollInterval)

	if Mounted(m.config.MountPoint) {
		log.Warnf("rclone: mount point %s still present after unmount", m.config.MountPoint)
	}
}

// CurrentStatus probes the binary and the mount point.
func (m *Mounter) CurrentStatus() Status {
	status := Status{
		MountPoint: m.config.MountPoint,
		Mounted:    Mounted(m.config.MountPoint),
	}

	if version, err := CheckInstalled(m.config.Path); err == nil {
		status.Installed = true
		status.Version = version
	}

	return status
}
