package mpv

import (
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/spf13/viper"

	"github.com/remocast/remocast/constant"
	"github.com/remocast/remocast/key"
	"github.com/remocast/remocast/log"
)

// Process supervises an external mpv instance and the IPC connection
// attached to it. The zero value is not usable; construct with
// NewProcess.
type Process struct {
	mutex    sync.Mutex
	endpoint string
	cmd      *exec.Cmd
	client   *Client
	exited   chan struct{}
}

// NewProcess creates a supervisor for a player bound to an endpoint
// derived from the current process id.
func NewProcess() *Process {
	return &Process{
		endpoint: endpointName(),
	}
}

// Endpoint returns the IPC endpoint the player is launched with.
func (p *Process) Endpoint() string {
	return p.endpoint
}

// spawnArgs builds the argument list for a fresh player instance.
func (p *Process) spawnArgs() []string {
	args := []string{
		"--idle=yes",
		fmt.Sprintf("--input-ipc-server=%s", p.endpoint),
		"--vo=gpu",
		"--hwdec=auto-safe",
		"--keep-open=yes",
		"--cache=yes",
		"--demuxer-max-bytes=150MiB",
		"--demuxer-max-back-bytes=75MiB",
		fmt.Sprintf("--title=%s", constant.PlayerWindowTitle),
		"--osc=yes",
	}

	if viper.GetBool(key.PlayerFullscreen) {
		args = append(args, "--fullscreen=yes")
	}

	return args
}

// Start launches mpv and connects to its IPC endpoint. Calling Start
// while a player is already attached is a no-op.
func (p *Process) Start() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.running() {
		return nil
	}

	// Stale endpoints from a crashed predecessor would make the new
	// instance fail to bind.
	removeEndpoint(p.endpoint)

	cmd := exec.Command(viper.GetString(key.PlayerPath), p.spawnArgs()...)
	cmd.SysProcAttr = sysProcAttr()
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start player: %w", err)
	}

	log.Infof("player: spawned %s (pid %d)", viper.GetString(key.PlayerPath), cmd.Process.Pid)

	exited := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()

	client, err := p.connect(exited)
	if err != nil {
		select {
		case <-exited:
		default:
			log.Warnf("player: killing instance, endpoint never became ready")
			_ = killProcess(cmd)
		}
		return err
	}

	p.cmd = cmd
	p.exited = exited
	p.client = client
	return nil
}

// connect polls the IPC endpoint until the freshly spawned player
// accepts a connection.
func (p *Process) connect(exited chan struct{}) (*Client, error) {
	attempts := viper.GetInt(key.PlayerConnectAttempts)
	delay := time.Duration(viper.GetInt(key.PlayerConnectDelayMs)) * time.Millisecond

	for i := 0; i < attempts; i++ {
		time.Sleep(delay)

		select {
		case <-exited:
			return nil, fmt.Errorf("player exited before the IPC endpoint was ready")
		default:
		}

		transport, err := dialEndpoint(p.endpoint)
		if err == nil {
			return NewClient(transport), nil
		}
	}

	return nil, fmt.Errorf("endpoint %s not ready after %d attempts", p.endpoint, attempts)
}

// Stop asks the player to quit, then escalates to a hard kill. Safe to
// call when no player is attached.
func (p *Process) Stop() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.client != nil {
		// Best effort; the process is killed below regardless.
		_, _ = p.client.Command("quit")
		time.Sleep(time.Duration(viper.GetInt(key.PlayerQuitGraceMs)) * time.Millisecond)
		_ = p.client.Close()
		p.client = nil
	}

	if p.cmd != nil {
		_ = killProcess(p.cmd)
		if p.exited != nil {
			<-p.exited
		}
		p.cmd = nil
		p.exited = nil
	}

	removeEndpoint(p.endpoint)
}

// Client returns the IPC client for the attached player, or
// ErrNotRunning when the player is stopped or has exited on its own.
func (p *Process) Client() (*Client, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if !p.running() {
		return nil, ErrNotRunning
	}

	return p.client, nil
}

// Running reports whether a player instance is currently attached.
func (p *Process) Running() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return p.running()
}

func (p *Process) running() bool {
	if p.client == nil || p.exited == nil {
		return false
	}

	select {
	case <-p.exited:
		return false
	default:
		return true
	}
}

// Wait returns a channel closed when the player process exits, or nil
// when no player is attached.
func (p *Process) Wait() <-chan struct{} {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return p.exited
}
