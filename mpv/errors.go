package mpv

import (
	"errors"
	"fmt"
)

var (
	// ErrNotRunning is returned when a command is issued while no
	// player process is attached.
	ErrNotRunning = errors.New("mpv is not running")

	// ErrResponseTimeout is returned when the player stops answering
	// within the configured read window.
	ErrResponseTimeout = errors.New("timed out waiting for mpv response")
)

// ProtocolError is an error reported by mpv itself in a command reply.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("mpv: %s", e.Reason)
}
