//go:build windows

package mpv

import (
	"fmt"
	"os"
	"time"

	winio "github.com/Microsoft/go-winio"

	"github.com/remocast/remocast/constant"
)

// endpointName derives the IPC named pipe for the current process.
// The pid suffix keeps concurrently running application instances from
// colliding on the same endpoint.
func endpointName() string {
	return fmt.Sprintf(`\\.\pipe\%s-mpv-%d`, constant.Remocast, os.Getpid())
}

// dialEndpoint opens the platform Transport for the given endpoint.
func dialEndpoint(endpoint string) (Transport, error) {
	timeout := time.Second
	conn, err := winio.DialPipe(endpoint, &timeout)
	if err != nil {
		return nil, err
	}
	return newConnTransport(conn), nil
}

// removeEndpoint is a no-op on Windows; the OS reclaims named pipes.
func removeEndpoint(string) {}
