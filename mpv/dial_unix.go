//go:build !windows

package mpv

import (
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/remocast/remocast/constant"
)

// endpointName derives the IPC socket path for the current process.
// The pid suffix keeps concurrently running application instances from
// colliding on the same endpoint.
func endpointName() string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("%s-mpv-%d.sock", constant.Remocast, os.Getpid()))
}

// dialEndpoint opens the platform Transport for the given endpoint.
func dialEndpoint(endpoint string) (Transport, error) {
	conn, err := net.Dial("unix", endpoint)
	if err != nil {
		return nil, err
	}
	return newConnTransport(conn), nil
}

// removeEndpoint cleans up the socket file mpv leaves behind.
func removeEndpoint(endpoint string) {
	_ = os.Remove(endpoint)
}
