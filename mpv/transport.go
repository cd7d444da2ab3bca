// Package mpv drives an external mpv process over its JSON IPC protocol.
//
// A Transport is the raw line-oriented byte stream, a Client correlates
// requests with replies, a Process supervises the external player's
// lifetime, and a Player translates playback intents into protocol calls.
package mpv

import (
	"bufio"
	"net"
)

// Transport is a line-oriented, bidirectional byte stream to the external
// mpv process. Implementations are platform specific: a Unix domain socket
// on POSIX systems and a named pipe on Windows. Higher layers depend only on
// this capability, never on the platform branch.
type Transport interface {
	// WriteLine writes a single frame followed by a line terminator.
	WriteLine(data []byte) error

	// ReadLine blocks until the next newline-terminated frame arrives.
	ReadLine() (string, error)

	// Close releases the underlying connection.
	Close() error
}

// connTransport adapts a net.Conn to the Transport capability.
type connTransport struct {
	conn   net.Conn
	reader *bufio.Reader
}

func newConnTransport(conn net.Conn) *connTransport {
	return &connTransport{
		conn:   conn,
		reader: bufio.NewReader(conn),
	}
}

func (t *connTransport) WriteLine(data []byte) error {
	_, err := t.conn.Write(append(data, '\n'))
	return err
}

func (t *connTransport) ReadLine() (string, error) {
	return t.reader.ReadString('\n')
}

func (t *connTransport) Close() error {
	return t.conn.Close()
}
