package mpv

import (
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/spf13/viper"

	"github.com/remocast/remocast/key"
	"github.com/remocast/remocast/log"
)

// request is the wire form of an mpv IPC command.
type request struct {
	Command   []any  `json:"command"`
	RequestID uint64 `json:"request_id"`
}

// response is the wire form of an mpv IPC reply. Event messages share
// the same shape but carry an "event" field and no matching request id.
type response struct {
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`
	RequestID uint64          `json:"request_id"`
	Event     string          `json:"event"`
}

// ok reports whether the reply signals success. mpv uses the literal
// string "success"; an absent field is treated the same way.
func (r *response) ok() bool {
	return r.Error == "" || r.Error == "success"
}

// Client speaks the mpv JSON IPC protocol over a Transport. Commands
// are serialized under a single lock so replies on the shared stream
// can be correlated with the request that produced them.
type Client struct {
	transport Transport
	mutex     sync.Mutex
	requestID atomic.Uint64
}

// NewClient wraps the given transport in an IPC client.
func NewClient(transport Transport) *Client {
	return &Client{transport: transport}
}

// Close releases the underlying transport.
func (c *Client) Close() error {
	return c.transport.Close()
}

// Command runs an mpv command and returns the raw reply payload.
// Event messages and stale replies interleaved on the stream are
// discarded until the reply matching this request arrives or the read
// budget is exhausted.
func (c *Client) Command(args ...any) (json.RawMessage, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	id := c.requestID.Add(1)

	payload, err := json.Marshal(request{Command: args, RequestID: id})
	if err != nil {
		return nil, err
	}

	log.Tracef("mpv: -> %s", payload)

	if err := c.transport.WriteLine(payload); err != nil {
		return nil, err
	}

	attempts := viper.GetInt(key.PlayerReadAttempts)
	for i := 0; i < attempts; i++ {
		line, err := c.transport.ReadLine()
		if err != nil {
			return nil, err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var reply response
		if err := json.Unmarshal([]byte(line), &reply); err != nil {
			log.Warnf("mpv: discarding malformed line: %s", line)
			continue
		}

		if reply.RequestID != id {
			// Either an event broadcast or a reply to an
			// earlier, abandoned request.
			continue
		}

		log.Tracef("mpv: <- %s", line)

		if !reply.ok() {
			return nil, &ProtocolError{Reason: reply.Error}
		}

		return reply.Data, nil
	}

	return nil, ErrResponseTimeout
}

// GetProperty reads an mpv property and decodes it into T.
func GetProperty[T any](client *Client, name string) (value T, err error) {
	data, err := client.Command("get_property", name)
	if err != nil {
		return value, err
	}

	if len(data) == 0 {
		return value, nil
	}

	err = json.Unmarshal(data, &value)
	return value, err
}

// SetProperty writes an mpv property.
func SetProperty[T any](client *Client, name string, value T) error {
	_, err := client.Command("set_property", name, value)
	return err
}
