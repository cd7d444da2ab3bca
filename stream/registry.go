package stream

import (
	"crypto/rand"
	"encoding/hex"
	"sync"

	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Registry maps opaque stream ids to local file paths. Ids are random
// so the server never leaks filesystem layout to the network.
type Registry struct {
	mutex   sync.RWMutex
	streams map[string]string
}

// NewRegistry creates an empty stream registry.
func NewRegistry() *Registry {
	return &Registry{streams: map[string]string{}}
}

// newStreamID generates a random 16-character hex id.
func newStreamID() string {
	buffer := make([]byte, 8)
	lo.Must(rand.Read(buffer))
	return hex.EncodeToString(buffer)
}

// Add registers a file path and returns the id it is served under.
// The same path can be registered multiple times under distinct ids.
func (r *Registry) Add(path string) string {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	id := newStreamID()
	r.streams[id] = path
	return id
}

// Resolve returns the file path registered under the given id.
func (r *Registry) Resolve(id string) mo.Option[string] {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	path, ok := r.streams[id]
	if !ok {
		return mo.None[string]()
	}

	return mo.Some(path)
}

// Remove unregisters a stream. Unknown ids are ignored.
func (r *Registry) Remove(id string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.streams, id)
}

// Clear drops every registered stream.
func (r *Registry) Clear() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.streams = map[string]string{}
}

// Len returns the number of registered streams.
func (r *Registry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.streams)
}
