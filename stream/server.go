// Package stream serves local media files over HTTP for playback on
// other devices on the network, most notably smart TVs. Files are
// published under random ids through a Registry and delivered with
// byte-range support by an embedded HTTP server.
package stream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/cors"
	"github.com/samber/mo"

	"github.com/remocast/remocast/log"
)

var (
	// ErrAlreadyRunning is returned when Start is called on a server
	// that is already listening.
	ErrAlreadyRunning = errors.New("streaming server is already running")

	// ErrNotRunning is returned for operations that need a bound
	// server address while the server is stopped.
	ErrNotRunning = errors.New("streaming server is not running")
)

const shutdownTimeout = 3 * time.Second

// Binding is the address a running server is reachable at from the
// local network.
type Binding struct {
	IP   string `json:"ip"`
	Port int    `json:"port"`
}

// Server is the streaming HTTP server. The zero value is not usable;
// construct with NewServer.
type Server struct {
	mutex    sync.Mutex
	registry *Registry
	server   *http.Server
	binding  mo.Option[Binding]
}

// NewServer creates a stopped streaming server with an empty registry.
func NewServer() *Server {
	return &Server{registry: NewRegistry()}
}

// Registry returns the stream registry backing this server.
func (s *Server) Registry() *Registry {
	return s.registry
}

// Start binds the server on all interfaces at the given port. Port
// zero picks a free one. Televisions fetch from a different origin, so
// responses allow any.
func (s *Server) Start(port int) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.binding.IsPresent() {
		return ErrAlreadyRunning
	}

	listener, err := net.Listen("tcp", fmt.Sprintf("0.0.0.0:%d", port))
	if err != nil {
		return fmt.Errorf("bind streaming server: %w", err)
	}

	server := &http.Server{
		Handler: cors.AllowAll().Handler(newHandler(s.registry)),
	}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("streaming server: %s", err)
		}
	}()

	bound := listener.Addr().(*net.TCPAddr).Port
	s.server = server
	s.binding = mo.Some(Binding{IP: LocalIP(), Port: bound})

	log.Infof("streaming server: listening on port %d", bound)
	return nil
}

// Stop shuts the server down and clears the registry. Stopping a
// stopped server is a no-op.
func (s *Server) Stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = s.server.Shutdown(ctx)
		s.server = nil
	}

	s.binding = mo.None[Binding]()
	s.registry.Clear()
}

// Binding returns the address of a running server.
func (s *Server) Binding() mo.Option[Binding] {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.binding
}

// URL returns the base URL of a running server.
func (s *Server) URL() mo.Option[string] {
	binding, ok := s.Binding().Get()
	if !ok {
		return mo.None[string]()
	}

	return mo.Some(fmt.Sprintf("http://%s:%d", binding.IP, binding.Port))
}

// StreamURL returns the URL the given stream id is served under.
func (s *Server) StreamURL(id string) mo.Option[string] {
	base, ok := s.URL().Get()
	if !ok {
		return mo.None[string]()
	}

	return mo.Some(fmt.Sprintf("%s/stream/%s", base, id))
}
