// Package controlserver exposes the driver's control API to the host
// process over a loopback HTTP server.
package controlserver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/opsnotebook/es-driver/internal/driver"
)

// Connector is the session surface the control API drives.
type Connector interface {
	Status() driver.Status
	Connect(ctx context.Context) (driver.View, error)
}

type Server struct {
	addr      string
	connector Connector
	server    *http.Server
	listener  net.Listener
}

// New creates a control server bound to loopback on the given port. The
// trust boundary is "same host, same user": no authentication on purpose.
func New(port int, connector Connector) *Server {
	return &Server{
		addr:      fmt.Sprintf("127.0.0.1:%d", port),
		connector: connector,
	}
}

// Start begins serving in the background. Connect and execute calls can
// legitimately take minutes, so no write timeout is set; the read timeout
// only covers request parsing.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = listener

	s.server = &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		err := s.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Control server error: %v", err)
		}
	}()

	log.Printf("Driver listening on %s", s.addr)
	return nil
}

// Addr returns the bound address, valid after Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
