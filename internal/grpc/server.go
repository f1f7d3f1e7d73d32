// Package grpc exposes pool and ledger queries over gRPC for in-process
// tooling and sidecar integrations. The query surface mirrors the JSON-RPC
// methods; mutation still goes through transaction submission.
package grpc

import (
	"fmt"
	"net"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/LeJamon/goAMMd/internal/core/ledger/service"
)

// Server wraps a grpc.Server with lifecycle management.
type Server struct {
	mu         sync.RWMutex
	grpcServer *grpc.Server
	health     *health.Server
	svc        *service.Service
	config     *ServerConfig
	listener   net.Listener
	running    bool
}

// NewServer creates a gRPC server bound to the given ledger service.
func NewServer(cfg *ServerConfig, svc *service.Service) (*Server, error) {
	if cfg == nil {
		cfg = DefaultServerConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, fmt.Errorf("grpc: ledger service must not be nil")
	}

	opts := []grpc.ServerOption{
		grpc.MaxRecvMsgSize(cfg.MaxRecvMsgSize),
		grpc.MaxSendMsgSize(cfg.MaxSendMsgSize),
	}

	s := &Server{
		grpcServer: grpc.NewServer(opts...),
		health:     health.NewServer(),
		svc:        svc,
		config:     cfg,
	}
	grpc_health_v1.RegisterHealthServer(s.grpcServer, s.health)
	return s, nil
}

// Start listens on the configured address and serves until stopped.
// It blocks; use StartAsync to serve in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("grpc: server already running")
	}

	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("grpc: listen on %s: %w", s.config.Address, err)
	}
	s.listener = listener
	s.running = true
	s.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	s.mu.Unlock()

	err = s.grpcServer.Serve(listener)

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	return err
}

// StartAsync serves in a background goroutine and returns once the
// listener is bound. Errors after startup are reported through errCh.
func (s *Server) StartAsync() (<-chan error, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, fmt.Errorf("grpc: server already running")
	}

	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("grpc: listen on %s: %w", s.config.Address, err)
	}
	s.listener = listener
	s.running = true
	s.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		err := s.grpcServer.Serve(listener)

		s.mu.Lock()
		s.running = false
		s.mu.Unlock()

		errCh <- err
		close(errCh)
	}()
	return errCh, nil
}

// Stop drains in-flight RPCs and shuts the server down.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	s.grpcServer.GracefulStop()
	s.running = false
}

// StopNow shuts the server down without waiting for in-flight RPCs.
func (s *Server) StopNow() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	s.grpcServer.Stop()
	s.running = false
}

// IsRunning reports whether the server is accepting connections.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Address returns the bound listener address, or the configured address
// when the server has not started yet.
func (s *Server) Address() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Address
}

// GetGRPCServer exposes the underlying grpc.Server for extra service
// registration before Start.
func (s *Server) GetGRPCServer() *grpc.Server {
	return s.grpcServer
}
