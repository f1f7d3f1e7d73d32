package grpc

import (
	"fmt"
	"net"
	"strconv"
)

const (
	// DefaultAddress binds to loopback; the gRPC surface carries the same
	// trust level as the admin HTTP endpoints.
	DefaultAddress = "127.0.0.1:50051"

	// DefaultMaxRecvMsgSize is the maximum inbound message size (4 MB).
	DefaultMaxRecvMsgSize = 4 * 1024 * 1024

	// DefaultMaxSendMsgSize is the maximum outbound message size (4 MB).
	DefaultMaxSendMsgSize = 4 * 1024 * 1024
)

// ServerConfig holds the gRPC server settings.
type ServerConfig struct {
	// Address is the host:port the server listens on.
	Address string

	// MaxRecvMsgSize caps inbound message size in bytes.
	MaxRecvMsgSize int

	// MaxSendMsgSize caps outbound message size in bytes.
	MaxSendMsgSize int
}

// DefaultServerConfig returns a config with sane defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:        DefaultAddress,
		MaxRecvMsgSize: DefaultMaxRecvMsgSize,
		MaxSendMsgSize: DefaultMaxSendMsgSize,
	}
}

// Validate checks the configuration for obvious mistakes.
func (c *ServerConfig) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("grpc: address must not be empty")
	}
	host, port, err := net.SplitHostPort(c.Address)
	if err != nil {
		return fmt.Errorf("grpc: invalid address %q: %w", c.Address, err)
	}
	if host == "" {
		return fmt.Errorf("grpc: address %q has no host", c.Address)
	}
	p, err := strconv.Atoi(port)
	if err != nil || p < 0 || p > 65535 {
		return fmt.Errorf("grpc: invalid port %q", port)
	}
	if c.MaxRecvMsgSize <= 0 {
		return fmt.Errorf("grpc: max receive message size must be positive")
	}
	if c.MaxSendMsgSize <= 0 {
		return fmt.Errorf("grpc: max send message size must be positive")
	}
	return nil
}
