// Package rpc exposes the pool daemon over HTTP JSON-RPC and WebSocket.
// Requests use the envelope {"method": "...", "params": [{...}]} over HTTP
// and a flat {"command": "...", ...} object over WebSocket; responses carry
// their payload under "result" with a "status" field.
package rpc

import (
	"context"
	"encoding/json"
	"sync"
)

// RpcRequest is the HTTP request envelope. Params is an array holding a
// single parameter object.
type RpcRequest struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params,omitempty"`
}

// Role gates access to methods. Loopback connections get RoleAdmin,
// everything else RoleUser.
type Role int

const (
	RoleGuest Role = iota
	RoleUser
	RoleAdmin
)

// RpcContext carries request-scoped information into method handlers.
type RpcContext struct {
	Context  context.Context
	Role     Role
	IsAdmin  bool
	ClientIP string
}

// MethodHandler is implemented by every RPC method.
type MethodHandler interface {
	Handle(ctx *RpcContext, params json.RawMessage) (map[string]interface{}, *RpcError)
	RequiredRole() Role
}

// MethodRegistry maps method names to handlers.
type MethodRegistry struct {
	mu      sync.RWMutex
	methods map[string]MethodHandler
}

func NewMethodRegistry() *MethodRegistry {
	return &MethodRegistry{
		methods: make(map[string]MethodHandler),
	}
}

func (r *MethodRegistry) Register(name string, handler MethodHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.methods[name] = handler
}

func (r *MethodRegistry) Get(name string) (MethodHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handler, exists := r.methods[name]
	return handler, exists
}

func (r *MethodRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	methods := make([]string, 0, len(r.methods))
	for name := range r.methods {
		methods = append(methods, name)
	}
	return methods
}

// SubscriptionType names a WebSocket stream.
type SubscriptionType string

const (
	// SubLedger delivers a message each time a ledger closes.
	SubLedger SubscriptionType = "ledger"

	// SubTransactions delivers every validated transaction.
	SubTransactions SubscriptionType = "transactions"

	// SubPools delivers pool lifecycle and trade events, optionally
	// filtered to specific pools.
	SubPools SubscriptionType = "pools"
)

// PoolSelector identifies one pool by its asset pair.
type PoolSelector struct {
	AssetA string `json:"asset_a"`
	AssetB string `json:"asset_b"`
}

// SubscriptionRequest is the parameter object of subscribe and unsubscribe.
// Pools narrows the pools stream to the named pairs; without it the stream
// carries every pool.
type SubscriptionRequest struct {
	Streams []SubscriptionType `json:"streams,omitempty"`
	Pools   []PoolSelector     `json:"pools,omitempty"`
}
