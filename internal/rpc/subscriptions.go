package rpc

import (
	"encoding/json"
	"log"
	"strings"
	"sync"

	"github.com/LeJamon/goAMMd/internal/core/ledger/service"
	"github.com/LeJamon/goAMMd/internal/core/ledger/sle"
)

// Connection is one subscriber. Outbound messages go through a buffered
// channel so broadcasts never block; a reader that falls behind loses
// messages rather than stalling the publisher.
type Connection struct {
	ID   string
	send chan []byte

	mu      sync.RWMutex
	streams map[SubscriptionType]bool
	pools   map[string]bool
}

// NewConnection creates a subscriber with an empty subscription set.
func NewConnection(id string) *Connection {
	return &Connection{
		ID:      id,
		send:    make(chan []byte, 256),
		streams: make(map[SubscriptionType]bool),
		pools:   make(map[string]bool),
	}
}

// Send exposes the outbound channel for the connection's write loop.
func (c *Connection) Send() <-chan []byte {
	return c.send
}

func (c *Connection) trySend(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Connection) wantsStream(stream SubscriptionType) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.streams[stream]
}

// wantsPool reports whether pool events for the given pool should reach
// this connection. Subscribing to the pools stream covers every pool;
// pool selectors cover just the listed pairs.
func (c *Connection) wantsPool(pool string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.streams[SubPools] || c.pools[pool]
}

// SubscriptionManager tracks which connection wants which stream and fans
// published messages out to them.
type SubscriptionManager struct {
	mu    sync.RWMutex
	conns map[string]*Connection
}

func NewSubscriptionManager() *SubscriptionManager {
	return &SubscriptionManager{
		conns: make(map[string]*Connection),
	}
}

func (m *SubscriptionManager) AddConnection(conn *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conns[conn.ID] = conn
}

func (m *SubscriptionManager) RemoveConnection(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conns, id)
}

// ConnectionCount returns the number of registered connections.
func (m *SubscriptionManager) ConnectionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conns)
}

// Subscribe applies a subscription request to the connection. Stream names
// and pool selectors are validated up front; nothing is applied on error.
func (m *SubscriptionManager) Subscribe(conn *Connection, request SubscriptionRequest) *RpcError {
	streams, pools, rpcErr := resolveSubscription(request)
	if rpcErr != nil {
		return rpcErr
	}

	conn.mu.Lock()
	defer conn.mu.Unlock()
	for _, stream := range streams {
		conn.streams[stream] = true
	}
	for _, pool := range pools {
		conn.pools[pool] = true
	}
	return nil
}

// Unsubscribe removes the listed streams and pool selectors from the
// connection. Entries that were never subscribed are ignored.
func (m *SubscriptionManager) Unsubscribe(conn *Connection, request SubscriptionRequest) *RpcError {
	streams, pools, rpcErr := resolveSubscription(request)
	if rpcErr != nil {
		return rpcErr
	}

	conn.mu.Lock()
	defer conn.mu.Unlock()
	for _, stream := range streams {
		delete(conn.streams, stream)
	}
	for _, pool := range pools {
		delete(conn.pools, pool)
	}
	return nil
}

// BroadcastToStream sends a message to every connection subscribed to the
// stream. Connections with a full send buffer are skipped.
func (m *SubscriptionManager) BroadcastToStream(stream SubscriptionType, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal %s stream message: %v", stream, err)
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, conn := range m.conns {
		if !conn.wantsStream(stream) {
			continue
		}
		if !conn.trySend(data) {
			log.Printf("Dropping %s message for slow connection %s", stream, conn.ID)
		}
	}
}

// BroadcastPoolEvent sends a pool event to every connection whose
// subscription covers the pool.
func (m *SubscriptionManager) BroadcastPoolEvent(pool string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal pool event: %v", err)
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, conn := range m.conns {
		if !conn.wantsPool(pool) {
			continue
		}
		if !conn.trySend(data) {
			log.Printf("Dropping pool event for slow connection %s", conn.ID)
		}
	}
}

// resolveSubscription validates a subscription request and resolves pool
// selectors to pool IDs.
func resolveSubscription(request SubscriptionRequest) ([]SubscriptionType, []string, *RpcError) {
	streams := make([]SubscriptionType, 0, len(request.Streams))
	for _, stream := range request.Streams {
		switch stream {
		case SubLedger, SubTransactions, SubPools:
			streams = append(streams, stream)
		default:
			return nil, nil, RpcErrorStreamMalformed("Unknown stream: " + string(stream))
		}
	}

	pools := make([]string, 0, len(request.Pools))
	for _, selector := range request.Pools {
		a, err := sle.DecodeMintID(strings.ToUpper(selector.AssetA))
		if err != nil {
			return nil, nil, RpcErrorInvalidParams("Invalid field 'asset_a'.")
		}
		b, err := sle.DecodeMintID(strings.ToUpper(selector.AssetB))
		if err != nil {
			return nil, nil, RpcErrorInvalidParams("Invalid field 'asset_b'.")
		}
		pools = append(pools, service.PoolID(a, b))
	}

	return streams, pools, nil
}
