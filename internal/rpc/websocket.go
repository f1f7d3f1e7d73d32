package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/LeJamon/goAMMd/internal/core/ledger/service"
)

const (
	// wsWriteTimeout bounds every write, pings included.
	wsWriteTimeout = 10 * time.Second

	// wsPongTimeout is how long a connection may stay silent before the
	// read side gives up. Pongs reset the clock.
	wsPongTimeout = 60 * time.Second

	// wsPingInterval must be shorter than wsPongTimeout.
	wsPingInterval = 54 * time.Second

	// wsMaxMessageSize caps inbound messages at 512KB.
	wsMaxMessageSize = 512 * 1024
)

// WebSocketServer serves the RPC method set over WebSocket and adds the
// subscribe and unsubscribe commands for live streams. Commands arrive
// flat, with the command name and id beside the parameters.
type WebSocketServer struct {
	upgrader websocket.Upgrader
	manager  *SubscriptionManager
	registry *MethodRegistry

	mu    sync.RWMutex
	conns map[string]*wsConn

	nextID atomic.Uint64
}

// wsConn ties one WebSocket connection to its subscription state. The
// context covers the connection's lifetime; canceling it stops both pumps.
type wsConn struct {
	id       string
	conn     *websocket.Conn
	sub      *Connection
	clientIP string
	role     Role

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// WebSocketResponse is the reply envelope for commands. Errors are sent
// flat instead, with the error fields at the top level.
type WebSocketResponse struct {
	Type   string                 `json:"type"`
	ID     interface{}            `json:"id,omitempty"`
	Status string                 `json:"status"`
	Result map[string]interface{} `json:"result,omitempty"`
}

// NewWebSocketServer creates a WebSocket server sharing the manager with
// the event publisher. It registers its own copy of the method set.
func NewWebSocketServer(svc *service.Service, manager *SubscriptionManager) *WebSocketServer {
	registry := NewMethodRegistry()
	registerMethods(registry, svc)

	return &WebSocketServer{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		manager:  manager,
		registry: registry,
		conns:    make(map[string]*wsConn),
	}
}

// Manager returns the subscription manager the server broadcasts through.
func (ws *WebSocketServer) Manager() *SubscriptionManager {
	return ws.manager
}

// ServeHTTP upgrades the request and starts the connection's read and
// write pumps. The connection context is detached from the request
// context, which dies as soon as this handler returns.
func (ws *WebSocketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	clientIP := getClientIP(r)

	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	id := fmt.Sprintf("conn-%d", ws.nextID.Add(1))
	wc := &wsConn{
		id:       id,
		conn:     conn,
		sub:      NewConnection(id),
		clientIP: clientIP,
		role:     roleForIP(clientIP),
		ctx:      ctx,
		cancel:   cancel,
	}

	ws.mu.Lock()
	ws.conns[id] = wc
	ws.mu.Unlock()
	ws.manager.AddConnection(wc.sub)

	go ws.readPump(wc)
	go ws.writePump(wc)
}

// readPump reads commands until the connection errors or closes. Pongs
// push the read deadline forward.
func (ws *WebSocketServer) readPump(wc *wsConn) {
	defer ws.closeConnection(wc)

	wc.conn.SetReadLimit(wsMaxMessageSize)
	wc.conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	wc.conn.SetPongHandler(func(string) error {
		return wc.conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	})

	for {
		_, message, err := wc.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("WebSocket read error on %s: %v", wc.id, err)
			}
			return
		}
		ws.handleMessage(wc, message)
	}
}

// writePump drains the send buffer and keeps the connection alive with
// pings.
func (ws *WebSocketServer) writePump(wc *wsConn) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	defer ws.closeConnection(wc)

	for {
		select {
		case <-wc.ctx.Done():
			return
		case <-ticker.C:
			wc.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := wc.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case message := <-wc.sub.Send():
			wc.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := wc.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		}
	}
}

// handleMessage dispatches one inbound command.
func (ws *WebSocketServer) handleMessage(wc *wsConn, message []byte) {
	var fields map[string]interface{}
	if err := json.Unmarshal(message, &fields); err != nil {
		ws.sendError(wc, nil, RpcErrorInvalidParams("Invalid JSON: "+err.Error()))
		return
	}

	command, _ := fields["command"].(string)
	id := fields["id"]
	if command == "" {
		ws.sendError(wc, id, RpcErrorMissingCommand())
		return
	}

	// Everything besides command and id is the parameter object.
	delete(fields, "command")
	delete(fields, "id")
	var params json.RawMessage
	if len(fields) > 0 {
		params, _ = json.Marshal(fields)
	}

	switch command {
	case "subscribe":
		ws.handleSubscribe(wc, id, params)
	case "unsubscribe":
		ws.handleUnsubscribe(wc, id, params)
	default:
		ws.handleCommand(wc, command, id, params)
	}
}

func (ws *WebSocketServer) handleSubscribe(wc *wsConn, id interface{}, params json.RawMessage) {
	var request SubscriptionRequest
	if len(params) > 0 {
		if err := json.Unmarshal(params, &request); err != nil {
			ws.sendError(wc, id, RpcErrorInvalidParams("Invalid subscription parameters: "+err.Error()))
			return
		}
	}

	if rpcErr := ws.manager.Subscribe(wc.sub, request); rpcErr != nil {
		ws.sendError(wc, id, rpcErr)
		return
	}

	ws.sendResponse(wc, WebSocketResponse{
		Type:   "response",
		ID:     id,
		Status: "success",
		Result: map[string]interface{}{"subscribed": true},
	})
}

func (ws *WebSocketServer) handleUnsubscribe(wc *wsConn, id interface{}, params json.RawMessage) {
	var request SubscriptionRequest
	if len(params) > 0 {
		if err := json.Unmarshal(params, &request); err != nil {
			ws.sendError(wc, id, RpcErrorInvalidParams("Invalid subscription parameters: "+err.Error()))
			return
		}
	}

	if rpcErr := ws.manager.Unsubscribe(wc.sub, request); rpcErr != nil {
		ws.sendError(wc, id, rpcErr)
		return
	}

	ws.sendResponse(wc, WebSocketResponse{
		Type:   "response",
		ID:     id,
		Status: "success",
		Result: map[string]interface{}{"unsubscribed": true},
	})
}

func (ws *WebSocketServer) handleCommand(wc *wsConn, command string, id interface{}, params json.RawMessage) {
	handler, ok := ws.registry.Get(command)
	if !ok {
		ws.sendError(wc, id, RpcErrorMethodNotFound(command))
		return
	}

	if wc.role < handler.RequiredRole() {
		ws.sendError(wc, id, RpcErrorCommandUntrusted(command))
		return
	}

	rpcCtx := &RpcContext{
		Context:  wc.ctx,
		Role:     wc.role,
		IsAdmin:  wc.role >= RoleAdmin,
		ClientIP: wc.clientIP,
	}

	result, rpcErr := handler.Handle(rpcCtx, params)
	if rpcErr != nil {
		ws.sendError(wc, id, rpcErr)
		return
	}

	ws.sendResponse(wc, WebSocketResponse{
		Type:   "response",
		ID:     id,
		Status: "success",
		Result: result,
	})
}

func (ws *WebSocketServer) sendResponse(wc *wsConn, response WebSocketResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		log.Printf("Failed to marshal WebSocket response: %v", err)
		return
	}

	if !wc.sub.trySend(data) {
		log.Printf("WebSocket send buffer full, closing connection %s", wc.id)
		ws.closeConnection(wc)
	}
}

// sendError sends an error with the fields flat at the top level.
func (ws *WebSocketServer) sendError(wc *wsConn, id interface{}, rpcErr *RpcError) {
	response := map[string]interface{}{
		"type":          "response",
		"status":        "error",
		"error":         rpcErr.ErrorString,
		"error_code":    rpcErr.Code,
		"error_message": rpcErr.Message,
	}
	if id != nil {
		response["id"] = id
	}

	data, err := json.Marshal(response)
	if err != nil {
		log.Printf("Failed to marshal WebSocket error: %v", err)
		return
	}

	if !wc.sub.trySend(data) {
		ws.closeConnection(wc)
	}
}

func (ws *WebSocketServer) closeConnection(wc *wsConn) {
	wc.closeOnce.Do(func() {
		wc.cancel()

		ws.mu.Lock()
		delete(ws.conns, wc.id)
		ws.mu.Unlock()
		ws.manager.RemoveConnection(wc.id)

		wc.conn.Close()
	})
}

// Close terminates every active connection. HTTP listener shutdown does
// not reach hijacked WebSocket connections, so the daemon calls this on
// the way down.
func (ws *WebSocketServer) Close() {
	ws.mu.RLock()
	conns := make([]*wsConn, 0, len(ws.conns))
	for _, wc := range ws.conns {
		conns = append(conns, wc)
	}
	ws.mu.RUnlock()

	for _, wc := range conns {
		ws.closeConnection(wc)
	}
}
