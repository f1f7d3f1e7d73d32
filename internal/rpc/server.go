package rpc

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/LeJamon/goAMMd/internal/core/ledger/service"
)

// Server handles HTTP JSON-RPC requests.
type Server struct {
	registry *MethodRegistry
	svc      *service.Service
	timeout  time.Duration
}

// NewServer creates an RPC server over the given ledger service. A zero
// timeout disables per-request deadlines.
func NewServer(svc *service.Service, timeout time.Duration) *Server {
	server := &Server{
		registry: NewMethodRegistry(),
		svc:      svc,
		timeout:  timeout,
	}
	registerMethods(server.registry, svc)
	return server
}

// Registry exposes the method registry, shared with the WebSocket server.
func (s *Server) Registry() *MethodRegistry {
	return s.registry
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		s.handleGetRequest(w, r)
	case http.MethodPost:
		s.handlePostRequest(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGetRequest serves simple queries via ?command=name.
func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Query().Get("command")
	if method == "" {
		method = "server_info"
	}

	result, rpcErr := s.executeMethod(r, method, nil)
	s.writeResponse(w, nil, result, rpcErr)
}

// handlePostRequest serves the standard JSON-RPC envelope.
func (s *Server) handlePostRequest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeResponse(w, nil, nil, RpcErrorInternal("Failed to read request body"))
		return
	}
	defer r.Body.Close()

	var request RpcRequest
	if err := json.Unmarshal(body, &request); err != nil {
		s.writeResponse(w, nil, nil, NewRpcError(RpcPARSE_ERROR, "jsonInvalid", "Invalid JSON: "+err.Error()))
		return
	}
	if request.Method == "" {
		s.writeResponse(w, nil, nil, RpcErrorMissingCommand())
		return
	}

	var params json.RawMessage
	if len(request.Params) > 0 {
		params = request.Params[0]
	}

	// Echoed back in error responses so callers can match failures
	var requestObj map[string]interface{}
	if params != nil {
		if err := json.Unmarshal(params, &requestObj); err != nil {
			requestObj = nil
		}
	}
	if requestObj == nil {
		requestObj = make(map[string]interface{})
	}
	requestObj["command"] = request.Method

	result, rpcErr := s.executeMethod(r, request.Method, params)
	s.writeResponse(w, requestObj, result, rpcErr)
}

// executeMethod dispatches one method call with role enforcement.
func (s *Server) executeMethod(r *http.Request, method string, params json.RawMessage) (map[string]interface{}, *RpcError) {
	handler, exists := s.registry.Get(method)
	if !exists {
		return nil, RpcErrorMethodNotFound(method)
	}

	clientIP := getClientIP(r)
	role := roleForIP(clientIP)
	if role < handler.RequiredRole() {
		return nil, RpcErrorCommandUntrusted(method)
	}

	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	return handler.Handle(&RpcContext{
		Context:  ctx,
		Role:     role,
		IsAdmin:  role >= RoleAdmin,
		ClientIP: clientIP,
	}, params)
}

// writeResponse writes the response envelope. The payload sits under
// "result" with result.status set to "success" or "error"; errors carry
// the request object back for correlation.
func (s *Server) writeResponse(w http.ResponseWriter, request map[string]interface{}, result map[string]interface{}, rpcErr *RpcError) {
	var resultObj map[string]interface{}

	if rpcErr != nil {
		resultObj = map[string]interface{}{
			"status":        "error",
			"error":         rpcErr.ErrorString,
			"error_code":    rpcErr.Code,
			"error_message": rpcErr.Message,
		}
		if request != nil {
			resultObj["request"] = request
		}
	} else {
		if result == nil {
			result = make(map[string]interface{})
		}
		result["status"] = "success"
		resultObj = result
	}

	data, err := json.Marshal(map[string]interface{}{"result": resultObj})
	if err != nil {
		log.Printf("rpc: marshal response: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// getClientIP extracts the caller address, honoring proxy headers.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// roleForIP grants admin to loopback callers. ledger_accept and other
// admin methods stay local-only this way.
func roleForIP(ip string) Role {
	if parsed := net.ParseIP(ip); parsed != nil && parsed.IsLoopback() {
		return RoleAdmin
	}
	return RoleUser
}
