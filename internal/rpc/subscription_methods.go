package rpc

import (
	"encoding/json"
)

// SubscribeMethod rejects subscribe over plain HTTP. Subscriptions need a
// persistent connection and are served on the WebSocket endpoint.
type SubscribeMethod struct{}

func (m *SubscribeMethod) Handle(ctx *RpcContext, params json.RawMessage) (map[string]interface{}, *RpcError) {
	return nil, RpcErrorNotSupported("subscribe is only available over a WebSocket connection")
}

func (m *SubscribeMethod) RequiredRole() Role {
	return RoleGuest
}

// UnsubscribeMethod rejects unsubscribe over plain HTTP.
type UnsubscribeMethod struct{}

func (m *UnsubscribeMethod) Handle(ctx *RpcContext, params json.RawMessage) (map[string]interface{}, *RpcError) {
	return nil, RpcErrorNotSupported("unsubscribe is only available over a WebSocket connection")
}

func (m *UnsubscribeMethod) RequiredRole() Role {
	return RoleGuest
}
