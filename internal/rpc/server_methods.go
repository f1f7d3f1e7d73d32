package rpc

import (
	"encoding/json"

	"github.com/LeJamon/goAMMd/internal/core/ledger/service"
)

// ServerInfoMethod handles the server_info RPC method.
type ServerInfoMethod struct {
	svc *service.Service
}

func (m *ServerInfoMethod) Handle(ctx *RpcContext, params json.RawMessage) (map[string]interface{}, *RpcError) {
	info, rpcErr := toMap(m.svc.GetServerInfo())
	if rpcErr != nil {
		return nil, rpcErr
	}
	return map[string]interface{}{"info": info}, nil
}

func (m *ServerInfoMethod) RequiredRole() Role {
	return RoleGuest
}

// PingMethod handles the ping RPC method.
type PingMethod struct{}

func (m *PingMethod) Handle(ctx *RpcContext, params json.RawMessage) (map[string]interface{}, *RpcError) {
	return map[string]interface{}{}, nil
}

func (m *PingMethod) RequiredRole() Role {
	return RoleGuest
}
