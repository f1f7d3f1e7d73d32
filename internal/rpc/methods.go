package rpc

import (
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/LeJamon/goAMMd/internal/core/ledger/service"
)

// registerMethods wires every RPC method to the ledger service. The HTTP
// and WebSocket servers share one registry built here.
func registerMethods(registry *MethodRegistry, svc *service.Service) {
	// Server information
	registry.Register("server_info", &ServerInfoMethod{svc: svc})
	registry.Register("ping", &PingMethod{})

	// Ledger
	registry.Register("ledger", &LedgerMethod{svc: svc})
	registry.Register("ledger_accept", &LedgerAcceptMethod{svc: svc})

	// Transactions
	registry.Register("submit", &SubmitMethod{svc: svc})
	registry.Register("tx", &TxMethod{svc: svc})

	// Accounts
	registry.Register("account_info", &AccountInfoMethod{svc: svc})

	// Pools
	registry.Register("pool_info", &PoolInfoMethod{svc: svc})
	registry.Register("quote", &QuoteMethod{svc: svc})
	registry.Register("pool_events", &PoolEventsMethod{svc: svc})

	// Subscriptions only work over WebSocket; these reject over HTTP
	registry.Register("subscribe", &SubscribeMethod{})
	registry.Register("unsubscribe", &UnsubscribeMethod{})
}

// toMap flattens a tagged struct into the generic result object.
func toMap(v interface{}) (map[string]interface{}, *RpcError) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, RpcErrorInternal("Failed to encode result: " + err.Error())
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, RpcErrorInternal("Failed to encode result: " + err.Error())
	}
	return m, nil
}

// ledgerSelector reads the ledger_index parameter, which may be a sequence
// number or one of the shortcuts "current", "closed" and "validated".
func ledgerSelector(raw json.RawMessage) (string, *RpcError) {
	if len(raw) == 0 {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	return "", RpcErrorInvalidParams("Invalid field 'ledger_index'.")
}

// parseUint64 reads an amount parameter given as a number or a string.
func parseUint64(raw json.RawMessage, field string) (uint64, *RpcError) {
	if len(raw) == 0 {
		return 0, RpcErrorInvalidParams("Missing field '" + field + "'.")
	}
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, RpcErrorInvalidParams("Invalid field '" + field + "'.")
	}
	return v, nil
}

// decodeHash32 reads a 64-character hex hash parameter.
func decodeHash32(s string) ([32]byte, bool) {
	var hash [32]byte
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != 32 {
		return hash, false
	}
	copy(hash[:], raw)
	return hash, true
}

func hashHex(h [32]byte) string {
	return strings.ToUpper(hex.EncodeToString(h[:]))
}
