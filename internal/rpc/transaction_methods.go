package rpc

import (
	"encoding/json"
	"errors"

	"github.com/LeJamon/goAMMd/internal/core/ledger/service"
	"github.com/LeJamon/goAMMd/internal/core/tx"
)

// SubmitMethod handles the submit RPC method.
type SubmitMethod struct {
	svc *service.Service
}

func (m *SubmitMethod) Handle(ctx *RpcContext, params json.RawMessage) (map[string]interface{}, *RpcError) {
	var request struct {
		TxJSON json.RawMessage `json:"tx_json"`
	}
	if params != nil {
		if err := json.Unmarshal(params, &request); err != nil {
			return nil, RpcErrorInvalidParams("Invalid parameters: " + err.Error())
		}
	}
	if len(request.TxJSON) == 0 {
		return nil, RpcErrorInvalidParams("Missing field 'tx_json'.")
	}

	transaction, err := tx.FromJSON(request.TxJSON)
	if err != nil {
		return nil, RpcErrorInvalidParams("Invalid transaction: " + err.Error())
	}

	result, err := m.svc.SubmitTransaction(transaction)
	if err != nil {
		return nil, RpcErrorInternal("Failed to submit transaction: " + err.Error())
	}

	var txMap map[string]interface{}
	if err := json.Unmarshal(request.TxJSON, &txMap); err != nil {
		txMap = map[string]interface{}{}
	}
	if result.Hash != "" {
		txMap["hash"] = result.Hash
	}

	return map[string]interface{}{
		"engine_result":          result.Result.String(),
		"engine_result_code":     int(result.Result),
		"engine_result_message":  result.Message,
		"applied":                result.Applied,
		"accepted":               result.Applied,
		"current_ledger_index":   result.OpenLedger,
		"validated_ledger_index": result.ValidatedLedger,
		"tx_json":                txMap,
	}, nil
}

func (m *SubmitMethod) RequiredRole() Role {
	return RoleUser
}

// TxMethod handles the tx RPC method.
type TxMethod struct {
	svc *service.Service
}

func (m *TxMethod) Handle(ctx *RpcContext, params json.RawMessage) (map[string]interface{}, *RpcError) {
	var request struct {
		Transaction string `json:"transaction"`
	}
	if params != nil {
		if err := json.Unmarshal(params, &request); err != nil {
			return nil, RpcErrorInvalidParams("Invalid parameters: " + err.Error())
		}
	}
	if request.Transaction == "" {
		return nil, RpcErrorInvalidParams("Missing field 'transaction'.")
	}

	hash, ok := decodeHash32(request.Transaction)
	if !ok {
		return nil, RpcErrorInvalidParams("Invalid field 'transaction'.")
	}

	result, err := m.svc.GetTransaction(ctx.Context, hash)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrTransactionNotFound):
		return nil, RpcErrorTxnNotFound("Transaction not found.")
	default:
		return nil, RpcErrorInternal("Failed to look up transaction: " + err.Error())
	}

	return toMap(result)
}

func (m *TxMethod) RequiredRole() Role {
	return RoleGuest
}
