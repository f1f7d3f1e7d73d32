package rpc

import (
	"encoding/json"
	"errors"

	"github.com/LeJamon/goAMMd/internal/core/ledger/service"
)

// LedgerMethod handles the ledger RPC method.
type LedgerMethod struct {
	svc *service.Service
}

func (m *LedgerMethod) Handle(ctx *RpcContext, params json.RawMessage) (map[string]interface{}, *RpcError) {
	var request struct {
		LedgerIndex  json.RawMessage `json:"ledger_index,omitempty"`
		Transactions bool            `json:"transactions,omitempty"`
	}
	if params != nil {
		if err := json.Unmarshal(params, &request); err != nil {
			return nil, RpcErrorInvalidParams("Invalid parameters: " + err.Error())
		}
	}

	selector, rpcErr := ledgerSelector(request.LedgerIndex)
	if rpcErr != nil {
		return nil, rpcErr
	}

	l, err := m.svc.ResolveLedger(ctx.Context, selector)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrLedgerNotFound), errors.Is(err, service.ErrNoOpenLedger):
		return nil, RpcErrorLgrNotFound("Ledger not found.")
	default:
		return nil, RpcErrorInvalidParams(err.Error())
	}

	h := l.Header()
	ledgerMap := map[string]interface{}{
		"ledger_index": h.Sequence,
		"parent_hash":  hashHex(h.ParentHash),
		"closed":       l.IsClosed(),
		"txn_count":    h.TxCount,
	}
	if l.IsClosed() {
		ledgerMap["ledger_hash"] = hashHex(h.Hash)
		ledgerMap["state_hash"] = hashHex(h.StateHash)
		ledgerMap["close_time"] = h.CloseTime.Unix()
	}

	if request.Transactions {
		txs := l.Transactions()
		hashes := make([]string, 0, len(txs))
		for _, t := range txs {
			hashes = append(hashes, hashHex(t.Hash))
		}
		ledgerMap["transactions"] = hashes
	}

	response := map[string]interface{}{
		"ledger":    ledgerMap,
		"validated": l.IsValidated(),
	}
	if l.IsClosed() {
		response["ledger_index"] = h.Sequence
		response["ledger_hash"] = hashHex(h.Hash)
	} else {
		response["ledger_current_index"] = h.Sequence
	}
	return response, nil
}

func (m *LedgerMethod) RequiredRole() Role {
	return RoleGuest
}

// LedgerAcceptMethod handles the ledger_accept RPC method. It closes the
// open ledger in standalone mode and is restricted to admin callers.
type LedgerAcceptMethod struct {
	svc *service.Service
}

func (m *LedgerAcceptMethod) Handle(ctx *RpcContext, params json.RawMessage) (map[string]interface{}, *RpcError) {
	seq, err := m.svc.AcceptLedger(ctx.Context)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrNotStandalone):
		return nil, RpcErrorNotStandalone("ledger_accept is only possible in standalone mode")
	default:
		return nil, RpcErrorInternal("Failed to accept ledger: " + err.Error())
	}

	return map[string]interface{}{
		"ledger_accepted":      seq,
		"ledger_current_index": seq + 1,
	}, nil
}

func (m *LedgerAcceptMethod) RequiredRole() Role {
	return RoleAdmin
}
