package rpc

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/LeJamon/goAMMd/internal/core/ledger/service"
	"github.com/LeJamon/goAMMd/internal/core/ledger/sle"
	"github.com/LeJamon/goAMMd/internal/core/tx"
	"github.com/LeJamon/goAMMd/internal/storage/history"
)

// PoolInfoMethod handles the pool_info RPC method.
type PoolInfoMethod struct {
	svc *service.Service
}

func (m *PoolInfoMethod) Handle(ctx *RpcContext, params json.RawMessage) (map[string]interface{}, *RpcError) {
	var request struct {
		AssetA      string          `json:"asset_a"`
		AssetB      string          `json:"asset_b"`
		LedgerIndex json.RawMessage `json:"ledger_index,omitempty"`
	}
	if params != nil {
		if err := json.Unmarshal(params, &request); err != nil {
			return nil, RpcErrorInvalidParams("Invalid parameters: " + err.Error())
		}
	}
	if request.AssetA == "" {
		return nil, RpcErrorInvalidParams("Missing field 'asset_a'.")
	}
	if request.AssetB == "" {
		return nil, RpcErrorInvalidParams("Missing field 'asset_b'.")
	}

	selector, rpcErr := ledgerSelector(request.LedgerIndex)
	if rpcErr != nil {
		return nil, rpcErr
	}

	result, err := m.svc.GetPoolInfo(ctx.Context, request.AssetA, request.AssetB, selector)
	switch {
	case err == nil:
	case errors.Is(err, sle.ErrBadMintID):
		return nil, RpcErrorInvalidParams(err.Error())
	case errors.Is(err, service.ErrPoolNotFound):
		return nil, RpcErrorPoolNotFound("Pool not found.")
	case errors.Is(err, service.ErrLedgerNotFound), errors.Is(err, service.ErrNoOpenLedger):
		return nil, RpcErrorLgrNotFound("Ledger not found.")
	default:
		return nil, RpcErrorInvalidParams(err.Error())
	}

	return toMap(result)
}

func (m *PoolInfoMethod) RequiredRole() Role {
	return RoleGuest
}

// QuoteMethod handles the quote RPC method. Quotes are computed against the
// open ledger and carry no slippage guarantee.
type QuoteMethod struct {
	svc *service.Service
}

func (m *QuoteMethod) Handle(ctx *RpcContext, params json.RawMessage) (map[string]interface{}, *RpcError) {
	var request struct {
		AssetIn  string          `json:"asset_in"`
		AssetOut string          `json:"asset_out"`
		AmountIn json.RawMessage `json:"amount_in"`
	}
	if params != nil {
		if err := json.Unmarshal(params, &request); err != nil {
			return nil, RpcErrorInvalidParams("Invalid parameters: " + err.Error())
		}
	}
	if request.AssetIn == "" {
		return nil, RpcErrorInvalidParams("Missing field 'asset_in'.")
	}
	if request.AssetOut == "" {
		return nil, RpcErrorInvalidParams("Missing field 'asset_out'.")
	}

	amountIn, rpcErr := parseUint64(request.AmountIn, "amount_in")
	if rpcErr != nil {
		return nil, rpcErr
	}

	result, err := m.svc.GetQuote(request.AssetIn, request.AssetOut, amountIn)
	if err != nil {
		var resErr *service.ResultError
		switch {
		case errors.As(err, &resErr) && resErr.Result == tx.TerNO_POOL:
			return nil, RpcErrorPoolNotFound("Pool not found.")
		case errors.As(err, &resErr):
			return nil, NewRpcError(RpcGENERAL, "quoteFailed", resErr.Error())
		default:
			return nil, RpcErrorInvalidParams(err.Error())
		}
	}

	return toMap(result)
}

func (m *QuoteMethod) RequiredRole() Role {
	return RoleGuest
}

// PoolEventsMethod handles the pool_events RPC method. It reads from the
// history store, so it is only available when history is configured.
type PoolEventsMethod struct {
	svc *service.Service
}

func (m *PoolEventsMethod) Handle(ctx *RpcContext, params json.RawMessage) (map[string]interface{}, *RpcError) {
	var request struct {
		AssetA    string `json:"asset_a"`
		AssetB    string `json:"asset_b"`
		MinLedger uint32 `json:"min_ledger,omitempty"`
		MaxLedger uint32 `json:"max_ledger,omitempty"`
		Limit     int    `json:"limit,omitempty"`
	}
	if params != nil {
		if err := json.Unmarshal(params, &request); err != nil {
			return nil, RpcErrorInvalidParams("Invalid parameters: " + err.Error())
		}
	}
	if request.AssetA == "" {
		return nil, RpcErrorInvalidParams("Missing field 'asset_a'.")
	}
	if request.AssetB == "" {
		return nil, RpcErrorInvalidParams("Missing field 'asset_b'.")
	}

	query := history.EventQuery{
		MinLedger: request.MinLedger,
		MaxLedger: request.MaxLedger,
		Limit:     request.Limit,
	}
	events, err := m.svc.EventsByPool(ctx.Context, request.AssetA, request.AssetB, query)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrNoHistory):
		return nil, RpcErrorNotEnabled("history")
	case errors.Is(err, sle.ErrBadMintID):
		return nil, RpcErrorInvalidParams(err.Error())
	default:
		return nil, RpcErrorInternal("Failed to query events: " + err.Error())
	}

	a, _ := sle.DecodeMintID(strings.ToUpper(request.AssetA))
	b, _ := sle.DecodeMintID(strings.ToUpper(request.AssetB))

	list := make([]map[string]interface{}, 0, len(events))
	for _, ev := range events {
		entry := map[string]interface{}{
			"ledger_index": ev.LedgerSeq,
			"tx_index":     ev.TxIndex,
			"event_index":  ev.EventIndex,
			"tx_hash":      ev.TxHash,
			"event_type":   ev.EventType,
			"event":        json.RawMessage(ev.Payload),
		}
		if ev.Account != "" {
			entry["account"] = ev.Account
		}
		list = append(list, entry)
	}

	return map[string]interface{}{
		"pool":   service.PoolID(a, b),
		"events": list,
		"count":  len(list),
	}, nil
}

func (m *PoolEventsMethod) RequiredRole() Role {
	return RoleGuest
}
