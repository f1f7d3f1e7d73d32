package rpc

import (
	"encoding/json"
	"errors"

	"github.com/LeJamon/goAMMd/internal/core/ledger/service"
	"github.com/LeJamon/goAMMd/internal/core/ledger/sle"
)

// AccountInfoMethod handles the account_info RPC method.
type AccountInfoMethod struct {
	svc *service.Service
}

func (m *AccountInfoMethod) Handle(ctx *RpcContext, params json.RawMessage) (map[string]interface{}, *RpcError) {
	var request struct {
		Account     string          `json:"account"`
		LedgerIndex json.RawMessage `json:"ledger_index,omitempty"`
	}
	if params != nil {
		if err := json.Unmarshal(params, &request); err != nil {
			return nil, RpcErrorInvalidParams("Invalid parameters: " + err.Error())
		}
	}
	if request.Account == "" {
		return nil, RpcErrorInvalidParams("Missing field 'account'.")
	}

	selector, rpcErr := ledgerSelector(request.LedgerIndex)
	if rpcErr != nil {
		return nil, rpcErr
	}

	result, err := m.svc.GetAccountInfo(ctx.Context, request.Account, selector)
	switch {
	case err == nil:
	case errors.Is(err, sle.ErrBadAccountID):
		return nil, RpcErrorActMalformed("Invalid field 'account'.")
	case errors.Is(err, service.ErrAccountNotFound):
		return nil, RpcErrorActNotFound("Account not found.")
	case errors.Is(err, service.ErrLedgerNotFound), errors.Is(err, service.ErrNoOpenLedger):
		return nil, RpcErrorLgrNotFound("Ledger not found.")
	default:
		return nil, RpcErrorInvalidParams(err.Error())
	}

	return toMap(result)
}

func (m *AccountInfoMethod) RequiredRole() Role {
	return RoleGuest
}
