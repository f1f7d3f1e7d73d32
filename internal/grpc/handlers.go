package grpc

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GetServerInfoRequest asks for node status.
type GetServerInfoRequest struct{}

// GetServerInfoResponse carries the node status.
type GetServerInfoResponse struct {
	Standalone      bool
	Policy          string
	OpenLedgerSeq   uint32
	PendingTxCount  int
	CompleteLedgers string
	ValidatedSeq    uint32
	ValidatedHash   string
}

// GetServerInfo returns the node status.
func (s *Server) GetServerInfo(ctx context.Context, req *GetServerInfoRequest) (*GetServerInfoResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	info := s.svc.GetServerInfo()
	resp := &GetServerInfoResponse{
		Standalone:      info.Standalone,
		Policy:          info.Policy,
		OpenLedgerSeq:   info.OpenLedgerSeq,
		PendingTxCount:  info.PendingTxCount,
		CompleteLedgers: info.CompleteLedgers,
	}
	if info.ValidatedLedger != nil {
		resp.ValidatedSeq = info.ValidatedLedger.Seq
		resp.ValidatedHash = info.ValidatedLedger.Hash
	}
	return resp, nil
}

// GetLedgerRequest selects a ledger by sequence or symbolic name.
type GetLedgerRequest struct {
	// Ledger is a decimal sequence number or one of "validated",
	// "closed", "current". Empty selects the validated ledger.
	Ledger string

	// IncludeTransactions adds the ledger's transaction hashes.
	IncludeTransactions bool
}

// GetLedgerResponse describes one ledger.
type GetLedgerResponse struct {
	LedgerIndex uint32
	LedgerHash  string
	ParentHash  string
	StateHash   string
	CloseTime   int64
	TxCount     uint32
	Closed      bool
	Validated   bool
	TxHashes    []string
}

// GetLedger returns header information for the selected ledger.
func (s *Server) GetLedger(ctx context.Context, req *GetLedgerRequest) (*GetLedgerResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	l, err := s.svc.ResolveLedger(ctx, req.Ledger)
	if err != nil {
		return nil, statusFromError(err)
	}

	h := l.Header()
	resp := &GetLedgerResponse{
		LedgerIndex: h.Sequence,
		ParentHash:  hashHex(h.ParentHash),
		TxCount:     h.TxCount,
		Closed:      h.Closed,
		Validated:   h.Validated,
	}
	if h.Closed {
		resp.LedgerHash = hashHex(h.Hash)
		resp.StateHash = hashHex(h.StateHash)
		resp.CloseTime = h.CloseTime.Unix()
	}
	if req.IncludeTransactions {
		for _, t := range l.Transactions() {
			resp.TxHashes = append(resp.TxHashes, hashHex(t.Hash))
		}
	}
	return resp, nil
}

// GetPoolRequest selects a pool by asset pair.
type GetPoolRequest struct {
	AssetA string
	AssetB string

	// Ledger selects which ledger to read, same values as GetLedgerRequest.
	Ledger string
}

// GetPoolResponse carries pool state.
type GetPoolResponse struct {
	Pool           string
	AssetA         string
	AssetB         string
	ReserveA       uint64
	ReserveB       uint64
	ShareMint      string
	ShareSupply    uint64
	FeeNumerator   uint64
	FeeDenominator uint64
	LedgerIndex    uint32
	Validated      bool
}

// GetPool returns pool reserves and share supply for an asset pair.
func (s *Server) GetPool(ctx context.Context, req *GetPoolRequest) (*GetPoolResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if req.AssetA == "" || req.AssetB == "" {
		return nil, status.Error(codes.InvalidArgument, "asset_a and asset_b are required")
	}

	info, err := s.svc.GetPoolInfo(ctx, req.AssetA, req.AssetB, req.Ledger)
	if err != nil {
		return nil, statusFromError(err)
	}
	return &GetPoolResponse{
		Pool:           info.Pool,
		AssetA:         info.AssetA,
		AssetB:         info.AssetB,
		ReserveA:       info.ReserveA,
		ReserveB:       info.ReserveB,
		ShareMint:      info.ShareMint,
		ShareSupply:    info.ShareSupply,
		FeeNumerator:   info.FeeNumerator,
		FeeDenominator: info.FeeDenominator,
		LedgerIndex:    info.LedgerIndex,
		Validated:      info.Validated,
	}, nil
}

// GetQuoteRequest prices a swap without submitting it.
type GetQuoteRequest struct {
	AssetIn  string
	AssetOut string
	AmountIn uint64
}

// GetQuoteResponse carries the priced swap. Quotes read the open ledger
// and carry no slippage guarantee.
type GetQuoteResponse struct {
	AssetIn    string
	AssetOut   string
	AmountIn   uint64
	Fee        uint64
	NetIn      uint64
	AmountOut  uint64
	ReserveIn  uint64
	ReserveOut uint64
}

// GetQuote prices a swap against the open ledger.
func (s *Server) GetQuote(ctx context.Context, req *GetQuoteRequest) (*GetQuoteResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if req.AssetIn == "" || req.AssetOut == "" {
		return nil, status.Error(codes.InvalidArgument, "asset_in and asset_out are required")
	}
	if req.AmountIn == 0 {
		return nil, status.Error(codes.InvalidArgument, "amount_in must be positive")
	}

	quote, err := s.svc.GetQuote(req.AssetIn, req.AssetOut, req.AmountIn)
	if err != nil {
		return nil, statusFromError(err)
	}
	return &GetQuoteResponse{
		AssetIn:    quote.AssetIn,
		AssetOut:   quote.AssetOut,
		AmountIn:   quote.AmountIn,
		Fee:        quote.Fee,
		NetIn:      quote.NetIn,
		AmountOut:  quote.AmountOut,
		ReserveIn:  quote.ReserveIn,
		ReserveOut: quote.ReserveOut,
	}, nil
}

// GetAccountRequest selects an account's token balances.
type GetAccountRequest struct {
	Account string
	Ledger  string
}

// TokenBalance is one mint balance held by an account.
type TokenBalance struct {
	Mint    string
	Balance uint64
}

// GetAccountResponse lists the balances an account holds.
type GetAccountResponse struct {
	Account     string
	Balances    []TokenBalance
	LedgerIndex uint32
	Validated   bool
}

// GetAccount returns the token balances an account holds in the selected
// ledger.
func (s *Server) GetAccount(ctx context.Context, req *GetAccountRequest) (*GetAccountResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if req.Account == "" {
		return nil, status.Error(codes.InvalidArgument, "account is required")
	}

	info, err := s.svc.GetAccountInfo(ctx, req.Account, req.Ledger)
	if err != nil {
		return nil, statusFromError(err)
	}
	resp := &GetAccountResponse{
		Account:     info.Account,
		LedgerIndex: info.LedgerIndex,
		Validated:   info.Validated,
	}
	for _, b := range info.Balances {
		resp.Balances = append(resp.Balances, TokenBalance{Mint: b.Mint, Balance: b.Balance})
	}
	return resp, nil
}

// GetTransactionRequest selects a transaction by hash.
type GetTransactionRequest struct {
	Hash string
}

// GetTransactionResponse carries a stored transaction and its outcome.
type GetTransactionResponse struct {
	Hash        string
	LedgerIndex uint32
	TxIndex     uint32
	Result      string
	TxJSON      []byte
	MetaJSON    []byte
	Validated   bool
}

// GetTransaction looks a transaction up by hash across closed ledgers,
// the open ledger and the snapshot store.
func (s *Server) GetTransaction(ctx context.Context, req *GetTransactionRequest) (*GetTransactionResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	hash, err := decodeHash(req.Hash)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "hash must be 64 hex characters")
	}

	result, err := s.svc.GetTransaction(ctx, hash)
	if err != nil {
		return nil, statusFromError(err)
	}
	return &GetTransactionResponse{
		Hash:        result.Hash,
		LedgerIndex: result.LedgerSeq,
		TxIndex:     result.TxIndex,
		Result:      result.Result,
		TxJSON:      result.TxJSON,
		MetaJSON:    result.MetaJSON,
		Validated:   result.Validated,
	}, nil
}
