package grpc

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/LeJamon/goAMMd/internal/core/ledger/service"
	"github.com/LeJamon/goAMMd/internal/core/ledger/sle"
	"github.com/LeJamon/goAMMd/internal/core/tx"
)

// statusFromError maps service errors onto gRPC status codes.
func statusFromError(err error) error {
	switch {
	case errors.Is(err, service.ErrLedgerNotFound),
		errors.Is(err, service.ErrNoOpenLedger):
		return status.Error(codes.NotFound, "ledger not found")
	case errors.Is(err, service.ErrPoolNotFound):
		return status.Error(codes.NotFound, "pool not found")
	case errors.Is(err, service.ErrAccountNotFound):
		return status.Error(codes.NotFound, "account not found")
	case errors.Is(err, service.ErrTransactionNotFound):
		return status.Error(codes.NotFound, "transaction not found")
	case errors.Is(err, sle.ErrBadAccountID),
		errors.Is(err, sle.ErrBadMintID):
		return status.Error(codes.InvalidArgument, err.Error())
	}

	var resErr *service.ResultError
	if errors.As(err, &resErr) {
		if resErr.Result == tx.TerNO_POOL {
			return status.Error(codes.NotFound, "pool not found")
		}
		return status.Error(codes.FailedPrecondition, resErr.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

func hashHex(h [32]byte) string {
	return strings.ToUpper(hex.EncodeToString(h[:]))
}

func decodeHash(s string) ([32]byte, error) {
	var out [32]byte
	raw, err := hex.DecodeString(s)
	if err != nil {
		return out, err
	}
	if len(raw) != 32 {
		return out, fmt.Errorf("expected 32 bytes, got %d", len(raw))
	}
	copy(out[:], raw)
	return out, nil
}
