package grpc

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/LeJamon/goAMMd/internal/core/ledger/genesis"
	"github.com/LeJamon/goAMMd/internal/core/ledger/service"
	"github.com/LeJamon/goAMMd/internal/core/tx/pool"
)

var (
	testBase  = genesis.DevMintID("base")
	testQuote = genesis.DevMintID("quote")

	testProvider = strings.Repeat("AB", 20)
	testShare    = strings.Repeat("5A", 32)
)

func newTestService(t *testing.T) *service.Service {
	t.Helper()

	cfg := service.DefaultConfig()
	cfg.Genesis = genesis.Config{
		Mints: []genesis.MintSeed{
			{ID: testBase, Decimals: 6},
			{ID: testQuote, Decimals: 6},
		},
		Accounts: []genesis.BalanceSeed{
			{Account: testProvider, Mint: testBase, Balance: 2_000_000},
			{Account: testProvider, Mint: testQuote, Balance: 2_000_000},
		},
	}
	svc, err := service.New(cfg)
	require.NoError(t, err)
	require.NoError(t, svc.Start(context.Background()))
	return svc
}

func newTestServer(t *testing.T) (*Server, *service.Service) {
	t.Helper()

	svc := newTestService(t)
	server, err := NewServer(DefaultServerConfig(), svc)
	require.NoError(t, err)
	return server, svc
}

// seedPool creates the base/quote pool with a 0.3% fee, funds it 1:1 and
// closes the ledger.
func seedPool(t *testing.T, svc *service.Service) {
	t.Helper()

	create, err := svc.SubmitTransaction(pool.NewPoolCreate(testProvider, testBase, testQuote, testShare, 3, 1000))
	require.NoError(t, err)
	require.True(t, create.Applied, "pool create failed with %s", create.Result.String())

	deposit, err := svc.SubmitTransaction(pool.NewPoolDeposit(testProvider, testBase, testQuote, 1_000_000, 1_000_000, 1))
	require.NoError(t, err)
	require.True(t, deposit.Applied, "pool deposit failed with %s", deposit.Result.String())

	_, err = svc.AcceptLedger(context.Background())
	require.NoError(t, err)
}

func TestServerConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ServerConfig)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*ServerConfig) {}},
		{name: "empty address", mutate: func(c *ServerConfig) { c.Address = "" }, wantErr: true},
		{name: "no port", mutate: func(c *ServerConfig) { c.Address = "127.0.0.1" }, wantErr: true},
		{name: "bad port", mutate: func(c *ServerConfig) { c.Address = "127.0.0.1:notaport" }, wantErr: true},
		{name: "zero recv size", mutate: func(c *ServerConfig) { c.MaxRecvMsgSize = 0 }, wantErr: true},
		{name: "zero send size", mutate: func(c *ServerConfig) { c.MaxSendMsgSize = 0 }, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultServerConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestServerLifecycle(t *testing.T) {
	svc := newTestService(t)

	cfg := DefaultServerConfig()
	cfg.Address = "127.0.0.1:0"
	server, err := NewServer(cfg, svc)
	require.NoError(t, err)

	errCh, err := server.StartAsync()
	require.NoError(t, err)
	require.True(t, server.IsRunning())
	require.NotEqual(t, cfg.Address, server.Address())

	conn, err := grpc.NewClient(server.Address(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	health, err := grpc_health_v1.NewHealthClient(conn).Check(context.Background(), &grpc_health_v1.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, health.Status)

	server.Stop()
	assert.False(t, server.IsRunning())
	assert.NoError(t, <-errCh)
}

func TestGetServerInfo(t *testing.T) {
	server, _ := newTestServer(t)

	info, err := server.GetServerInfo(context.Background(), &GetServerInfoRequest{})
	require.NoError(t, err)
	assert.True(t, info.Standalone)
	assert.Equal(t, "hardened", info.Policy)
	assert.Equal(t, uint32(2), info.OpenLedgerSeq)
	assert.Equal(t, uint32(1), info.ValidatedSeq)
}

func TestGetPoolAndQuote(t *testing.T) {
	server, svc := newTestServer(t)
	seedPool(t, svc)

	poolInfo, err := server.GetPool(context.Background(), &GetPoolRequest{AssetA: testBase, AssetB: testQuote})
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), poolInfo.ReserveA)
	assert.Equal(t, uint64(1_000_000), poolInfo.ReserveB)
	assert.Equal(t, uint64(1_000_000), poolInfo.ShareSupply)
	assert.Equal(t, uint64(3), poolInfo.FeeNumerator)
	assert.Equal(t, uint64(1000), poolInfo.FeeDenominator)

	quote, err := server.GetQuote(context.Background(), &GetQuoteRequest{
		AssetIn:  testBase,
		AssetOut: testQuote,
		AmountIn: 10_000,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(30), quote.Fee)
	assert.Equal(t, uint64(9_970), quote.NetIn)
	assert.Equal(t, uint64(9_871), quote.AmountOut)
}

func TestGetPoolNotFound(t *testing.T) {
	server, _ := newTestServer(t)

	_, err := server.GetPool(context.Background(), &GetPoolRequest{AssetA: testBase, AssetB: testQuote})
	require.Error(t, err)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestGetQuoteValidation(t *testing.T) {
	server, _ := newTestServer(t)
	ctx := context.Background()

	_, err := server.GetQuote(ctx, &GetQuoteRequest{AssetOut: testQuote, AmountIn: 1})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = server.GetQuote(ctx, &GetQuoteRequest{AssetIn: testBase, AssetOut: testQuote})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = server.GetQuote(ctx, &GetQuoteRequest{AssetIn: testBase, AssetOut: testQuote, AmountIn: 500})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestGetLedgerAndTransaction(t *testing.T) {
	server, svc := newTestServer(t)
	seedPool(t, svc)
	ctx := context.Background()

	ledger, err := server.GetLedger(ctx, &GetLedgerRequest{Ledger: "validated", IncludeTransactions: true})
	require.NoError(t, err)
	assert.Equal(t, uint32(2), ledger.LedgerIndex)
	assert.Equal(t, uint32(2), ledger.TxCount)
	assert.True(t, ledger.Validated)
	assert.NotEmpty(t, ledger.LedgerHash)
	require.Len(t, ledger.TxHashes, 2)

	result, err := server.GetTransaction(ctx, &GetTransactionRequest{Hash: ledger.TxHashes[0]})
	require.NoError(t, err)
	assert.Equal(t, ledger.TxHashes[0], result.Hash)
	assert.Equal(t, uint32(2), result.LedgerIndex)
	assert.Equal(t, "tesSUCCESS", result.Result)
	assert.True(t, result.Validated)

	_, err = server.GetTransaction(ctx, &GetTransactionRequest{Hash: "xyz"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = server.GetTransaction(ctx, &GetTransactionRequest{Hash: strings.Repeat("00", 32)})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = server.GetLedger(ctx, &GetLedgerRequest{Ledger: "99"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestGetAccount(t *testing.T) {
	server, svc := newTestServer(t)
	seedPool(t, svc)

	account, err := server.GetAccount(context.Background(), &GetAccountRequest{Account: testProvider})
	require.NoError(t, err)
	assert.Equal(t, testProvider, account.Account)
	assert.Len(t, account.Balances, 3)

	_, err = server.GetAccount(context.Background(), &GetAccountRequest{Account: "zz"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = server.GetAccount(context.Background(), &GetAccountRequest{Account: strings.Repeat("11", 20)})
	assert.Equal(t, codes.NotFound, status.Code(err))
}
