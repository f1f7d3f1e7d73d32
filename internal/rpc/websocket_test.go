package rpc

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goAMMd/internal/core/ledger/service"
	"github.com/LeJamon/goAMMd/internal/core/ledger/sle"
	"github.com/LeJamon/goAMMd/internal/core/tx/pool"
)

// dialTestSocket starts a service with a WebSocket server wired as its
// event publisher and returns a connected client.
func dialTestSocket(t *testing.T) (*websocket.Conn, *service.Service) {
	t.Helper()

	manager := NewSubscriptionManager()
	cfg := service.DefaultConfig()
	cfg.Genesis = testGenesis()
	cfg.Publisher = NewPublisher(manager)
	svc, err := service.New(cfg)
	require.NoError(t, err)
	require.NoError(t, svc.Start(context.Background()))

	wsServer := NewWebSocketServer(svc, manager)
	httpServer := httptest.NewServer(wsServer)
	t.Cleanup(httpServer.Close)

	wsURL := "ws" + strings.TrimPrefix(httpServer.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn, svc
}

func sendCommand(t *testing.T, conn *websocket.Conn, command map[string]interface{}) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(command))
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var message map[string]interface{}
	require.NoError(t, conn.ReadJSON(&message))
	return message
}

func TestWebSocketPing(t *testing.T) {
	conn, _ := dialTestSocket(t)

	sendCommand(t, conn, map[string]interface{}{"command": "ping", "id": 1})
	response := readMessage(t, conn)

	assert.Equal(t, "response", response["type"])
	assert.Equal(t, float64(1), response["id"])
	assert.Equal(t, "success", response["status"])
}

func TestWebSocketMissingCommand(t *testing.T) {
	conn, _ := dialTestSocket(t)

	sendCommand(t, conn, map[string]interface{}{"id": 7})
	response := readMessage(t, conn)

	assert.Equal(t, "error", response["status"])
	assert.Equal(t, "missingCommand", response["error"])
	assert.Equal(t, float64(7), response["id"])
}

func TestWebSocketUnknownCommand(t *testing.T) {
	conn, _ := dialTestSocket(t)

	sendCommand(t, conn, map[string]interface{}{"command": "nope", "id": 2})
	response := readMessage(t, conn)

	assert.Equal(t, "error", response["status"])
	assert.Equal(t, "unknownCmd", response["error"])
	assert.Equal(t, float64(RpcMETHOD_NOT_FOUND), response["error_code"])
}

func TestWebSocketQuery(t *testing.T) {
	conn, svc := dialTestSocket(t)
	seedPool(t, svc)

	sendCommand(t, conn, map[string]interface{}{
		"command": "pool_info",
		"id":      4,
		"asset_a": testBase,
		"asset_b": testQuote,
	})
	response := readMessage(t, conn)

	require.Equal(t, "success", response["status"])
	result, ok := response["result"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1_000_000), result["reserve_a"])
	assert.Equal(t, float64(1_000_000), result["reserve_b"])
}

func TestWebSocketLedgerAccept(t *testing.T) {
	conn, svc := dialTestSocket(t)

	// loopback clients hold the admin role
	sendCommand(t, conn, map[string]interface{}{"command": "ledger_accept", "id": 3})
	response := readMessage(t, conn)

	require.Equal(t, "success", response["status"])
	result, ok := response["result"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), result["ledger_accepted"])
	assert.Equal(t, uint32(3), svc.GetOpenLedger().Sequence())
}

func TestWebSocketLedgerStream(t *testing.T) {
	conn, svc := dialTestSocket(t)

	sendCommand(t, conn, map[string]interface{}{
		"command": "subscribe",
		"id":      1,
		"streams": []string{"ledger"},
	})
	response := readMessage(t, conn)
	require.Equal(t, "success", response["status"])

	acceptLedger(t, svc)

	message := readMessage(t, conn)
	assert.Equal(t, "ledgerClosed", message["type"])
	assert.Equal(t, float64(2), message["ledger_index"])
	assert.Equal(t, float64(0), message["txn_count"])
	assert.Equal(t, "1-2", message["validated_ledgers"])
	assert.NotEmpty(t, message["ledger_hash"])
}

func TestWebSocketTransactionStream(t *testing.T) {
	conn, svc := dialTestSocket(t)

	sendCommand(t, conn, map[string]interface{}{
		"command": "subscribe",
		"id":      1,
		"streams": []string{"transactions"},
	})
	response := readMessage(t, conn)
	require.Equal(t, "success", response["status"])

	created := submitTx(t, svc, pool.NewPoolCreate(testProvider, testBase, testQuote, testShare, 3, 1000))
	acceptLedger(t, svc)

	message := readMessage(t, conn)
	assert.Equal(t, "transaction", message["type"])
	assert.Equal(t, created.Hash, message["hash"])
	assert.Equal(t, "tesSUCCESS", message["engine_result"])
	assert.Equal(t, true, message["validated"])
}

func TestWebSocketPoolStream(t *testing.T) {
	conn, svc := dialTestSocket(t)

	sendCommand(t, conn, map[string]interface{}{
		"command": "subscribe",
		"id":      1,
		"pools": []map[string]string{
			{"asset_a": testBase, "asset_b": testQuote},
		},
	})
	response := readMessage(t, conn)
	require.Equal(t, "success", response["status"])

	submitTx(t, svc, pool.NewPoolCreate(testProvider, testBase, testQuote, testShare, 3, 1000))
	acceptLedger(t, svc)

	message := readMessage(t, conn)
	assert.Equal(t, "poolEvent", message["type"])
	assert.Equal(t, "PoolCreated", message["event_type"])
	assert.NotEmpty(t, message["pool"])
	assert.NotEmpty(t, message["tx_hash"])
}

func TestWebSocketUnsubscribe(t *testing.T) {
	conn, svc := dialTestSocket(t)

	sendCommand(t, conn, map[string]interface{}{
		"command": "subscribe",
		"id":      1,
		"streams": []string{"ledger"},
	})
	require.Equal(t, "success", readMessage(t, conn)["status"])

	sendCommand(t, conn, map[string]interface{}{
		"command": "unsubscribe",
		"id":      2,
		"streams": []string{"ledger"},
	})
	require.Equal(t, "success", readMessage(t, conn)["status"])

	acceptLedger(t, svc)

	// nothing should arrive for the closed ledger; a ping still answers
	sendCommand(t, conn, map[string]interface{}{"command": "ping", "id": 3})
	message := readMessage(t, conn)
	assert.Equal(t, "response", message["type"])
	assert.Equal(t, float64(3), message["id"])
}

func TestWebSocketSubscribeValidation(t *testing.T) {
	conn, _ := dialTestSocket(t)

	tests := []struct {
		name      string
		command   map[string]interface{}
		wantError string
	}{
		{
			name: "unknown stream",
			command: map[string]interface{}{
				"command": "subscribe",
				"id":      1,
				"streams": []string{"books"},
			},
			wantError: "malformedStream",
		},
		{
			name: "bad pool selector",
			command: map[string]interface{}{
				"command": "subscribe",
				"id":      2,
				"pools":   []map[string]string{{"asset_a": "zz", "asset_b": testQuote}},
			},
			wantError: "invalidParams",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sendCommand(t, conn, tt.command)
			response := readMessage(t, conn)
			assert.Equal(t, "error", response["status"])
			assert.Equal(t, tt.wantError, response["error"])
		})
	}
}

func TestSubscriptionManagerFanout(t *testing.T) {
	manager := NewSubscriptionManager()

	ledgerOnly := NewConnection("ledger-only")
	allPools := NewConnection("all-pools")
	onePool := NewConnection("one-pool")
	for _, conn := range []*Connection{ledgerOnly, allPools, onePool} {
		manager.AddConnection(conn)
	}
	require.Equal(t, 3, manager.ConnectionCount())

	require.Nil(t, manager.Subscribe(ledgerOnly, SubscriptionRequest{
		Streams: []SubscriptionType{SubLedger},
	}))
	require.Nil(t, manager.Subscribe(allPools, SubscriptionRequest{
		Streams: []SubscriptionType{SubPools},
	}))
	require.Nil(t, manager.Subscribe(onePool, SubscriptionRequest{
		Pools: []PoolSelector{{AssetA: testBase, AssetB: testQuote}},
	}))

	a, err := sle.DecodeMintID(strings.ToUpper(testBase))
	require.NoError(t, err)
	b, err := sle.DecodeMintID(strings.ToUpper(testQuote))
	require.NoError(t, err)
	poolID := service.PoolID(a, b)

	manager.BroadcastPoolEvent(poolID, map[string]string{"k": "v"})
	assert.Len(t, allPools.send, 1)
	assert.Len(t, onePool.send, 1)
	assert.Len(t, ledgerOnly.send, 0)

	otherPool := service.PoolID(a, [32]byte{0x99})
	manager.BroadcastPoolEvent(otherPool, map[string]string{"k": "v"})
	assert.Len(t, allPools.send, 2)
	assert.Len(t, onePool.send, 1)

	manager.BroadcastToStream(SubLedger, map[string]string{"k": "v"})
	assert.Len(t, ledgerOnly.send, 1)
	assert.Len(t, allPools.send, 2)

	require.Nil(t, manager.Unsubscribe(onePool, SubscriptionRequest{
		Pools: []PoolSelector{{AssetA: testBase, AssetB: testQuote}},
	}))
	manager.BroadcastPoolEvent(poolID, map[string]string{"k": "v"})
	assert.Len(t, onePool.send, 1)

	manager.RemoveConnection("all-pools")
	require.Equal(t, 2, manager.ConnectionCount())
}
