package service

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/LeJamon/goAMMd/internal/core/ledger/keylet"
	"github.com/LeJamon/goAMMd/internal/core/ledger/sle"
)

// EventPublisher receives ledger lifecycle and pool activity events as
// ledgers are accepted. The service calls it synchronously while holding
// its lock, so implementations must not block; the RPC layer fans out over
// buffered channels and drops on overflow.
type EventPublisher interface {
	// PublishLedgerClosed is called once per accepted ledger.
	PublishLedgerClosed(event LedgerClosedEvent)

	// PublishTransaction is called for each transaction in an accepted
	// ledger.
	PublishTransaction(event TransactionEvent)

	// PublishPoolEvent is called for each domain event a transaction
	// emitted, in emission order.
	PublishPoolEvent(event PoolEvent)
}

// LedgerClosedEvent announces an accepted ledger.
type LedgerClosedEvent struct {
	LedgerSeq        uint32 `json:"ledger_index"`
	LedgerHash       string `json:"ledger_hash"`
	CloseTime        int64  `json:"ledger_time"`
	TxCount          int    `json:"txn_count"`
	ValidatedLedgers string `json:"validated_ledgers"`
}

// TransactionEvent carries one validated transaction with its metadata.
type TransactionEvent struct {
	Hash       string          `json:"hash"`
	LedgerSeq  uint32          `json:"ledger_index"`
	LedgerHash string          `json:"ledger_hash"`
	CloseTime  int64           `json:"ledger_time"`
	Result     string          `json:"engine_result"`
	Tx         json.RawMessage `json:"tx_json"`
	Meta       json.RawMessage `json:"meta"`
	Validated  bool            `json:"validated"`
}

// PoolEvent is one domain event scoped to a pool.
type PoolEvent struct {
	Pool      string          `json:"pool"`
	EventType string          `json:"event_type"`
	LedgerSeq uint32          `json:"ledger_index"`
	TxHash    string          `json:"tx_hash"`
	Account   string          `json:"account,omitempty"`
	Event     json.RawMessage `json:"event"`
}

// NoOpPublisher drops all events.
type NoOpPublisher struct{}

func (NoOpPublisher) PublishLedgerClosed(LedgerClosedEvent) {}
func (NoOpPublisher) PublishTransaction(TransactionEvent)   {}
func (NoOpPublisher) PublishPoolEvent(PoolEvent)            {}

var _ EventPublisher = NoOpPublisher{}

// PoolID renders the canonical pool identifier for an asset pair: the hex
// form of the pool's state key. Argument order does not matter.
func PoolID(assetA, assetB [32]byte) string {
	k := keylet.Pool(assetA, assetB)
	return hashHex(k.Key)
}

// hashHex renders a 256-bit key or hash in its canonical hex form.
func hashHex(h [32]byte) string {
	return strings.ToUpper(hex.EncodeToString(h[:]))
}

// metaEnvelope is the slice of transaction metadata needed to recover the
// emitted events.
type metaEnvelope struct {
	Events []struct {
		EventType string          `json:"EventType"`
		Event     json.RawMessage `json:"Event"`
	} `json:"Events"`
}

// poolEventsFromMeta recovers the pool events a transaction emitted from
// its stored metadata JSON.
func poolEventsFromMeta(txHash string, ledgerSeq uint32, metaJSON []byte) []PoolEvent {
	var meta metaEnvelope
	if err := json.Unmarshal(metaJSON, &meta); err != nil {
		return nil
	}

	events := make([]PoolEvent, 0, len(meta.Events))
	for _, ev := range meta.Events {
		pool, account := eventScope(ev.Event)
		events = append(events, PoolEvent{
			Pool:      pool,
			EventType: ev.EventType,
			LedgerSeq: ledgerSeq,
			TxHash:    txHash,
			Account:   account,
			Event:     ev.Event,
		})
	}
	return events
}

// eventScope extracts the pool and account an event payload refers to.
// Every pool event names its asset pair, either directly or as the swap's
// in/out legs, and the pool key follows from the pair.
func eventScope(payload []byte) (pool, account string) {
	var fields struct {
		AssetA   string `json:"asset_a"`
		AssetB   string `json:"asset_b"`
		AssetIn  string `json:"asset_in"`
		AssetOut string `json:"asset_out"`
		Provider string `json:"provider"`
		Trader   string `json:"trader"`
	}
	if err := json.Unmarshal(payload, &fields); err != nil {
		return "", ""
	}

	switch {
	case fields.Provider != "":
		account = fields.Provider
	case fields.Trader != "":
		account = fields.Trader
	}

	a, b := fields.AssetA, fields.AssetB
	if a == "" || b == "" {
		a, b = fields.AssetIn, fields.AssetOut
	}
	if a != "" && b != "" {
		assetA, errA := sle.DecodeMintID(a)
		assetB, errB := sle.DecodeMintID(b)
		if errA == nil && errB == nil {
			pool = PoolID(assetA, assetB)
		}
	}

	return pool, account
}
