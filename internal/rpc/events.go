package rpc

import (
	"github.com/LeJamon/goAMMd/internal/core/ledger/service"
)

// Stream messages wrap service events with a type discriminator so
// subscribers can route them. Field layout follows the service event
// types; only the type marker is added here.

// LedgerClosedMessage is the ledger stream payload.
type LedgerClosedMessage struct {
	Type string `json:"type"`
	service.LedgerClosedEvent
}

func NewLedgerClosedMessage(event service.LedgerClosedEvent) LedgerClosedMessage {
	return LedgerClosedMessage{Type: "ledgerClosed", LedgerClosedEvent: event}
}

// TransactionMessage is the transactions stream payload.
type TransactionMessage struct {
	Type string `json:"type"`
	service.TransactionEvent
}

func NewTransactionMessage(event service.TransactionEvent) TransactionMessage {
	return TransactionMessage{Type: "transaction", TransactionEvent: event}
}

// PoolEventMessage is the pools stream payload.
type PoolEventMessage struct {
	Type string `json:"type"`
	service.PoolEvent
}

func NewPoolEventMessage(event service.PoolEvent) PoolEventMessage {
	return PoolEventMessage{Type: "poolEvent", PoolEvent: event}
}
