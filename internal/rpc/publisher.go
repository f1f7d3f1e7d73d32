package rpc

import (
	"github.com/LeJamon/goAMMd/internal/core/ledger/service"
)

// Publisher fans ledger service events out to WebSocket subscribers. The
// service publishes synchronously while holding its lock, so every path
// here must stay non-blocking; the subscription manager drops messages for
// subscribers whose buffers are full.
type Publisher struct {
	manager *SubscriptionManager
}

func NewPublisher(manager *SubscriptionManager) *Publisher {
	return &Publisher{manager: manager}
}

func (p *Publisher) PublishLedgerClosed(event service.LedgerClosedEvent) {
	p.manager.BroadcastToStream(SubLedger, NewLedgerClosedMessage(event))
}

func (p *Publisher) PublishTransaction(event service.TransactionEvent) {
	p.manager.BroadcastToStream(SubTransactions, NewTransactionMessage(event))
}

func (p *Publisher) PublishPoolEvent(event service.PoolEvent) {
	p.manager.BroadcastPoolEvent(event.Pool, NewPoolEventMessage(event))
}

var _ service.EventPublisher = (*Publisher)(nil)
