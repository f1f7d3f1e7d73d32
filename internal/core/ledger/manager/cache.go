package manager

import (
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/LeJamon/goAMMd/internal/core/ledger"
)

const defaultCacheSize = 256

// LedgerCache keeps recently closed ledgers in memory, indexed by both
// sequence and hash, and tracks which sequences are complete locally.
type LedgerCache struct {
	mu sync.RWMutex

	bySeq  *lru.Cache[uint32, *ledger.Ledger]
	byHash *lru.Cache[[32]byte, *ledger.Ledger]

	completeness *CompleteLedgerSet

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewLedgerCache creates a cache holding up to size ledgers. A size of
// zero or less selects the default.
func NewLedgerCache(size int) (*LedgerCache, error) {
	if size <= 0 {
		size = defaultCacheSize
	}

	bySeq, err := lru.New[uint32, *ledger.Ledger](size)
	if err != nil {
		return nil, err
	}
	byHash, err := lru.New[[32]byte, *ledger.Ledger](size)
	if err != nil {
		return nil, err
	}

	return &LedgerCache{
		bySeq:        bySeq,
		byHash:       byHash,
		completeness: NewCompleteLedgerSet(),
	}, nil
}

// Put stores a ledger in the cache. Only closed ledgers carry a hash, so
// open ledgers are indexed by sequence alone.
func (c *LedgerCache) Put(l *ledger.Ledger) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bySeq.Add(l.Sequence(), l)
	if l.IsClosed() {
		c.byHash.Add(l.Hash(), l)
	}
}

// Get retrieves a ledger by sequence number.
func (c *LedgerCache) Get(seq uint32) (*ledger.Ledger, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	l, found := c.bySeq.Get(seq)
	if !found {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return l, true
}

// GetByHash retrieves a ledger by hash.
func (c *LedgerCache) GetByHash(hash [32]byte) (*ledger.Ledger, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	l, found := c.byHash.Get(hash)
	if !found {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return l, true
}

// Remove evicts a ledger from both indexes.
func (c *LedgerCache) Remove(seq uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if l, found := c.bySeq.Peek(seq); found {
		c.byHash.Remove(l.Hash())
	}
	c.bySeq.Remove(seq)
}

// Clear evicts all cached ledgers. Completeness tracking is kept.
func (c *LedgerCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bySeq.Purge()
	c.byHash.Purge()
}

// MarkComplete records that a ledger sequence is held complete locally.
func (c *LedgerCache) MarkComplete(seq uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.completeness.Add(seq)
}

// MarkCompleteRange records a range of complete ledger sequences.
func (c *LedgerCache) MarkCompleteRange(start, end uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.completeness.AddRange(start, end)
}

// IsComplete reports whether a ledger sequence is held complete locally.
func (c *LedgerCache) IsComplete(seq uint32) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.completeness.Contains(seq)
}

// CompleteRange returns the bounds of the complete ledger set.
func (c *LedgerCache) CompleteRange() (min, max uint32, hasAny bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.completeness.Range()
}

// CompleteString renders the complete ledger set, e.g. "1-5,7".
func (c *LedgerCache) CompleteString() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.completeness.String()
}

// CacheStats holds cache performance counters.
type CacheStats struct {
	Hits    uint64
	Misses  uint64
	HitRate float64
	Cached  int
}

// Stats returns a snapshot of the cache counters.
func (c *LedgerCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	hits := c.hits.Load()
	misses := c.misses.Load()
	total := hits + misses

	hitRate := float64(0)
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return CacheStats{
		Hits:    hits,
		Misses:  misses,
		HitRate: hitRate,
		Cached:  c.bySeq.Len(),
	}
}
