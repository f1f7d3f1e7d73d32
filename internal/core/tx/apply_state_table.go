package tx

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/LeJamon/goAMMd/internal/core/ledger/entry"
	"github.com/LeJamon/goAMMd/internal/core/ledger/keylet"
)

// Action represents the type of modification to a ledger entry
type Action int

const (
	// ActionCache means the entry was read but not modified
	ActionCache Action = iota
	// ActionInsert means a new entry was created
	ActionInsert
	// ActionModify means an existing entry was modified
	ActionModify
	// ActionErase means an entry was deleted
	ActionErase
)

// TrackedEntry represents a ledger entry being tracked for changes
type TrackedEntry struct {
	Action    Action
	EntryType entry.Type
	Original  []byte // Original state (nil for inserts)
	Current   []byte // Current state (nil for deletes after erase)
}

// ApplyStateTable wraps a LedgerView and tracks all modifications. Nothing
// reaches the base view until Apply(); discarding the table discards every
// pending change, which is what gives failed transactions their atomicity.
type ApplyStateTable struct {
	base   LedgerView
	items  map[[32]byte]*TrackedEntry
	txHash [32]byte
	txSeq  uint32
}

// NewApplyStateTable creates a new ApplyStateTable wrapping the given base view
func NewApplyStateTable(base LedgerView, txHash [32]byte, txSeq uint32) *ApplyStateTable {
	return &ApplyStateTable{
		base:   base,
		items:  make(map[[32]byte]*TrackedEntry),
		txHash: txHash,
		txSeq:  txSeq,
	}
}

// Read reads a ledger entry, tracking it as cached
func (t *ApplyStateTable) Read(k keylet.Keylet) ([]byte, error) {
	if item, exists := t.items[k.Key]; exists {
		if item.Action == ActionErase {
			return nil, nil
		}
		return item.Current, nil
	}

	data, err := t.base.Read(k)
	if err != nil {
		return nil, err
	}

	// Only track entries that exist in the base
	if data != nil {
		t.items[k.Key] = &TrackedEntry{
			Action:    ActionCache,
			EntryType: k.Type,
			Original:  data,
			Current:   data,
		}
	}

	return data, nil
}

// Exists checks if an entry exists
func (t *ApplyStateTable) Exists(k keylet.Keylet) (bool, error) {
	if item, exists := t.items[k.Key]; exists {
		return item.Action != ActionErase, nil
	}
	return t.base.Exists(k)
}

// Insert adds a new entry
func (t *ApplyStateTable) Insert(k keylet.Keylet, data []byte) error {
	if item, exists := t.items[k.Key]; exists {
		if item.Action != ActionErase {
			return fmt.Errorf("entry already exists")
		}
		// Re-inserting a deleted entry becomes a modify
		item.Action = ActionModify
		item.Current = data
		return nil
	}

	exists, err := t.base.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("entry already exists")
	}

	t.items[k.Key] = &TrackedEntry{
		Action:    ActionInsert,
		EntryType: k.Type,
		Original:  nil,
		Current:   data,
	}

	return nil
}

// Update modifies an existing entry
func (t *ApplyStateTable) Update(k keylet.Keylet, data []byte) error {
	if item, exists := t.items[k.Key]; exists {
		if item.Action == ActionErase {
			return fmt.Errorf("entry not found (deleted)")
		}
		if item.Action == ActionCache {
			item.Action = ActionModify
		}
		// An insert stays an insert, just with new data
		item.Current = data
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}

	t.items[k.Key] = &TrackedEntry{
		Action:    ActionModify,
		EntryType: k.Type,
		Original:  original,
		Current:   data,
	}

	return nil
}

// Erase removes an entry
func (t *ApplyStateTable) Erase(k keylet.Keylet) error {
	if item, exists := t.items[k.Key]; exists {
		if item.Action == ActionErase {
			return fmt.Errorf("entry already deleted")
		}
		if item.Action == ActionInsert {
			// Inserting then deleting = no change, remove from tracking
			delete(t.items, k.Key)
			return nil
		}
		// Current keeps the state before deletion for metadata
		item.Action = ActionErase
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}

	t.items[k.Key] = &TrackedEntry{
		Action:    ActionErase,
		EntryType: k.Type,
		Original:  original,
		Current:   original,
	}

	return nil
}

// IsErased returns true if the entry at the given key has been erased.
func (t *ApplyStateTable) IsErased(k keylet.Keylet) bool {
	if item, exists := t.items[k.Key]; exists {
		return item.Action == ActionErase
	}
	return false
}

// ForEach iterates over all state entries of the base view
func (t *ApplyStateTable) ForEach(fn func(key [32]byte, data []byte) bool) error {
	return t.base.ForEach(fn)
}

// Apply commits all tracked changes to the base view and returns generated
// metadata. Entries that were read but not changed produce no metadata.
func (t *ApplyStateTable) Apply() (*Metadata, error) {
	metadata := &Metadata{
		AffectedNodes: make([]AffectedNode, 0),
	}

	for key, item := range t.items {
		k := keylet.Keylet{Type: item.EntryType, Key: key}

		switch item.Action {
		case ActionCache:
			continue

		case ActionInsert:
			metadata.AffectedNodes = append(metadata.AffectedNodes, buildAffectedNode("CreatedNode", k))
			if err := t.base.Insert(k, item.Current); err != nil {
				return nil, err
			}

		case ActionModify:
			// Skip if no actual change
			if bytes.Equal(item.Original, item.Current) {
				continue
			}
			metadata.AffectedNodes = append(metadata.AffectedNodes, buildAffectedNode("ModifiedNode", k))
			if err := t.base.Update(k, item.Current); err != nil {
				return nil, err
			}

		case ActionErase:
			metadata.AffectedNodes = append(metadata.AffectedNodes, buildAffectedNode("DeletedNode", k))
			if err := t.base.Erase(k); err != nil {
				return nil, err
			}
		}
	}

	return metadata, nil
}

// buildAffectedNode creates the metadata record for one changed entry
func buildAffectedNode(nodeType string, k keylet.Keylet) AffectedNode {
	return AffectedNode{
		NodeType:        nodeType,
		LedgerEntryType: k.Type.String(),
		LedgerIndex:     strings.ToUpper(hex.EncodeToString(k.Key[:])),
	}
}
