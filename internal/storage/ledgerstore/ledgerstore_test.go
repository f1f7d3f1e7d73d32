package ledgerstore_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/LeJamon/goAMMd/internal/storage/database"
	_ "github.com/LeJamon/goAMMd/internal/storage/database/pebble"
	"github.com/LeJamon/goAMMd/internal/storage/ledgerstore"
)

func openStore(t *testing.T, compressor string) *ledgerstore.Store {
	t.Helper()

	manager, err := database.OpenBackend("pebble", t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open backend: %v", err)
	}
	t.Cleanup(func() { manager.Close() })

	db, err := manager.OpenDB("ledgers")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}

	store, err := ledgerstore.New(db, compressor)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

func sampleSnapshot(seq uint32) *ledgerstore.SnapshotRecord {
	hash := bytes.Repeat([]byte{byte(seq)}, 32)
	parent := bytes.Repeat([]byte{byte(seq - 1)}, 32)
	return &ledgerstore.SnapshotRecord{
		Seq:        seq,
		Hash:       hash,
		ParentHash: parent,
		StateHash:  bytes.Repeat([]byte{0xAA}, 32),
		CloseTime:  1700000000 + int64(seq),
		TxCount:    2,
		State: []ledgerstore.StateEntry{
			{Key: bytes.Repeat([]byte{0x01}, 32), EntryType: 0x0070, Data: []byte("pool")},
			{Key: bytes.Repeat([]byte{0x02}, 32), EntryType: 0x0054, Data: []byte("account")},
		},
	}
}

func TestSaveAndLoadLedger(t *testing.T) {
	for _, compressor := range []string{"none", "lz4"} {
		t.Run(compressor, func(t *testing.T) {
			store := openStore(t, compressor)
			ctx := context.Background()

			snapshot := sampleSnapshot(7)
			txs := []*ledgerstore.TxRecord{
				{
					Hash:      bytes.Repeat([]byte{0x11}, 32),
					LedgerSeq: 7,
					TxIndex:   0,
					Result:    "tesSUCCESS",
					TxJSON:    []byte(`{"TransactionType":"PoolSwap"}`),
					MetaJSON:  []byte(`{"TransactionIndex":0}`),
				},
			}

			if err := store.SaveLedger(ctx, snapshot, txs); err != nil {
				t.Fatalf("SaveLedger failed: %v", err)
			}

			got, err := store.LoadLedger(ctx, 7)
			if err != nil {
				t.Fatalf("LoadLedger failed: %v", err)
			}
			if got.Seq != 7 || got.TxCount != 2 || got.CloseTime != snapshot.CloseTime {
				t.Errorf("loaded header mismatch: %+v", got)
			}
			if len(got.State) != 2 || !bytes.Equal(got.State[0].Data, []byte("pool")) {
				t.Errorf("loaded state mismatch: %+v", got.State)
			}

			byHash, err := store.LoadLedgerByHash(ctx, snapshot.Hash)
			if err != nil {
				t.Fatalf("LoadLedgerByHash failed: %v", err)
			}
			if byHash.Seq != 7 {
				t.Errorf("LoadLedgerByHash seq = %d, want 7", byHash.Seq)
			}

			tx, err := store.LoadTransaction(ctx, txs[0].Hash)
			if err != nil {
				t.Fatalf("LoadTransaction failed: %v", err)
			}
			if tx.Result != "tesSUCCESS" || tx.TxIndex != 0 {
				t.Errorf("loaded transaction mismatch: %+v", tx)
			}

			latest, err := store.LatestSequence(ctx)
			if err != nil {
				t.Fatalf("LatestSequence failed: %v", err)
			}
			if latest != 7 {
				t.Errorf("LatestSequence = %d, want 7", latest)
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	store := openStore(t, "lz4")
	ctx := context.Background()

	if _, err := store.LoadLedger(ctx, 42); !errors.Is(err, ledgerstore.ErrLedgerNotFound) {
		t.Errorf("expected ErrLedgerNotFound, got %v", err)
	}
	if _, err := store.LoadTransaction(ctx, bytes.Repeat([]byte{0x33}, 32)); !errors.Is(err, ledgerstore.ErrTransactionNotFound) {
		t.Errorf("expected ErrTransactionNotFound, got %v", err)
	}
	if _, err := store.LatestSequence(ctx); !errors.Is(err, ledgerstore.ErrEmptyStore) {
		t.Errorf("expected ErrEmptyStore, got %v", err)
	}
}

func TestForEachLedger(t *testing.T) {
	store := openStore(t, "lz4")
	ctx := context.Background()

	for seq := uint32(1); seq <= 5; seq++ {
		if err := store.SaveLedger(ctx, sampleSnapshot(seq), nil); err != nil {
			t.Fatalf("SaveLedger(%d) failed: %v", seq, err)
		}
	}

	var seen []uint32
	err := store.ForEachLedger(ctx, 2, 4, func(s *ledgerstore.SnapshotRecord) bool {
		seen = append(seen, s.Seq)
		return true
	})
	if err != nil {
		t.Fatalf("ForEachLedger failed: %v", err)
	}

	want := []uint32{2, 3, 4}
	if len(seen) != len(want) {
		t.Fatalf("visited %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("seen[%d] = %d, want %d", i, seen[i], want[i])
		}
	}

	// Early stop
	count := 0
	err = store.ForEachLedger(ctx, 1, 5, func(s *ledgerstore.SnapshotRecord) bool {
		count++
		return count < 2
	})
	if err != nil {
		t.Fatalf("ForEachLedger failed: %v", err)
	}
	if count != 2 {
		t.Errorf("early stop visited %d ledgers, want 2", count)
	}
}

// TestCompressionInterop writes with lz4 and reads with a store configured
// for no compression. The envelope names its compressor, so this works.
func TestCompressionInterop(t *testing.T) {
	manager, err := database.OpenBackend("pebble", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer manager.Close()

	db, err := manager.OpenDB("ledgers")
	if err != nil {
		t.Fatal(err)
	}

	writer, err := ledgerstore.New(db, "lz4")
	if err != nil {
		t.Fatal(err)
	}
	reader, err := ledgerstore.New(db, "none")
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := writer.SaveLedger(ctx, sampleSnapshot(9), nil); err != nil {
		t.Fatalf("SaveLedger failed: %v", err)
	}

	got, err := reader.LoadLedger(ctx, 9)
	if err != nil {
		t.Fatalf("LoadLedger failed: %v", err)
	}
	if got.Seq != 9 {
		t.Errorf("Seq = %d, want 9", got.Seq)
	}
}
