package host

import (
	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"
)

// Storage is the contract key-value store of one simulated invocation,
// seeded from the initial ledger snapshot and mutated through the
// storage host functions while the contract runs.
type Storage struct {
	db ethdb.Database
}

// NewStorage seeds an in-memory database with the initial entries.
func NewStorage(initial map[string]string) *Storage {
	st := &Storage{db: rawdb.NewMemoryDatabase()}
	for key, value := range initial {
		if err := st.db.Put([]byte(key), []byte(value)); err != nil {
			log.Error("seed storage", "key", key, "err", err)
		}
	}
	return st
}

// Put writes one entry.
func (st *Storage) Put(key, value []byte) error {
	return st.db.Put(key, value)
}

// Get reads one entry; missing keys report false.
func (st *Storage) Get(key []byte) ([]byte, bool) {
	value, err := st.db.Get(key)
	if err != nil {
		return nil, false
	}
	return value, true
}

// Has reports whether the key exists.
func (st *Storage) Has(key []byte) bool {
	ok, err := st.db.Has(key)
	return err == nil && ok
}

// Delete removes one entry; absent keys are a no-op.
func (st *Storage) Delete(key []byte) error {
	return st.db.Delete(key)
}

// Snapshot copies the full store, for post-run inspection.
func (st *Storage) Snapshot() map[string]string {
	out := make(map[string]string)
	it := st.db.NewIterator(nil, nil)
	defer it.Release()
	for it.Next() {
		out[string(it.Key())] = string(it.Value())
	}
	return out
}

// Close releases the backing database.
func (st *Storage) Close() error {
	return st.db.Close()
}
