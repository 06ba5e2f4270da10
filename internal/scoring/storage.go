package scoring

import (
	"go-match/internal/store"
)

// ScoresKey is the store key of the best-score table.
const ScoresKey = "memoryScores"

// ScoreStorage defines the interface for loading and saving the score table.
// This allows for mocking the storage layer during tests.
type ScoreStorage interface {
	// LoadAll loads the whole table from the persistence layer.
	LoadAll() (Table, error)
	// SaveAll replaces the stored table in a single write.
	SaveAll(table Table) error
}

// KVStorage keeps the score table under ScoresKey in a key-value store.
type KVStorage struct {
	kv store.KV
}

// NewKVStorage creates a ScoreStorage on top of kv.
func NewKVStorage(kv store.KV) *KVStorage {
	return &KVStorage{kv: kv}
}

// LoadAll reads the table. A missing key yields an empty table.
func (s *KVStorage) LoadAll() (Table, error) {
	table := NewTable()
	if _, err := s.kv.Get(ScoresKey, &table); err != nil {
		return nil, err
	}
	// Older files may lack a tier, or the key may hold null.
	return table.Clone(), nil
}

// SaveAll writes the table.
func (s *KVStorage) SaveAll(table Table) error {
	return s.kv.Set(ScoresKey, table)
}
