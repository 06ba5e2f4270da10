package scoring

import (
	"errors"
	"fmt"

	"go-match/internal/config"
	"go-match/internal/store"
)

// Ledger keeps the best (lowest time) result per difficulty tier and
// persists it through a ScoreStorage.
type Ledger struct {
	storage ScoreStorage // The interface for loading/saving scores.
	table   Table
}

// NewLedger returns a ledger with an empty table. Call Load to read the
// persisted records.
func NewLedger(storage ScoreStorage) *Ledger {
	return &Ledger{storage: storage, table: NewTable()}
}

// Load replaces the in-memory table with the persisted one. On failure the
// current table is kept and a *store.PersistenceError is returned.
func (l *Ledger) Load() error {
	table, err := l.storage.LoadAll()
	if err != nil {
		return asPersistenceError("read", err)
	}
	l.table = table.Clone()
	return nil
}

// GetBest returns the record for tier, if any.
func (l *Ledger) GetBest(tier config.Tier) (Best, bool) {
	return l.table.Get(tier)
}

// RecordIfBetter stores {time, moves} for tier when there is no record yet or
// time is strictly lower than the recorded time. It reports whether the record
// changed. The whole table is persisted in one write; if that write fails the
// in-memory table is left untouched and a *store.PersistenceError is returned.
func (l *Ledger) RecordIfBetter(tier config.Tier, time, moves int) (bool, error) {
	if _, err := config.DifficultyFor(tier); err != nil {
		return false, err
	}
	if !l.table.Beats(tier, time) {
		return false, nil
	}

	next := l.table.Clone()
	next[tier] = &Best{Time: time, Moves: moves}
	if err := l.storage.SaveAll(next); err != nil {
		return false, asPersistenceError("write", err)
	}
	l.table = next
	return true, nil
}

// Table returns a copy of the current records for display.
func (l *Ledger) Table() Table {
	return l.table.Clone()
}

// Clear forgets every record.
func (l *Ledger) Clear() error {
	empty := NewTable()
	if err := l.storage.SaveAll(empty); err != nil {
		return asPersistenceError("write", err)
	}
	l.table = empty
	return nil
}

func asPersistenceError(op string, err error) error {
	var perr *store.PersistenceError
	if errors.As(err, &perr) {
		return err
	}
	return &store.PersistenceError{Op: op, Key: ScoresKey, Err: fmt.Errorf("score storage: %w", err)}
}
