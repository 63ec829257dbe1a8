// Package ledger persists position-affecting events in an append-only
// WAL. Each record carries the applied delta and the resulting totals,
// so reads only need the newest record.
package ledger

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/gowal"

	"github.com/svimtrade/janus/internal/entity"
)

const (
	defaultDir       = "./wal/ledger"
	ledgerKeyPrefix  = "position_"
	segmentThreshold = 1000
	maxSegments      = 100
)

// Store is the local position ledger. Appends are serialized; record
// ids are the WAL indexes and increase monotonically.
type Store struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// New opens (or creates) the ledger under dir.
func New(dir string) (*Store, error) {
	if dir == "" {
		dir = defaultDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "ledger_",
		SegmentThreshold: segmentThreshold,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init position ledger")
	}

	return &Store{wal: wal}, nil
}

// InitIfEmpty seeds a fresh ledger with an initial record holding the
// starting cash balance and no positions.
func (s *Store) InitIfEmpty(startingCash decimal.Decimal) error {
	latest, err := s.Latest()
	if err != nil {
		return err
	}
	if latest != nil {
		return nil
	}

	_, err = s.Append(entity.LedgerRecord{
		Action:    entity.LedgerActionInit,
		Quantity:  decimal.Zero,
		Positions: map[string]decimal.Decimal{},
		Cash:      startingCash,
		Timestamp: time.Now().UTC(),
	})
	return err
}

// Append writes the record, assigning the next monotonic id. Returns
// the assigned id.
func (s *Store) Append(rec entity.LedgerRecord) (uint64, error) {
	if s == nil || s.wal == nil {
		return 0, errors.New("position ledger is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = s.wal.CurrentIndex() + 1
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return 0, errors.Wrap(err, "marshal ledger record")
	}

	if err := s.wal.Write(rec.ID, ledgerKeyPrefix+rec.Symbol, payload); err != nil {
		return 0, errors.Wrap(err, "append ledger record")
	}

	return rec.ID, nil
}

// Latest returns the newest ledger record, or nil when the ledger is
// empty.
func (s *Store) Latest() (*entity.LedgerRecord, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("position ledger is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var newest *entity.LedgerRecord
	for msg := range s.wal.Iterator() {
		var rec entity.LedgerRecord
		if err := json.Unmarshal(msg.Value, &rec); err != nil {
			return nil, errors.Wrap(err, "decode ledger record")
		}
		if newest == nil || rec.ID > newest.ID {
			r := rec
			newest = &r
		}
	}

	return newest, nil
}

// CurrentIndex returns the id of the newest record, zero when empty.
func (s *Store) CurrentIndex() uint64 {
	if s == nil || s.wal == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.wal.CurrentIndex()
}

// Close closes the underlying WAL.
func (s *Store) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("position ledger is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
