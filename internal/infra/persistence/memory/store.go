// Package memory provides an in-memory record store used for tests and
// ephemeral environments.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"trackcore/pkg/domain"
)

// Store keeps records of one type in process memory. Records are cloned on
// the way in and out so callers never share state with the store.
type Store[R domain.Cloner[R]] struct {
	mu      sync.RWMutex
	records map[domain.Identity]R
	changes []domain.Change
	nowFn   func() time.Time
}

// NewStore returns an empty store.
func NewStore[R domain.Cloner[R]]() *Store[R] {
	return &Store[R]{
		records: make(map[domain.Identity]R),
		nowFn:   func() time.Time { return time.Now().UTC() },
	}
}

// Load returns a copy of the record stored under id.
func (s *Store[R]) Load(_ context.Context, id domain.Identity) (R, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		var zero R
		return zero, domain.NotFoundError{Entity: zero.Entity(), ID: id}
	}
	return rec.Clone(), nil
}

// Save stores a copy of rec, replacing any previous version.
func (s *Store[R]) Save(_ context.Context, rec R) error {
	id := rec.RecordID()
	if id.IsZero() {
		return fmt.Errorf("memory store: %s without identity", rec.Entity())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	change := domain.Change{Entity: rec.Entity(), Action: domain.ActionCreate, ID: id, After: rec.Clone(), At: s.nowFn()}
	if before, ok := s.records[id]; ok {
		change.Action = domain.ActionUpdate
		change.Before = before
	}
	s.records[id] = rec.Clone()
	s.changes = append(s.changes, change)
	return nil
}

// Len returns the number of stored records.
func (s *Store[R]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// IDs returns the stored identities in lexical order.
func (s *Store[R]) IDs() []domain.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Identity, 0, len(s.records))
	for id := range s.records {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Changes returns the journal of writes in the order they happened.
func (s *Store[R]) Changes() []domain.Change {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Change(nil), s.changes...)
}

// Snapshot captures a point-in-time copy of the stored records.
type Snapshot[R domain.Cloner[R]] struct {
	Records map[domain.Identity]R `json:"records"`
}

// ExportState clones the current records.
func (s *Store[R]) ExportState() Snapshot[R] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[domain.Identity]R, len(s.records))
	for id, rec := range s.records {
		out[id] = rec.Clone()
	}
	return Snapshot[R]{Records: out}
}

// ImportState replaces the stored records with the snapshot. The change
// journal is cleared.
func (s *Store[R]) ImportState(snapshot Snapshot[R]) {
	records := make(map[domain.Identity]R, len(snapshot.Records))
	for id, rec := range snapshot.Records {
		records[id] = rec.Clone()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.changes = nil
}

// MarshalJSON encodes the current records.
func (s *Store[R]) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.ExportState())
}

// UnmarshalJSON replaces the current records with the decoded snapshot.
func (s *Store[R]) UnmarshalJSON(data []byte) error {
	var snapshot Snapshot[R]
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("decode memory snapshot: %w", err)
	}
	s.ImportState(snapshot)
	return nil
}
