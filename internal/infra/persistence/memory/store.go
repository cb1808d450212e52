// Package memory provides the in-memory record store. It backs tests and
// ephemeral deployments directly, and serves reads for the SQL backends.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"homeerp/pkg/domain"
)

var _ domain.RecordStore = (*Store)(nil)

// collection keeps records of one kind in insertion order.
type collection struct {
	order []string
	byID  map[string]domain.Record
}

func newCollection() *collection {
	return &collection{byID: make(map[string]domain.Record)}
}

func (c *collection) records() []domain.Record {
	out := make([]domain.Record, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id].Clone())
	}
	return out
}

func (c *collection) append(r domain.Record) {
	c.order = append(c.order, r.RecordID())
	c.byID[r.RecordID()] = r
}

func collectionFrom(records []domain.Record) *collection {
	c := newCollection()
	for _, r := range records {
		if r == nil || r.RecordID() == "" {
			continue
		}
		if _, dup := c.byID[r.RecordID()]; dup {
			continue
		}
		c.append(r.Clone())
	}
	return c
}

// Store is a mutex-guarded set of ordered collections, one per kind.
type Store struct {
	mu    sync.RWMutex
	state map[domain.Kind]*collection
	nowFn func() time.Time
	idFn  func() string
}

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	s := &Store{
		state: make(map[domain.Kind]*collection),
		nowFn: func() time.Time { return time.Now().UTC() },
		idFn:  func() string { return uuid.NewString() },
	}
	for _, kind := range domain.Kinds() {
		s.state[kind] = newCollection()
	}
	return s
}

// SetClock overrides the creation timestamp source.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowFn = now
}

func (s *Store) collection(kind domain.Kind) (*collection, error) {
	c, ok := s.state[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownKind, string(kind))
	}
	return c, nil
}

// List returns clones of every record of kind in insertion order.
func (s *Store) List(_ context.Context, kind domain.Kind) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, err := s.collection(kind)
	if err != nil {
		return nil, err
	}
	return c.records(), nil
}

// Create validates fields against the kind's schema and appends a new record.
func (s *Store) Create(_ context.Context, kind domain.Kind, fields domain.Fields) (domain.Record, error) {
	record, err := domain.NewRecord(kind)
	if err != nil {
		return nil, err
	}
	if err := record.Apply(fields); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.collection(kind)
	if err != nil {
		return nil, err
	}
	id := s.idFn()
	for {
		if _, taken := c.byID[id]; !taken {
			break
		}
		id = s.idFn()
	}
	record.Stamp(id, s.nowFn())
	c.append(record)
	return record.Clone(), nil
}

// Update merges fields into an existing record. The merge is applied to a copy
// so a validation failure leaves the stored record unchanged.
func (s *Store) Update(_ context.Context, kind domain.Kind, id string, fields domain.Fields) (domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.collection(kind)
	if err != nil {
		return nil, err
	}
	existing, ok := c.byID[id]
	if !ok {
		return nil, domain.NotFoundError{Kind: kind, ID: id}
	}
	updated := existing.Clone()
	if err := updated.Apply(fields); err != nil {
		return nil, err
	}
	c.byID[id] = updated
	return updated.Clone(), nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

// ExportKind clones one collection.
func (s *Store) ExportKind(kind domain.Kind) []domain.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.state[kind]
	if !ok {
		return []domain.Record{}
	}
	return c.records()
}

// ExportState clones every collection.
func (s *Store) ExportState() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make(domain.Snapshot, len(s.state))
	for kind, c := range s.state {
		snapshot[kind] = c.records()
	}
	return snapshot
}

// ImportState replaces every collection present in snapshot. Kinds missing
// from the snapshot are reset to empty.
func (s *Store) ImportState(snapshot domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, kind := range domain.Kinds() {
		s.state[kind] = collectionFrom(snapshot[kind])
	}
}

// ReplaceKind swaps one collection wholesale.
func (s *Store) ReplaceKind(kind domain.Kind, records []domain.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state[kind]; !ok {
		return
	}
	s.state[kind] = collectionFrom(records)
}
