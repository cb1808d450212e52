package memory

import (
	"context"
	"fmt"
	"sync"

	"homeerp/pkg/domain"
)

// PersistFunc writes the full collection of one kind to durable storage.
type PersistFunc func(ctx context.Context, kind domain.Kind, records []domain.Record) error

// Durable serves reads from memory and writes every successful mutation
// through persist. When persist fails the in-memory change is rolled back and
// the error matches domain.ErrStoreUnavailable.
type Durable struct {
	*Store
	mu      sync.Mutex
	persist PersistFunc
}

// NewDurable wraps mem with a write-through persister.
func NewDurable(mem *Store, persist PersistFunc) *Durable {
	if mem == nil {
		mem = NewStore()
	}
	return &Durable{Store: mem, persist: persist}
}

// Create stores a record and persists its collection.
func (d *Durable) Create(ctx context.Context, kind domain.Kind, fields domain.Fields) (domain.Record, error) {
	return d.mutate(ctx, kind, func() (domain.Record, error) {
		return d.Store.Create(ctx, kind, fields)
	})
}

// Update merges fields into a record and persists its collection.
func (d *Durable) Update(ctx context.Context, kind domain.Kind, id string, fields domain.Fields) (domain.Record, error) {
	return d.mutate(ctx, kind, func() (domain.Record, error) {
		return d.Store.Update(ctx, kind, id, fields)
	})
}

func (d *Durable) mutate(ctx context.Context, kind domain.Kind, fn func() (domain.Record, error)) (domain.Record, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	before := d.Store.ExportKind(kind)
	record, err := fn()
	if err != nil {
		return nil, err
	}
	if d.persist == nil {
		return record, nil
	}
	if err := d.persist(ctx, kind, d.Store.ExportKind(kind)); err != nil {
		d.Store.ReplaceKind(kind, before)
		return nil, domain.Unavailable(fmt.Sprintf("persist %s", kind), err)
	}
	return record, nil
}
