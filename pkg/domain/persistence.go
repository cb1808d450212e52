package domain

import (
	"context"
	"encoding/json"
	"fmt"
)

// RecordStore is the persistence contract implemented by every backend.
// Records are returned as clones; mutating them does not affect stored state.
type RecordStore interface {
	// List returns every record of kind in insertion order. An empty kind
	// yields an empty, non-nil slice.
	List(ctx context.Context, kind Kind) ([]Record, error)
	// Create assigns a fresh id, applies fields and stores the record.
	Create(ctx context.Context, kind Kind, fields Fields) (Record, error)
	// Update merges fields into the record with id. Unknown ids return an
	// error matching ErrNotFound and leave the collection untouched.
	Update(ctx context.Context, kind Kind, id string, fields Fields) (Record, error)
	Close() error
}

// Snapshot is a point-in-time copy of every collection, keyed by kind.
type Snapshot map[Kind][]Record

// UnmarshalJSON decodes each bucket into its concrete record type. Unknown
// buckets are skipped.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Snapshot, len(raw))
	for name, payload := range raw {
		kind, err := ParseKind(name)
		if err != nil {
			continue
		}
		records, err := DecodeRecords(kind, payload)
		if err != nil {
			return err
		}
		out[kind] = records
	}
	*s = out
	return nil
}

// DecodeRecords decodes a JSON array of records of the given kind.
func DecodeRecords(kind Kind, payload []byte) ([]Record, error) {
	var (
		out []Record
		err error
	)
	switch kind {
	case KindRecipe:
		out, err = decodeAs[Recipe](payload)
	case KindVideoEvent:
		out, err = decodeAs[VideoEvent](payload)
	case KindInventoryItem:
		out, err = decodeAs[InventoryItem](payload)
	case KindTransaction:
		out, err = decodeAs[Transaction](payload)
	case KindVideoTemplate:
		out, err = decodeAs[VideoTemplate](payload)
	case KindEducationalResource:
		out, err = decodeAs[EducationalResource](payload)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, string(kind))
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	return out, nil
}

func decodeAs[T any, P interface {
	*T
	Record
}](payload []byte) ([]Record, error) {
	var items []T
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &items); err != nil {
			return nil, err
		}
	}
	out := make([]Record, 0, len(items))
	for i := range items {
		out = append(out, P(&items[i]))
	}
	return out, nil
}

// CloneRecords deep-copies a slice of records.
func CloneRecords(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		out = append(out, r.Clone())
	}
	return out
}

// As narrows records to their concrete type, skipping any that do not match.
func As[T any](records []Record) []*T {
	out := make([]*T, 0, len(records))
	for _, r := range records {
		if typed, ok := any(r).(*T); ok {
			out = append(out, typed)
		}
	}
	return out
}
