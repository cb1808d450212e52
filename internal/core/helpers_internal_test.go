package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"homeerp/internal/infra/persistence/memory"
	"homeerp/pkg/domain"
)

type observation struct {
	operation string
	success   bool
}

type recordingMetrics struct {
	mu  sync.Mutex
	obs []observation
}

func (r *recordingMetrics) Observe(_ context.Context, operation string, success bool, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.obs = append(r.obs, observation{operation: operation, success: success})
}

func (r *recordingMetrics) find(operation string) (observation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.obs {
		if o.operation == operation {
			return o, true
		}
	}
	return observation{}, false
}

// failingStore fails List for one kind and delegates everything else.
type failingStore struct {
	*memory.Store
	failKind domain.Kind
}

var errBackendDown = errors.New("connection refused")

func (f *failingStore) List(ctx context.Context, kind domain.Kind) ([]domain.Record, error) {
	if kind == f.failKind {
		return nil, domain.Unavailable("list "+string(kind), errBackendDown)
	}
	return f.Store.List(ctx, kind)
}

func newTestService(opts ...Option) (*Service, *recordingMetrics) {
	rec := &recordingMetrics{}
	opts = append([]Option{WithMetrics(rec)}, opts...)
	return NewService(memory.NewStore(), opts...), rec
}
