package memory

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"homeerp/internal/blob/core"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := New()
	if store.Driver() != core.DriverMemory {
		t.Fatalf("unexpected driver %s", store.Driver())
	}
	md := map[string]string{"k": "v"}
	if _, err := store.Put(ctx, "b", strings.NewReader("beta"), core.PutOptions{Metadata: md}); err != nil {
		t.Fatalf("put b: %v", err)
	}
	md["k"] = "mutated"
	if _, err := store.Put(ctx, "a", strings.NewReader("alpha"), core.PutOptions{ContentType: "text/plain"}); err != nil {
		t.Fatalf("put a: %v", err)
	}
	if _, err := store.Put(ctx, "a", strings.NewReader("again"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected exists, got %v", err)
	}

	head, err := store.Head(ctx, "b")
	if err != nil || head.Metadata["k"] != "v" || head.Size != 4 {
		t.Fatalf("head: %+v %v", head, err)
	}
	_, rc, err := store.Get(ctx, "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, _ := io.ReadAll(rc)
	if string(data) != "alpha" {
		t.Fatalf("unexpected data %q", data)
	}

	list, _ := store.List(ctx, "")
	if len(list) != 2 || list[0].Key != "a" || list[1].Key != "b" {
		t.Fatalf("unexpected list %+v", list)
	}
	if ok, _ := store.Delete(ctx, "a"); !ok {
		t.Fatalf("expected delete to report existing key")
	}
	if _, _, err := store.Get(ctx, "a"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if _, err := store.PresignURL(ctx, "b", core.SignedURLOptions{}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected unsupported presign, got %v", err)
	}
}

func TestGetReturnsInfoConsistentWithData(t *testing.T) {
	ctx := context.Background()
	store := New()
	for i := 0; i < 50; i++ {
		key := "k" + strings.Repeat("x", i)
		if _, err := store.Put(ctx, key, strings.NewReader("payload"), core.PutOptions{ContentType: "text/plain", Metadata: map[string]string{"n": "1"}}); err != nil {
			t.Fatalf("put: %v", err)
		}
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = store.Delete(ctx, key)
		}()
		go func() {
			defer wg.Done()
			info, rc, err := store.Get(ctx, key)
			if errors.Is(err, core.ErrNotFound) {
				return
			}
			if err != nil {
				t.Errorf("get: %v", err)
				return
			}
			data, _ := io.ReadAll(rc)
			if info.Key != key || info.Size != int64(len(data)) || info.ContentType != "text/plain" {
				t.Errorf("info %+v does not describe %q", info, data)
			}
		}()
		wg.Wait()
	}

	if _, err := store.Put(ctx, "meta", strings.NewReader("m"), core.PutOptions{Metadata: map[string]string{"k": "v"}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	info, _, _ := store.Get(ctx, "meta")
	info.Metadata["k"] = "mutated"
	if head, _ := store.Head(ctx, "meta"); head.Metadata["k"] != "v" {
		t.Fatalf("get leaked metadata map")
	}
}
