package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"homeerp/internal/blob"
	"homeerp/internal/infra/persistence/memory"
	"homeerp/pkg/domain"
)

func newTestExporter(t *testing.T, store blob.Store) (*Exporter, *Service) {
	t.Helper()
	svc, _ := newTestService()
	exp := NewExporter(svc, store)
	tick := 0
	exp.now = func() time.Time {
		tick++
		return time.Date(2026, 10, 19, 10, 0, tick, 0, time.UTC)
	}
	exp.idFn = func() string { return fmt.Sprintf("%08d-0000-0000-0000-000000000000", tick) }
	return exp, svc
}

func TestExportWritesSnapshotAndLoadsBack(t *testing.T) {
	ctx := context.Background()
	exp, svc := newTestExporter(t, blob.NewMemory())
	if _, err := svc.Create(ctx, domain.KindRecipe, domain.Fields{"title": "Pancakes", "ingredients": "Flour, Eggs", "category": "breakfast"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, domain.KindInventoryItem, domain.Fields{"name": "Eggs", "quantity": 12, "expirationDate": "2026-11-01"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	info, err := exp.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if info.Key != "exports/20261019T100001.000Z-00000001.json" {
		t.Fatalf("unexpected key %s", info.Key)
	}
	if info.ContentType != "application/json" || info.Metadata["records"] != "2" {
		t.Fatalf("unexpected info %+v", info)
	}

	snap, err := exp.Load(ctx, ExportName(info.Key))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	recipes := domain.As[domain.Recipe](snap[domain.KindRecipe])
	items := domain.As[domain.InventoryItem](snap[domain.KindInventoryItem])
	if len(recipes) != 1 || recipes[0].Title != "Pancakes" || len(items) != 1 || items[0].ExpirationDate == nil {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	restored := memory.NewStore()
	restored.ImportState(snap)
	listed, _ := restored.List(ctx, domain.KindRecipe)
	if len(listed) != 1 {
		t.Fatalf("expected snapshot to hydrate a store")
	}
}

func TestExportListAndPrune(t *testing.T) {
	ctx := context.Background()
	exp, _ := newTestExporter(t, blob.NewMemory())
	for range 4 {
		if _, err := exp.Export(ctx); err != nil {
			t.Fatalf("export: %v", err)
		}
	}
	infos, err := exp.List(ctx)
	if err != nil || len(infos) != 4 {
		t.Fatalf("list: %v %v", infos, err)
	}
	if infos[0].URL != "" {
		t.Fatalf("memory driver cannot sign urls")
	}

	removed, err := exp.Prune(ctx, 1)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if len(removed) != 3 || removed[0] != infos[0].Key {
		t.Fatalf("unexpected removed %v", removed)
	}
	left, _ := exp.List(ctx)
	if len(left) != 1 || left[0].Key != infos[3].Key {
		t.Fatalf("expected newest export kept, got %+v", left)
	}
	if removed, err := exp.Prune(ctx, 5); err != nil || len(removed) != 0 {
		t.Fatalf("prune above count: %v %v", removed, err)
	}
	if _, err := exp.Prune(ctx, -1); err == nil {
		t.Fatalf("expected negative keep error")
	}
}

func TestPruneOnlyTouchesListedExports(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemory()
	foreign := []string{ExportPrefix + "README.txt", ExportPrefix + "archive/old.json"}
	for _, key := range foreign {
		if _, err := store.Put(ctx, key, strings.NewReader("keep me"), blob.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	exp, _ := newTestExporter(t, store)
	for range 2 {
		if _, err := exp.Export(ctx); err != nil {
			t.Fatalf("export: %v", err)
		}
	}
	if infos, _ := exp.List(ctx); len(infos) != 2 {
		t.Fatalf("expected only exports listed, got %+v", infos)
	}
	removed, err := exp.Prune(ctx, 0)
	if err != nil || len(removed) != 2 {
		t.Fatalf("prune: %v %v", removed, err)
	}
	for _, key := range foreign {
		if _, err := store.Head(ctx, key); err != nil {
			t.Fatalf("prune removed unlisted object %s: %v", key, err)
		}
	}
}

func TestExportListSignsURLsWhenSupported(t *testing.T) {
	ctx := context.Background()
	store, err := blob.Open(ctx, blob.Config{Driver: blob.DriverFilesystem, FSRoot: t.TempDir()})
	if err != nil {
		t.Fatalf("open blob: %v", err)
	}
	exp, _ := newTestExporter(t, store)
	info, err := exp.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	infos, err := exp.List(ctx)
	if err != nil || len(infos) != 1 {
		t.Fatalf("list: %v %v", infos, err)
	}
	if infos[0].URL != "http://local.blob/"+info.Key {
		t.Fatalf("unexpected url %s", infos[0].URL)
	}
}

func TestExportToS3Fake(t *testing.T) {
	ctx := context.Background()
	exp, _ := newTestExporter(t, blob.NewS3Fake())
	info, err := exp.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	infos, err := exp.List(ctx)
	if err != nil || len(infos) != 1 || infos[0].Key != info.Key {
		t.Fatalf("list: %+v %v", infos, err)
	}
	if !strings.Contains(infos[0].URL, "X-Amz-Signature") {
		t.Fatalf("expected presigned url, got %q", infos[0].URL)
	}
	_, body, err := exp.Open(ctx, ExportName(info.Key))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer body.Close()
	data, _ := io.ReadAll(body)
	if !strings.Contains(string(data), `"recipes":[]`) {
		t.Fatalf("unexpected export body %s", data)
	}
}

func TestExportOpenRejectsBadNames(t *testing.T) {
	exp, _ := newTestExporter(t, blob.NewMemory())
	for _, name := range []string{"", "../secret.json", "a/b.json", "notes.txt"} {
		if _, _, err := exp.Open(context.Background(), name); !errors.Is(err, ErrInvalidExportName) {
			t.Fatalf("name %q: expected invalid name, got %v", name, err)
		}
	}
	if _, _, err := exp.Open(context.Background(), "missing.json"); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestExportFailsWhenStoreUnavailable(t *testing.T) {
	svc := NewService(&failingStore{Store: memory.NewStore(), failKind: domain.KindRecipe})
	mem := blob.NewMemory()
	exp := NewExporter(svc, mem)
	if _, err := exp.Export(context.Background()); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	if infos, _ := mem.List(context.Background(), ExportPrefix); len(infos) != 0 {
		t.Fatalf("nothing should be written on failure")
	}
}
