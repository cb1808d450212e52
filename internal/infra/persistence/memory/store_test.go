package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"homeerp/internal/infra/persistence/memory"
	"homeerp/pkg/domain"
)

func TestListEmptyKindReturnsEmptySlice(t *testing.T) {
	store := memory.NewStore()
	for _, kind := range domain.Kinds() {
		got, err := store.List(context.Background(), kind)
		if err != nil {
			t.Fatalf("list %s: %v", kind, err)
		}
		if got == nil || len(got) != 0 {
			t.Fatalf("expected empty non-nil slice for %s, got %#v", kind, got)
		}
	}
}

func TestCreateAssignsFreshIDsAndKeepsInsertionOrder(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	seen := map[string]bool{}
	titles := []string{"Pancakes", "Omelette", "Waffles"}
	for _, title := range titles {
		rec, err := store.Create(ctx, domain.KindRecipe, domain.Fields{"title": title, "category": "breakfast"})
		if err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
		if rec.RecordID() == "" || seen[rec.RecordID()] {
			t.Fatalf("expected fresh id, got %q", rec.RecordID())
		}
		seen[rec.RecordID()] = true
		if rec.CreatedTime().IsZero() {
			t.Fatalf("expected creation time to be set")
		}
	}
	listed, err := store.List(ctx, domain.KindRecipe)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	recipes := domain.As[domain.Recipe](listed)
	if len(recipes) != len(titles) {
		t.Fatalf("expected %d recipes, got %d", len(titles), len(recipes))
	}
	for i, want := range titles {
		if recipes[i].Title != want {
			t.Fatalf("order mismatch at %d: want %s, got %s", i, want, recipes[i].Title)
		}
	}
}

func TestCreateDropsUnknownFieldsAndIgnoresReservedKeys(t *testing.T) {
	store := memory.NewStore()
	rec, err := store.Create(context.Background(), domain.KindRecipe, domain.Fields{
		"id":        "chosen-by-client",
		"title":     "Soup",
		"spiciness": 9,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.RecordID() == "chosen-by-client" {
		t.Fatalf("client supplied id must be ignored")
	}
	if got := rec.(*domain.Recipe).Title; got != "Soup" {
		t.Fatalf("unexpected title %q", got)
	}
}

func TestCreateValidationErrorStoresNothing(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	_, err := store.Create(ctx, domain.KindTransaction, domain.Fields{"description": "rent", "amount": "lots"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err = store.Create(ctx, domain.KindVideoEvent, domain.Fields{"title": "shoot", "type": "sleeping"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected enum validation error, got %v", err)
	}
	for _, kind := range []domain.Kind{domain.KindTransaction, domain.KindVideoEvent} {
		listed, _ := store.List(ctx, kind)
		if len(listed) != 0 {
			t.Fatalf("expected nothing stored for %s, got %d", kind, len(listed))
		}
	}
}

func TestUpdateMergesPartialFields(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	created, err := store.Create(ctx, domain.KindInventoryItem, domain.Fields{"name": "Eggs", "quantity": 12, "lowStockThreshold": 5})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := created.RecordID()
	for i := 0; i < 2; i++ {
		updated, err := store.Update(ctx, domain.KindInventoryItem, id, domain.Fields{"quantity": 11})
		if err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
		item := updated.(*domain.InventoryItem)
		if item.Quantity != 11 || item.Name != "Eggs" || item.LowStockThreshold != 5 {
			t.Fatalf("unexpected item after update %d: %+v", i, item)
		}
	}
	listed, _ := store.List(ctx, domain.KindInventoryItem)
	items := domain.As[domain.InventoryItem](listed)
	if len(items) != 1 || items[0].Quantity != 11 || items[0].RecordID() != id {
		t.Fatalf("unexpected listing: %+v", items)
	}
	if !items[0].CreatedAt.Equal(created.CreatedTime()) {
		t.Fatalf("update must not touch createdAt")
	}
}

func TestUpdateUnknownIDReturnsNotFoundWithoutMutation(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	if _, err := store.Create(ctx, domain.KindInventoryItem, domain.Fields{"name": "Flour", "quantity": 2}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := store.Update(ctx, domain.KindInventoryItem, "doesNotExist", domain.Fields{"quantity": 1})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	listed, _ := store.List(ctx, domain.KindInventoryItem)
	if len(listed) != 1 || listed[0].(*domain.InventoryItem).Quantity != 2 {
		t.Fatalf("collection mutated: %+v", listed)
	}
}

func TestUpdateValidationFailureLeavesRecordIntact(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	created, _ := store.Create(ctx, domain.KindInventoryItem, domain.Fields{"name": "Milk", "quantity": 3})
	_, err := store.Update(ctx, domain.KindInventoryItem, created.RecordID(), domain.Fields{"name": "Oat milk", "quantity": 1.5})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	listed, _ := store.List(ctx, domain.KindInventoryItem)
	if got := listed[0].(*domain.InventoryItem); got.Name != "Milk" || got.Quantity != 3 {
		t.Fatalf("record partially updated: %+v", got)
	}
}

func TestReturnedRecordsAreIsolated(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	created, _ := store.Create(ctx, domain.KindVideoTemplate, domain.Fields{"name": "Vlog", "sections": []any{"intro", "outro"}})
	created.(*domain.VideoTemplate).Sections[0] = "mutated"
	listed, _ := store.List(ctx, domain.KindVideoTemplate)
	listed[0].(*domain.VideoTemplate).Name = "mutated"
	again, _ := store.List(ctx, domain.KindVideoTemplate)
	tpl := again[0].(*domain.VideoTemplate)
	if tpl.Name != "Vlog" || tpl.Sections[0] != "intro" {
		t.Fatalf("store state leaked to caller: %+v", tpl)
	}
}

func TestExportImportRoundTripPreservesOrder(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		if _, err := store.Create(ctx, domain.KindEducationalResource, domain.Fields{"title": name, "category": "editing"}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	snapshot := store.ExportState()

	restored := memory.NewStore()
	restored.ImportState(snapshot)
	listed, _ := restored.List(ctx, domain.KindEducationalResource)
	resources := domain.As[domain.EducationalResource](listed)
	if len(resources) != 3 || resources[0].Title != "a" || resources[2].Title != "c" {
		t.Fatalf("unexpected restored state: %+v", resources)
	}
}

func TestUnknownKindIsRejected(t *testing.T) {
	store := memory.NewStore()
	if _, err := store.List(context.Background(), domain.Kind("chores")); !errors.Is(err, domain.ErrUnknownKind) {
		t.Fatalf("expected unknown kind, got %v", err)
	}
}

func TestConcurrentCreatesKeepEveryRecord(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	const writers = 64
	ids := make(chan string, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec, err := store.Create(ctx, domain.KindRecipe, domain.Fields{"title": i})
			if err != nil {
				t.Errorf("create %d: %v", i, err)
				return
			}
			ids <- rec.RecordID()
		}(i)
	}
	wg.Wait()
	close(ids)
	seen := map[string]bool{}
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
	listed, _ := store.List(ctx, domain.KindRecipe)
	if len(seen) != writers || len(listed) != writers {
		t.Fatalf("expected %d records, got %d ids and %d listed", writers, len(seen), len(listed))
	}
}

func TestConcurrentUpdatesLastWriteWins(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	created, err := store.Create(ctx, domain.KindInventoryItem, domain.Fields{"name": "Eggs", "quantity": 0})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	const writers = 32
	var wg sync.WaitGroup
	for i := 1; i <= writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := store.Update(ctx, domain.KindInventoryItem, created.RecordID(), domain.Fields{"quantity": i, "name": "Eggs"}); err != nil {
				t.Errorf("update %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()
	listed, _ := store.List(ctx, domain.KindInventoryItem)
	item := listed[0].(*domain.InventoryItem)
	if len(listed) != 1 || item.Quantity < 1 || item.Quantity > writers || item.Name != "Eggs" {
		t.Fatalf("final record is not one of the written values: %+v", item)
	}
}
