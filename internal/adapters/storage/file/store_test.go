package file

import (
	"context"
	"path/filepath"
	"testing"

	"animal-tracker/internal/domain/animals"
)

func TestRecordStore_MissingFileIsEmptySet(t *testing.T) {
	store := NewRecordStore(filepath.Join(t.TempDir(), "records.json"))

	recs, err := store.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll on missing file: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected empty set, got %#v", recs)
	}
}

func TestRecordStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "records.json")
	store := NewRecordStore(path)
	ctx := context.Background()

	in := []animals.Record{
		{UUID: "u1", OwnerID: "owner-1", FarmTag: "A001", SyncStatus: animals.StatusPendingCreate},
		{UUID: "u2", OwnerID: "owner-1", Note: "seca"},
	}
	if err := store.SaveAll(ctx, in); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	// releer con una instancia nueva: los datos están en disco, no en memoria
	out, err := NewRecordStore(path).LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(out) != 2 || out[0].UUID != "u1" || out[1].Note != "seca" {
		t.Fatalf("round trip mismatch: %#v", out)
	}
	if out[0].SyncStatus != animals.StatusPendingCreate {
		t.Fatalf("sync status lost in round trip: %#v", out[0])
	}
}

func TestRecordStore_SaveReplacesWholeSet(t *testing.T) {
	store := NewRecordStore(filepath.Join(t.TempDir(), "records.json"))
	ctx := context.Background()

	_ = store.SaveAll(ctx, []animals.Record{{UUID: "u1"}, {UUID: "u2"}})
	if err := store.SaveAll(ctx, []animals.Record{{UUID: "u3"}}); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	out, _ := store.LoadAll(ctx)
	if len(out) != 1 || out[0].UUID != "u3" {
		t.Fatalf("expected set replaced, got %#v", out)
	}
}

func TestQueue_FIFOAndClear(t *testing.T) {
	queue := NewQueue(filepath.Join(t.TempDir(), "queue.json"))
	ctx := context.Background()

	entries, err := queue.DrainAll(ctx)
	if err != nil {
		t.Fatalf("DrainAll on missing file: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty queue, got %#v", entries)
	}

	if err := queue.Enqueue(ctx, animals.ActionCreate, animals.Record{UUID: "u1"}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := queue.Enqueue(ctx, animals.ActionUpdate, animals.Record{UUID: "u2"}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	entries, err = queue.DrainAll(ctx)
	if err != nil {
		t.Fatalf("DrainAll: %v", err)
	}
	if len(entries) != 2 || entries[0].Action != animals.ActionCreate || entries[1].Data.UUID != "u2" {
		t.Fatalf("expected FIFO order, got %#v", entries)
	}

	// DrainAll no consume; Clear sí
	entries, _ = queue.DrainAll(ctx)
	if len(entries) != 2 {
		t.Fatalf("expected drain to be non-destructive, got %#v", entries)
	}

	if err := queue.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	entries, _ = queue.DrainAll(ctx)
	if len(entries) != 0 {
		t.Fatalf("expected empty queue after clear, got %#v", entries)
	}
}
