//go:build sqlite

package storage

import (
	"context"
	"path/filepath"
	"testing"

	"archgen/internal/model"
)

func TestSQLiteStoreArchitectureAndBatchRoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "archgen.db")

	store := NewSQLiteStore(dbPath)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	arch := sampleArchitecture("a1")
	if err := store.SaveArchitecture(ctx, arch); err != nil {
		t.Fatalf("save architecture: %v", err)
	}
	arch.Seed = 99
	if err := store.SaveArchitecture(ctx, arch); err != nil {
		t.Fatalf("upsert architecture: %v", err)
	}

	loaded, ok, err := store.GetArchitecture(ctx, "a1")
	if err != nil {
		t.Fatalf("get architecture: %v", err)
	}
	if !ok {
		t.Fatal("expected architecture a1")
	}
	if loaded.Seed != 99 || len(loaded.Steps) != 2 || !loaded.FinalShape.Equal(arch.FinalShape) {
		t.Fatalf("unexpected architecture loaded: %+v", loaded)
	}

	ids, err := store.ListArchitectures(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 1 || ids[0] != "a1" {
		t.Fatalf("unexpected ids: %v", ids)
	}

	batch := model.Batch{VersionedRecord: CurrentVersion(), ID: "b1", ArchitectureIDs: []string{"a1"}}
	if err := store.SaveBatch(ctx, batch); err != nil {
		t.Fatalf("save batch: %v", err)
	}
	loadedBatch, ok, err := store.GetBatch(ctx, "b1")
	if err != nil {
		t.Fatalf("get batch: %v", err)
	}
	if !ok || len(loadedBatch.ArchitectureIDs) != 1 {
		t.Fatalf("unexpected batch: %+v", loadedBatch)
	}

	if _, ok, err := store.GetBatch(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing batch, ok=%t err=%v", ok, err)
	}
}

func TestSQLiteStoreRequiresInit(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "archgen.db"))
	if _, _, err := store.GetArchitecture(context.Background(), "a1"); err == nil {
		t.Fatal("expected uninitialized store error")
	}
	if err := NewSQLiteStore("").Init(context.Background()); err == nil {
		t.Fatal("expected missing path error")
	}
}
