package database

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/go-sod/knn/internal/database"
	"github.com/go-sod/knn/internal/geom"
	"github.com/go-sod/knn/internal/sample/model"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()
	db, err := database.NewFromEnv(ctx, &database.Config{
		FileName:    filepath.Join(t.TempDir(), "test.db"),
		OpenTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close(ctx)
	})
	return New(db)
}

func TestDB_AppendAndFind(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)

	now := time.Now().UTC()
	var batch []model.Sample
	for i := 0; i < 300; i++ {
		batch = append(batch, model.NewSample("houses", geom.Point{float64(i), 1}, float64(i), "", now))
	}
	batch = append(batch, model.NewSample("pets", geom.Point{1}, 0, "cat", now))

	stored, err := db.AppendMany(ctx, batch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stored) != len(batch) || stored[0].Seq != 1 {
		t.Fatalf("stored samples got %d, first seq %d", len(stored), stored[0].Seq)
	}

	list, err := db.FindByDataset("houses", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 300 {
		t.Fatalf("samples got: %d, expected: 300", len(list))
	}
	for i, s := range list {
		if s.Label != float64(i) {
			t.Fatalf("samples are not in insertion order at %d: label %v", i, s.Label)
		}
	}

	filtered, err := db.FindByDataset("houses", func(s model.Sample) bool { return s.Label < 10 })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(filtered) != 10 {
		t.Errorf("filtered samples got: %d, expected: 10", len(filtered))
	}

	count, err := db.CountByDataset("pets")
	if err != nil || count != 1 {
		t.Errorf("count got: %d/%v, expected: 1", count, err)
	}

	keys, err := db.Keys()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sort.Strings(keys)
	if diff := cmp.Diff([]string{"houses", "pets"}, keys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestDB_DeleteDataset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)

	if _, err := db.AppendMany(ctx, []model.Sample{
		model.NewSample("tmp", geom.Point{1}, 1, "", time.Now()),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := db.DeleteDataset(ctx, "tmp"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := db.FindByDataset("tmp", nil); !errors.Is(err, ErrDatasetNotFound) {
		t.Errorf("error got: %v, expected: %v", err, ErrDatasetNotFound)
	}
	if err := db.DeleteDataset(ctx, "tmp"); !errors.Is(err, ErrDatasetNotFound) {
		t.Errorf("error got: %v, expected: %v", err, ErrDatasetNotFound)
	}
	keys, err := db.Keys()
	if err != nil || len(keys) != 0 {
		t.Errorf("keys got: %v/%v, expected none", keys, err)
	}
	count, err := db.CountByDataset("tmp")
	if err != nil || count != 0 {
		t.Errorf("count got: %d/%v, expected: 0", count, err)
	}
}
