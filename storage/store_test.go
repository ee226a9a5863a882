package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	for _, table := range []string{"snapshots", "pending_writes"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db returned %v", err)
	}
}

func TestLoad_NotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.Load(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	want := []byte(`{"count":42}`)
	if err := s.Save(ctx, "counter", want); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	got, err := s.Load(ctx, "counter")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Load() = %q, want %q", got, want)
	}
}

func TestSave_ReplacesExistingValue(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "counter", []byte("old")); err != nil {
		t.Fatalf("first Save() failed: %v", err)
	}
	if err := s.Save(ctx, "counter", []byte("new")); err != nil {
		t.Fatalf("second Save() failed: %v", err)
	}

	got, err := s.Load(ctx, "counter")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if string(got) != "new" {
		t.Errorf("Load() = %q, want %q", got, "new")
	}

	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&n); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if n != 1 {
		t.Errorf("snapshot rows = %d, want 1 (upsert, not insert)", n)
	}
}

func TestQueue_DoesNotTouchSnapshots(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.Queue(ctx, "counter", []byte("queued")); err != nil {
		t.Fatalf("Queue() failed: %v", err)
	}

	if _, err := s.Load(ctx, "counter"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() after Queue() error = %v, want ErrNotFound", err)
	}

	n, err := s.PendingCount(ctx)
	if err != nil {
		t.Fatalf("PendingCount() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("PendingCount() = %d, want 1", n)
	}
}

func TestFlush_AppliesNewestWritePerKey(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.Queue(ctx, "a", []byte("1")); err != nil {
		t.Fatalf("Queue() failed: %v", err)
	}
	if err := s.Queue(ctx, "b", []byte("2")); err != nil {
		t.Fatalf("Queue() failed: %v", err)
	}
	if err := s.Queue(ctx, "a", []byte("3")); err != nil {
		t.Fatalf("Queue() failed: %v", err)
	}

	applied, err := s.Flush(ctx)
	if err != nil {
		t.Fatalf("Flush() failed: %v", err)
	}
	if applied != 3 {
		t.Errorf("Flush() applied = %d, want 3", applied)
	}

	got, err := s.Load(ctx, "a")
	if err != nil {
		t.Fatalf("Load(a) failed: %v", err)
	}
	if string(got) != "3" {
		t.Errorf("Load(a) = %q, want %q (later queued write wins)", got, "3")
	}

	got, err = s.Load(ctx, "b")
	if err != nil {
		t.Fatalf("Load(b) failed: %v", err)
	}
	if string(got) != "2" {
		t.Errorf("Load(b) = %q, want %q", got, "2")
	}

	n, err := s.PendingCount(ctx)
	if err != nil {
		t.Fatalf("PendingCount() failed: %v", err)
	}
	if n != 0 {
		t.Errorf("PendingCount() after Flush() = %d, want 0", n)
	}
}

func TestFlush_EmptyQueue(t *testing.T) {
	s := setupTestStore(t)

	applied, err := s.Flush(context.Background())
	if err != nil {
		t.Fatalf("Flush() failed: %v", err)
	}
	if applied != 0 {
		t.Errorf("Flush() applied = %d, want 0", applied)
	}
}
