package store_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/derickschaefer/aquarius/internal/store"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

// testDB opens a fresh isolated database in t.TempDir().
// It is closed and deleted automatically when the test ends.
func testDB(t *testing.T) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := store.Open(path)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// ─── Open / Path ──────────────────────────────────────────────────────────────

func TestOpenCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c", "test.db")
	s, err := store.Open(path)
	if err != nil {
		t.Fatalf("Open with nested path: %v", err)
	}
	defer s.Close()
	if s.Path() != path {
		t.Errorf("Path: expected %q, got %q", path, s.Path())
	}
}

func TestSchemaVersionRecorded(t *testing.T) {
	s := testDB(t)
	v, err := s.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != "1" {
		t.Errorf("schema version: expected 1, got %q", v)
	}
}

// ─── Settings ─────────────────────────────────────────────────────────────────

func TestGetMissing(t *testing.T) {
	s := testDB(t)
	v, ok, err := s.Get("aquarius-period")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok || v != "" {
		t.Errorf("missing key: expected (\"\", false), got (%q, %v)", v, ok)
	}
}

func TestSetGetDelete(t *testing.T) {
	s := testDB(t)
	if err := s.Set("aquarius-period", "15.01.2025"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := s.Get("aquarius-period")
	if err != nil || !ok || v != "15.01.2025" {
		t.Fatalf("Get after Set: got (%q, %v, %v)", v, ok, err)
	}

	if err := s.Set("aquarius-period", "06.12.2025"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, _, _ = s.Get("aquarius-period")
	if v != "06.12.2025" {
		t.Errorf("overwrite: expected 06.12.2025, got %q", v)
	}

	if err := s.Delete("aquarius-period"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Get("aquarius-period"); ok {
		t.Error("key should be absent after Delete")
	}
	if err := s.Delete("aquarius-period"); err != nil {
		t.Errorf("deleting a missing key should not error: %v", err)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := store.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Set("aquarius-period", "15.01.2025"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	s.Close()

	s2, err := store.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	v, ok, err := s2.Get("aquarius-period")
	if err != nil || !ok || v != "15.01.2025" {
		t.Errorf("after reopen: got (%q, %v, %v)", v, ok, err)
	}
}

func TestClosedStoreErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := store.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s.Close()

	if err := s.Set("k", "v"); !errors.Is(err, store.ErrClosed) {
		t.Errorf("Set on closed store: expected ErrClosed, got %v", err)
	}
	if _, _, err := s.Get("k"); !errors.Is(err, store.ErrClosed) {
		t.Errorf("Get on closed store: expected ErrClosed, got %v", err)
	}
}

// ─── Stats ────────────────────────────────────────────────────────────────────

func TestStatsAndClear(t *testing.T) {
	s := testDB(t)
	_ = s.Set("aquarius-period", "15.01.2025")

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if len(stats) != 1 || stats[0].Name != "settings" || stats[0].Count != 1 {
		t.Fatalf("Stats: unexpected %+v", stats)
	}
	if stats[0].Bytes != int64(len("aquarius-period")+len("15.01.2025")) {
		t.Errorf("Stats bytes: got %d", stats[0].Bytes)
	}

	if err := s.ClearBucket("settings"); err != nil {
		t.Fatalf("ClearBucket: %v", err)
	}
	if _, ok, _ := s.Get("aquarius-period"); ok {
		t.Error("settings should be empty after ClearBucket")
	}
}
