package store

import (
	"path/filepath"
	"testing"
)

// testDBPath returns a temporary path for test databases
func testDBPath(t *testing.T) string {
	tmpDir := t.TempDir()
	return filepath.Join(tmpDir, "offline.db")
}

// TestOpen_Success tests database creation and schema initialization
func TestOpen_Success(t *testing.T) {
	path := testDBPath(t)
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer st.Close()

	if st.Path() != path {
		t.Errorf("Path() = %q, want %q", st.Path(), path)
	}
}

// TestOpen_CreatesParentDir tests that missing parent directories are created
func TestOpen_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "offline.db")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer st.Close()
}

// TestSQLite_GetMissing tests reading a key that was never written
func TestSQLite_GetMissing(t *testing.T) {
	st, err := Open(testDBPath(t))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer st.Close()

	_, ok, err := st.Get("nope")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if ok {
		t.Error("Get() reported a value for a missing key")
	}
}

// TestSQLite_SetGetRoundTrip tests basic write/read
func TestSQLite_SetGetRoundTrip(t *testing.T) {
	st, err := Open(testDBPath(t))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer st.Close()

	want := []byte(`{"workOrders":[]}`)
	if err := st.Set(KeySnapshot, want); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	got, ok, err := st.Get(KeySnapshot)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if !ok {
		t.Fatal("Get() reported no value after Set()")
	}
	if string(got) != string(want) {
		t.Errorf("Get() = %q, want %q", got, want)
	}
}

// TestSQLite_SetOverwrites tests last-writer-wins on a key
func TestSQLite_SetOverwrites(t *testing.T) {
	st, err := Open(testDBPath(t))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer st.Close()

	if err := st.Set(KeyLastSync, []byte("2026-01-01T00:00:00Z")); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := st.Set(KeyLastSync, []byte("2026-02-01T00:00:00Z")); err != nil {
		t.Fatalf("second Set() failed: %v", err)
	}

	got, _, err := st.Get(KeyLastSync)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if string(got) != "2026-02-01T00:00:00Z" {
		t.Errorf("Get() = %q, want last written value", got)
	}
}

// TestSQLite_Delete tests removal and idempotency of Delete
func TestSQLite_Delete(t *testing.T) {
	st, err := Open(testDBPath(t))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer st.Close()

	if err := st.Set(KeyPendingActions, []byte("[]")); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := st.Delete(KeyPendingActions); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, ok, _ := st.Get(KeyPendingActions); ok {
		t.Error("key still present after Delete()")
	}

	// Deleting again is not an error
	if err := st.Delete(KeyPendingActions); err != nil {
		t.Errorf("Delete() of absent key failed: %v", err)
	}
}

// TestSQLite_Size tests byte-size reporting
func TestSQLite_Size(t *testing.T) {
	st, err := Open(testDBPath(t))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer st.Close()

	n, err := st.Size(KeySnapshot)
	if err != nil {
		t.Fatalf("Size() failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Size() of absent key = %d, want 0", n)
	}

	if err := st.Set(KeySnapshot, []byte("12345")); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	n, err = st.Size(KeySnapshot)
	if err != nil {
		t.Fatalf("Size() failed: %v", err)
	}
	if n != 5 {
		t.Errorf("Size() = %d, want 5", n)
	}
}

// TestSQLite_SurvivesReopen tests that values persist across Close/Open
func TestSQLite_SurvivesReopen(t *testing.T) {
	path := testDBPath(t)

	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := st.Set(KeySnapshot, []byte("persisted")); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	st2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer st2.Close()

	got, ok, err := st2.Get(KeySnapshot)
	if err != nil {
		t.Fatalf("Get() after reopen failed: %v", err)
	}
	if !ok || string(got) != "persisted" {
		t.Errorf("Get() after reopen = %q, %v; want \"persisted\", true", got, ok)
	}
}

// TestMemory_Contract tests the in-memory store against the same contract
func TestMemory_Contract(t *testing.T) {
	m := NewMemory()
	defer m.Close()

	if _, ok, _ := m.Get("k"); ok {
		t.Error("Get() reported a value for a missing key")
	}

	if err := m.Set("k", []byte("v1")); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := m.Set("k", []byte("v2")); err != nil {
		t.Fatalf("second Set() failed: %v", err)
	}

	got, ok, _ := m.Get("k")
	if !ok || string(got) != "v2" {
		t.Errorf("Get() = %q, %v; want \"v2\", true", got, ok)
	}

	n, _ := m.Size("k")
	if n != 2 {
		t.Errorf("Size() = %d, want 2", n)
	}

	if err := m.Delete("k"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, ok, _ := m.Get("k"); ok {
		t.Error("key still present after Delete()")
	}
}

// TestMemory_GetCopies tests that callers cannot mutate stored bytes
func TestMemory_GetCopies(t *testing.T) {
	m := NewMemory()
	defer m.Close()

	if err := m.Set("k", []byte("abc")); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	got, _, _ := m.Get("k")
	got[0] = 'x'

	again, _, _ := m.Get("k")
	if string(again) != "abc" {
		t.Errorf("stored value mutated through Get() result: %q", again)
	}
}
