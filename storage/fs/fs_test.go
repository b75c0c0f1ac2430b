package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/yaghobieh/auth-master/storage/fs"
)

func TestRoundTripAcrossReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	s, err := fs.New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set("user", `{"id":"u1"}`); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("token", "tok_123"); err != nil {
		t.Fatal(err)
	}

	// A second store over the same path sees the persisted values.
	reloaded, err := fs.New(path)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := reloaded.Get("user"); v != `{"id":"u1"}` {
		t.Errorf("user after reload = %q", v)
	}
	if v, _ := reloaded.Get("token"); v != "tok_123" {
		t.Errorf("token after reload = %q", v)
	}
}

func TestRemovePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	s, err := fs.New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set("k", "v"); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove("k"); err != nil {
		t.Fatal(err)
	}

	reloaded, err := fs.New(path)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := reloaded.Get("k"); v != "" {
		t.Errorf("removed key survived reload: %q", v)
	}
}

func TestMissingFileIsNotAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "never-written.json")
	s, err := fs.New(path)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := s.Get("anything"); v != "" {
		t.Errorf("expected empty store, got %q", v)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("store file created before any write")
	}
}

func TestCorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := fs.New(path); err == nil {
		t.Fatal("expected error for corrupt session file")
	}
}

func TestFilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s, err := fs.New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set("k", "v"); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("session file mode = %o, want 600", perm)
	}
}
