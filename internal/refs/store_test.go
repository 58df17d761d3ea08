package refs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	want := []Entry{
		{Handle: "0", BackendID: 11, Role: "button", Name: "Save"},
		{Handle: "1", BackendID: 12, Role: "link", Name: "Docs", DupIndex: 1},
	}
	if err := store.Save("session-1", want); err != nil {
		t.Fatal(err)
	}

	got, err := store.Load("session-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(want) {
		t.Fatalf("loaded %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestFileStoreSaveReplaces(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := store.Save("s", []Entry{{Handle: "0"}, {Handle: "1"}}); err != nil {
		t.Fatal(err)
	}
	if err := store.Save("s", []Entry{{Handle: "0", Role: "button"}}); err != nil {
		t.Fatal(err)
	}

	got, err := store.Load("s")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Role != "button" {
		t.Errorf("loaded %+v after replace", got)
	}
}

func TestFileStoreMissingSession(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	got, err := store.Load("never-saved")
	if err != nil {
		t.Fatalf("missing file returned error: %v", err)
	}
	if got != nil {
		t.Errorf("missing file returned %+v, want nil", got)
	}
}

func TestFileStoreDelete(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := store.Save("s", []Entry{{Handle: "0"}}); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete("s"); err != nil {
		t.Fatal(err)
	}
	if got, _ := store.Load("s"); got != nil {
		t.Errorf("load after delete = %+v, want nil", got)
	}
	// Deleting twice is not an error.
	if err := store.Delete("s"); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestFileStoreSanitizesSessionNames(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	session := "../../etc/pass:wd"
	if err := store.Save(session, []Entry{{Handle: "0"}}); err != nil {
		t.Fatal(err)
	}

	names, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 {
		t.Fatalf("files in dir = %d, want 1", len(names))
	}
	if filepath.Dir(filepath.Join(dir, names[0].Name())) != dir {
		t.Errorf("file escaped the state dir: %s", names[0].Name())
	}
	for _, r := range names[0].Name() {
		if r == '/' || r == ':' {
			t.Errorf("unsanitized rune %q in %s", r, names[0].Name())
		}
	}

	got, err := store.Load(session)
	if err != nil || len(got) != 1 {
		t.Errorf("load sanitized session = %+v, %v", got, err)
	}
}
