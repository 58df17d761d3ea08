package refs

import (
	"testing"
)

// countingStore records how many loads each session triggered.
type countingStore struct {
	tables map[string][]Entry
	loads  map[string]int
}

func newCountingStore() *countingStore {
	return &countingStore{
		tables: make(map[string][]Entry),
		loads:  make(map[string]int),
	}
}

func (s *countingStore) Save(session string, entries []Entry) error {
	s.tables[session] = entries
	return nil
}

func (s *countingStore) Load(session string) ([]Entry, error) {
	s.loads[session]++
	return s.tables[session], nil
}

func (s *countingStore) Delete(session string) error {
	delete(s.tables, session)
	return nil
}

func TestResolveAfterRecord(t *testing.T) {
	tr := NewTracker(nil)
	if err := tr.RecordSnapshot("s1", []Entry{
		{Handle: "0", BackendID: 11, Role: "button", Name: "Save"},
		{Handle: "1", BackendID: 12, Role: "link", Name: "Home"},
	}); err != nil {
		t.Fatal(err)
	}

	e, ok := tr.Resolve("s1", "1")
	if !ok {
		t.Fatal("Resolve(s1, 1) missed")
	}
	if e.BackendID != 12 || e.Role != "link" {
		t.Errorf("Resolve(s1, 1) = %+v, want backend 12 link", e)
	}
	if _, ok := tr.Resolve("s1", "5"); ok {
		t.Error("Resolve(s1, 5) hit, want miss")
	}
	if got := tr.Count("s1"); got != 2 {
		t.Errorf("Count(s1) = %d, want 2", got)
	}
}

func TestSnapshotReplacesTable(t *testing.T) {
	tr := NewTracker(nil)
	tr.RecordSnapshot("s1", []Entry{
		{Handle: "0", BackendID: 11, Role: "button"},
		{Handle: "1", BackendID: 12, Role: "button"},
	})
	tr.RecordSnapshot("s1", []Entry{
		{Handle: "0", BackendID: 99, Role: "textbox"},
	})

	e, ok := tr.Resolve("s1", "0")
	if !ok || e.BackendID != 99 {
		t.Errorf("Resolve(s1, 0) = %+v ok=%v, want backend 99", e, ok)
	}
	// Handle 1 belonged to the previous snapshot and must not survive.
	if _, ok := tr.Resolve("s1", "1"); ok {
		t.Error("stale handle 1 still resolves after new snapshot")
	}
}

func TestLazyReloadHappensExactlyOnce(t *testing.T) {
	store := newCountingStore()
	store.tables["s1"] = []Entry{{Handle: "3", BackendID: 42, Role: "button", Name: "Go"}}

	// Fresh tracker simulating a restarted process: nothing in memory,
	// table present in the store.
	tr := NewTracker(store)

	e, ok := tr.Resolve("s1", "3")
	if !ok || e.BackendID != 42 {
		t.Fatalf("Resolve after restart = %+v ok=%v, want backend 42", e, ok)
	}
	if store.loads["s1"] != 1 {
		t.Errorf("loads = %d, want 1", store.loads["s1"])
	}

	// Subsequent lookups, hit or miss, must not reload.
	tr.Resolve("s1", "3")
	if _, ok := tr.Resolve("s1", "999"); ok {
		t.Error("Resolve(s1, 999) hit, want miss")
	}
	if store.loads["s1"] != 1 {
		t.Errorf("loads after repeat lookups = %d, want 1", store.loads["s1"])
	}
}

func TestMissOnEmptyStoreDoesNotRetry(t *testing.T) {
	store := newCountingStore()
	tr := NewTracker(store)

	if _, ok := tr.Resolve("ghost", "1"); ok {
		t.Error("Resolve on unknown session hit, want miss")
	}
	if _, ok := tr.Resolve("ghost", "1"); ok {
		t.Error("second Resolve on unknown session hit, want miss")
	}
	if store.loads["ghost"] != 1 {
		t.Errorf("loads = %d, want 1 (one-shot reload)", store.loads["ghost"])
	}
}

func TestForgetDropsMemoryAndStore(t *testing.T) {
	store := newCountingStore()
	tr := NewTracker(store)
	tr.RecordSnapshot("s1", []Entry{{Handle: "0", BackendID: 7, Role: "button"}})

	tr.Forget("s1")

	if _, ok := tr.Resolve("s1", "0"); ok {
		t.Error("handle resolves after Forget")
	}
	if _, present := store.tables["s1"]; present {
		t.Error("store still holds table after Forget")
	}
}
