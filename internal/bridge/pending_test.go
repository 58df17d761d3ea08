package bridge

import (
	"errors"
	"testing"
	"time"

	"github.com/ox01024/bb-browser/internal/protocol"
)

func TestResolveDeliversOnce(t *testing.T) {
	tbl := NewPendingTable(time.Second)
	ch, err := tbl.Add("req-1")
	if err != nil {
		t.Fatal(err)
	}

	res := &protocol.Response{ID: "req-1", Success: true}
	if !tbl.Resolve("req-1", res) {
		t.Fatal("first Resolve reported no match")
	}
	// Duplicate result postings must be dropped, not redelivered.
	if tbl.Resolve("req-1", res) {
		t.Error("second Resolve matched an already-resolved entry")
	}

	select {
	case out := <-ch:
		if out.Err != nil {
			t.Fatalf("outcome error: %v", out.Err)
		}
		if out.Response.ID != "req-1" {
			t.Errorf("outcome id = %s", out.Response.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("no outcome delivered")
	}

	if tbl.Len() != 0 {
		t.Errorf("Len = %d after resolve, want 0", tbl.Len())
	}
}

func TestDuplicateIDRejected(t *testing.T) {
	tbl := NewPendingTable(time.Second)
	if _, err := tbl.Add("req-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := tbl.Add("req-1"); err == nil {
		t.Fatal("Add accepted a duplicate in-flight id")
	}
	// The id becomes reusable once the first entry resolves.
	tbl.Resolve("req-1", &protocol.Response{ID: "req-1"})
	if _, err := tbl.Add("req-1"); err != nil {
		t.Errorf("Add after resolve: %v", err)
	}
}

func TestTimeoutDeliversErrTimeout(t *testing.T) {
	tbl := NewPendingTable(20 * time.Millisecond)
	ch, err := tbl.Add("req-1")
	if err != nil {
		t.Fatal(err)
	}

	select {
	case out := <-ch:
		if !errors.Is(out.Err, protocol.ErrTimeout) {
			t.Errorf("outcome err = %v, want ErrTimeout", out.Err)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout never fired")
	}

	// A result arriving after expiry is late: no match.
	if tbl.Resolve("req-1", &protocol.Response{ID: "req-1"}) {
		t.Error("late result matched an expired entry")
	}
}

func TestClearRejectsAllWaiters(t *testing.T) {
	tbl := NewPendingTable(time.Minute)
	ch1, _ := tbl.Add("a")
	ch2, _ := tbl.Add("b")

	tbl.Clear()

	for _, ch := range []<-chan Outcome{ch1, ch2} {
		select {
		case out := <-ch:
			if !errors.Is(out.Err, ErrCleared) {
				t.Errorf("outcome err = %v, want ErrCleared", out.Err)
			}
		case <-time.After(time.Second):
			t.Fatal("Clear did not deliver an outcome")
		}
	}
	if tbl.Len() != 0 {
		t.Errorf("Len = %d after Clear, want 0", tbl.Len())
	}
}
