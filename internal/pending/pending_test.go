package pending

import "testing"

func TestPutTake(t *testing.T) {
	tb := NewTable()
	tb.Put(UserKey("bob"), Record{From: "alice", Room: "#town"})

	rec, ok := tb.Take(UserKey("bob"))
	if !ok {
		t.Fatal("expected a record for bob")
	}
	if rec.From != "alice" || rec.Room != "#town" {
		t.Errorf("rec = %+v", rec)
	}

	if _, ok := tb.Take(UserKey("bob")); ok {
		t.Error("Take should have removed the record")
	}
}

func TestTakeMiss(t *testing.T) {
	tb := NewTable()
	if _, ok := tb.Take(UserKey("nobody")); ok {
		t.Error("miss should report absent")
	}
}

func TestOverwrite(t *testing.T) {
	tb := NewTable()
	tb.Put(UserKey("bob"), Record{From: "alice", Room: "#town"})
	tb.Put(UserKey("bob"), Record{From: "carol", Room: "#pub"})

	rec, ok := tb.Take(UserKey("bob"))
	if !ok {
		t.Fatal("expected a record")
	}
	if rec.From != "carol" {
		t.Errorf("From = %q, want carol (last writer wins)", rec.From)
	}
	if tb.Len() != 0 {
		t.Errorf("Len = %d, want 0", tb.Len())
	}
}

func TestKeyIsolation(t *testing.T) {
	tb := NewTable()
	tb.Put(UserKey("bob"), Record{From: "alice", Room: "#town"})
	tb.Put(LogKey("bob"), Record{From: "bob", Room: "#town"})

	rec, ok := tb.Take(UserKey("bob"))
	if !ok || rec.From != "alice" {
		t.Fatalf("user record = %+v ok=%v", rec, ok)
	}

	// The background-log record must be untouched.
	rec, ok = tb.Take(LogKey("bob"))
	if !ok || rec.From != "bob" {
		t.Fatalf("log record = %+v ok=%v", rec, ok)
	}
}
