package identity

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"bob", "bob"},
		{"@Bob", "bob"},
		{" Bob ", "bob"},
		{"+carol", "carol"},
		{"@+Dave", "dave"},
		{"ALICE", "alice"},
		{"", ""},
		{"  ", ""},
		{"@", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.raw); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizeAgreement(t *testing.T) {
	raws := []string{"@Bob", "bob", " Bob ", "+BOB"}
	for _, raw := range raws {
		if Normalize(raw) != "bob" {
			t.Errorf("Normalize(%q) = %q, want bob", raw, Normalize(raw))
		}
	}
}
