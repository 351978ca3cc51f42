package model

import "testing"

func TestCanonicalPair(t *testing.T) {
	tests := []struct {
		a, b     string
		one, two string
	}{
		{"a", "b", "a", "b"},
		{"b", "a", "a", "b"},
		{"4f1c", "0e9a", "0e9a", "4f1c"},
	}
	for _, tt := range tests {
		one, two := CanonicalPair(tt.a, tt.b)
		if one != tt.one || two != tt.two {
			t.Errorf("CanonicalPair(%q, %q) = (%q, %q), want (%q, %q)", tt.a, tt.b, one, two, tt.one, tt.two)
		}
	}
}

func TestFriendshipOther(t *testing.T) {
	f := &Friendship{
		UserOneID: "a",
		UserTwoID: "b",
		UserOne:   User{ID: "a", Username: "alice"},
		UserTwo:   User{ID: "b", Username: "bob"},
	}
	if got := f.Other("a"); got.Username != "bob" {
		t.Errorf("Other(a) = %q, want bob", got.Username)
	}
	if got := f.Other("b"); got.Username != "alice" {
		t.Errorf("Other(b) = %q, want alice", got.Username)
	}
}
