package types

import "testing"

func TestValidRoomID(t *testing.T) {
	cases := []struct {
		id    string
		valid bool
	}{
		{"chat-42", true},
		{"group-7", true},
		{"chat-", false},
		{"group-", false},
		{"42", false},
		{"", false},
		{"room-42", false},
	}
	for _, tc := range cases {
		if got := ValidRoomID(tc.id); got != tc.valid {
			t.Errorf("ValidRoomID(%q) = %v, want %v", tc.id, got, tc.valid)
		}
	}
}
