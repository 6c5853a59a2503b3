package redis

import "testing"

func TestKeysFor(t *testing.T) {
	tests := []struct {
		in   string
		want Keys
	}{
		{in: "", want: Keys{Document: "linkshelf:document", Revision: "linkshelf:document:rev"}},
		{in: "  team:links ", want: Keys{Document: "team:links", Revision: "team:links:rev"}},
	}

	for _, tt := range tests {
		if got := KeysFor(tt.in); got != tt.want {
			t.Errorf("KeysFor(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
