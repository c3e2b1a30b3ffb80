package services

import (
	"testing"
)

func TestColorForKeyDeterministic(t *testing.T) {
	a := colorForKey("ada@example.com")
	b := colorForKey("ada@example.com")
	if a != b {
		t.Fatalf("same key produced different colors: %v vs %v", a, b)
	}
	// Keys are normalized before hashing.
	c := colorForKey("  ADA@Example.COM ")
	if a != c {
		t.Fatalf("normalized key produced different color: %v vs %v", a, c)
	}
}

func TestColorForKeyStaysInPalette(t *testing.T) {
	keys := []string{"", "x", "Neon Tetra", "tiger barb", "somebody@example.com"}
	for _, key := range keys {
		got := colorForKey(key)
		found := false
		for _, p := range renderPalette {
			if got == p {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("color for %q not in palette: %v", key, got)
		}
	}
}

func TestParseHexColorRoundtrip(t *testing.T) {
	for _, c := range renderPalette {
		parsed, ok := parseHexColor(nrgbaToHex(c))
		if !ok {
			t.Fatalf("failed to parse %s", nrgbaToHex(c))
		}
		if parsed != c {
			t.Fatalf("roundtrip mismatch: want=%v got=%v", c, parsed)
		}
	}
}

func TestParseHexColorRejectsJunk(t *testing.T) {
	for _, s := range []string{"", "#", "zzz", "#12", "#12345", "#GGHHII", "1F77B44"} {
		if _, ok := parseHexColor(s); ok {
			t.Fatalf("expected %q to be rejected", s)
		}
	}
}

func TestComputeInitials(t *testing.T) {
	cases := []struct {
		first, last, want string
	}{
		{"ada", "lovelace", "AL"},
		{"Grace", "", "G?"},
		{"", "", "??"},
	}
	for _, tc := range cases {
		if got := computeInitials(tc.first, tc.last); got != tc.want {
			t.Fatalf("computeInitials(%q, %q): want=%q got=%q", tc.first, tc.last, tc.want, got)
		}
	}
}

func TestCardInitials(t *testing.T) {
	cases := []struct {
		name, want string
	}{
		{"Betta", "B"},
		{"Tiger Barb", "TB"},
		{"Black Neon Tetra", "BT"},
		{"  ", "?"},
	}
	for _, tc := range cases {
		if got := cardInitials(tc.name); got != tc.want {
			t.Fatalf("cardInitials(%q): want=%q got=%q", tc.name, tc.want, got)
		}
	}
}
