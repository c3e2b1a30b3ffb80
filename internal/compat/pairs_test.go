package compat

import (
	"fmt"
	"testing"

	types "github.com/yungbote/aquasync-backend/internal/domain"
)

func speciesList(n int) []types.Species {
	out := make([]types.Species, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, types.Species{Name: fmt.Sprintf("species-%02d", i)})
	}
	return out
}

func TestPairsCounts(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{5, 10},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d", tt.n), func(t *testing.T) {
			got := Pairs(speciesList(tt.n))
			if len(got) != tt.want {
				t.Fatalf("Pairs(%d species) = %d pairs, want %d", tt.n, len(got), tt.want)
			}
		})
	}
}

func TestPairsNoSelfNoDuplicates(t *testing.T) {
	list := speciesList(6)
	pairs := Pairs(list)
	seen := map[string]bool{}
	for _, p := range pairs {
		if p.A.Name == p.B.Name {
			t.Fatalf("self pair %q", p.A.Name)
		}
		lo, hi := CanonicalPair(p.A.Name, p.B.Name)
		key := lo + "|" + hi
		if seen[key] {
			t.Fatalf("duplicate pair %s", key)
		}
		seen[key] = true
	}
	if len(seen) != 15 {
		t.Fatalf("got %d distinct pairs, want 15", len(seen))
	}
}

func TestPairsCanonicalOrderForSortedInput(t *testing.T) {
	pairs := Pairs(speciesList(4))
	for _, p := range pairs {
		if p.A.Name > p.B.Name {
			t.Fatalf("pair (%q, %q) not in canonical order", p.A.Name, p.B.Name)
		}
	}
}

func TestCanonicalPair(t *testing.T) {
	a, b := CanonicalPair("Tiger Barb", "Betta")
	if a != "Betta" || b != "Tiger Barb" {
		t.Fatalf("CanonicalPair = (%q, %q), want (Betta, Tiger Barb)", a, b)
	}
	a, b = CanonicalPair("Betta", "Tiger Barb")
	if a != "Betta" || b != "Tiger Barb" {
		t.Fatalf("CanonicalPair already ordered = (%q, %q)", a, b)
	}
}
