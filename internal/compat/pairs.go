package compat

import (
	types "github.com/yungbote/aquasync-backend/internal/domain"
)

// Pair references two distinct species from the loaded working set.
type Pair struct {
	A *types.Species
	B *types.Species
}

// Pairs enumerates every unordered pair of distinct species, n*(n-1)/2 for n
// inputs. It never yields a species against itself and never yields the same
// pair twice; with the input sorted by name each pair comes out in canonical
// order.
func Pairs(list []types.Species) []Pair {
	n := len(list)
	if n < 2 {
		return nil
	}
	out := make([]Pair, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			out = append(out, Pair{A: &list[i], B: &list[j]})
		}
	}
	return out
}
