package compat

import (
	"sort"

	types "github.com/yungbote/aquasync-backend/internal/domain"
)

// Tankmates rolls verdicts up per species: every input name maps to the
// sorted names of partners it is fully compatible with. Conditional pairs do
// not count as tankmates. Names absent from the input are ignored even if a
// verdict mentions them.
func Tankmates(names []string, verdicts []Verdict) map[string][]string {
	out := make(map[string][]string, len(names))
	for _, name := range names {
		out[name] = []string{}
	}
	for _, v := range verdicts {
		if v.Level != types.LevelCompatible {
			continue
		}
		if _, ok := out[v.SpeciesA]; ok {
			out[v.SpeciesA] = append(out[v.SpeciesA], v.SpeciesB)
		}
		if _, ok := out[v.SpeciesB]; ok {
			out[v.SpeciesB] = append(out[v.SpeciesB], v.SpeciesA)
		}
	}
	for name := range out {
		sort.Strings(out[name])
	}
	return out
}

// Extremes picks the species with the most and the fewest tankmates. Ties
// break toward the byte-wise smaller name so reports are stable run to run.
// Both are empty when the rollup is empty.
func Extremes(tankmates map[string][]string) (most, least string) {
	names := make([]string, 0, len(tankmates))
	for name := range tankmates {
		names = append(names, name)
	}
	if len(names) == 0 {
		return "", ""
	}
	sort.Strings(names)

	most, least = names[0], names[0]
	for _, name := range names[1:] {
		if len(tankmates[name]) > len(tankmates[most]) {
			most = name
		}
		if len(tankmates[name]) < len(tankmates[least]) {
			least = name
		}
	}
	return most, least
}
