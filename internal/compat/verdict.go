package compat

import (
	"fmt"

	types "github.com/yungbote/aquasync-backend/internal/domain"
)

// Verdict is the in-memory result of evaluating one species pair. The matrix
// pipeline normalizes it and converts it to the persisted row; nothing here
// touches storage.
type Verdict struct {
	SpeciesA   string   `json:"species_a"`
	SpeciesB   string   `json:"species_b"`
	Compatible bool     `json:"compatible"`
	Level      string   `json:"level"`
	Reasons    []string `json:"reasons"`
	Conditions []string `json:"conditions,omitempty"`
	Score      float64  `json:"score"`
}

const (
	// fallbackReason keeps the non-empty-reasons invariant when a scorer
	// returns nothing to say.
	fallbackReason = "no evaluation details provided"

	// fallbackCondition keeps the conditional-implies-conditions invariant
	// when a scorer reports the tier without naming its terms.
	fallbackCondition = "requires individual monitoring before permanent pairing"
)

// CanonicalPair returns the two names in byte-wise sorted order, the order
// verdict rows are stored in.
func CanonicalPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}

// Normalize enforces the verdict invariants: canonical name order, a
// recognized level, flag/level coherence, non-empty reasons, conditions only
// on the conditional tier, and a score inside [0, 100]. Scorers are pluggable,
// so the pipeline never trusts them to hold these on their own.
func Normalize(v Verdict) Verdict {
	v.SpeciesA, v.SpeciesB = CanonicalPair(v.SpeciesA, v.SpeciesB)

	switch v.Level {
	case types.LevelCompatible, types.LevelConditional, types.LevelIncompatible:
	default:
		v.Level = types.LevelIncompatible
		v.Reasons = append(v.Reasons, "unrecognized compatibility level")
	}
	v.Compatible = v.Level == types.LevelCompatible

	if len(v.Reasons) == 0 {
		v.Reasons = []string{fallbackReason}
	}
	if v.Level == types.LevelConditional {
		if len(v.Conditions) == 0 {
			v.Conditions = []string{fallbackCondition}
		}
	} else {
		v.Conditions = nil
	}

	if v.Score < 0 {
		v.Score = 0
	}
	if v.Score > 100 {
		v.Score = 100
	}
	return v
}

// EvaluationErrorVerdict is the synthetic stand-in recorded when a scorer
// fails on a pair. The run keeps going; the pair lands in the incompatible
// tier with the failure spelled out.
func EvaluationErrorVerdict(nameA, nameB string, err error) Verdict {
	a, b := CanonicalPair(nameA, nameB)
	return Verdict{
		SpeciesA:   a,
		SpeciesB:   b,
		Compatible: false,
		Level:      types.LevelIncompatible,
		Reasons:    []string{fmt.Sprintf("compatibility evaluation failed: %v", err)},
		Score:      0,
	}
}
