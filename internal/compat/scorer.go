package compat

import (
	types "github.com/yungbote/aquasync-backend/internal/domain"
)

// Scorer judges one pair of species. Implementations must be symmetric:
// Evaluate(a, b) and Evaluate(b, a) describe the same relationship. An error
// return means the pair could not be judged at all; the pipeline records a
// synthetic verdict and moves on.
type Scorer interface {
	Evaluate(a, b *types.Species) (Verdict, error)
}

// ScorerFunc adapts a plain function to the Scorer interface.
type ScorerFunc func(a, b *types.Species) (Verdict, error)

func (f ScorerFunc) Evaluate(a, b *types.Species) (Verdict, error) {
	return f(a, b)
}
