package compat

import "time"

// Report is the matrix build summary persisted into job_run.result. It is the
// payload behind the matrix report endpoint, so field names are wire-stable.
type Report struct {
	SpeciesCount          int            `json:"species_count"`
	PairCount             int            `json:"pair_count"`
	VerdictsWritten       int            `json:"verdicts_written"`
	LevelCounts           map[string]int `json:"level_counts"`
	EvaluationErrors      int            `json:"evaluation_errors"`
	WriteErrors           int            `json:"write_errors"`
	PrunedVerdicts        int64          `json:"pruned_verdicts"`
	PrunedRecommendations int64          `json:"pruned_recommendations"`
	MostCompatible        string         `json:"most_compatible,omitempty"`
	MostCompatibleCount   int            `json:"most_compatible_count"`
	LeastCompatible       string         `json:"least_compatible,omitempty"`
	LeastCompatibleCount  int            `json:"least_compatible_count"`
	StartedAt             time.Time      `json:"started_at"`
	FinishedAt            time.Time      `json:"finished_at"`
	DurationMS            int64          `json:"duration_ms"`
}
