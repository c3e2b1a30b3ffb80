package compat

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	types "github.com/yungbote/aquasync-backend/internal/domain"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// RulesPathEnv overrides the embedded ruleset with an on-disk YAML file.
const RulesPathEnv = "COMPAT_RULES_PATH"

type ScoreRules struct {
	Start       float64 `yaml:"start"`
	Min         float64 `yaml:"min"`
	Max         float64 `yaml:"max"`
	HardPenalty float64 `yaml:"hard_penalty"`
}

type TemperatureRules struct {
	MinOverlapC        float64 `yaml:"min_overlap_c"`
	ConditionalPenalty float64 `yaml:"conditional_penalty"`
}

type PHRules struct {
	MinOverlap         float64 `yaml:"min_overlap"`
	ConditionalPenalty float64 `yaml:"conditional_penalty"`
}

type TemperamentRules struct {
	AggressivePairPenalty               float64 `yaml:"aggressive_pair_penalty"`
	SemiAggressiveWithAggressivePenalty float64 `yaml:"semi_aggressive_with_aggressive_penalty"`
	SemiAggressivePairPenalty           float64 `yaml:"semi_aggressive_pair_penalty"`
}

type SizeRatioRules struct {
	PredationRatio float64 `yaml:"predation_ratio"`
	CautionRatio   float64 `yaml:"caution_ratio"`
	CautionPenalty float64 `yaml:"caution_penalty"`
}

type SchoolingRules struct {
	NoteMinCount int     `yaml:"note_min_count"`
	Penalty      float64 `yaml:"penalty"`
}

// Ruleset is the tunable half of the rule scorer. The compiled-in default
// ships in rules.yaml; deployments point COMPAT_RULES_PATH at their own file
// to retune thresholds without a rebuild.
type Ruleset struct {
	Version     int              `yaml:"version"`
	Score       ScoreRules       `yaml:"score"`
	Temperature TemperatureRules `yaml:"temperature"`
	PH          PHRules          `yaml:"ph"`
	Temperament TemperamentRules `yaml:"temperament"`
	SizeRatio   SizeRatioRules   `yaml:"size_ratio"`
	Schooling   SchoolingRules   `yaml:"schooling"`
}

// LoadRuleset reads COMPAT_RULES_PATH when set, otherwise the embedded
// default, and validates the result.
func LoadRuleset() (Ruleset, error) {
	raw := defaultRulesYAML
	if path := os.Getenv(RulesPathEnv); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Ruleset{}, fmt.Errorf("read ruleset %s: %w", path, err)
		}
		raw = b
	}
	var rs Ruleset
	if err := yaml.Unmarshal(raw, &rs); err != nil {
		return Ruleset{}, fmt.Errorf("parse ruleset: %w", err)
	}
	if err := rs.Validate(); err != nil {
		return Ruleset{}, err
	}
	return rs, nil
}

func (r Ruleset) Validate() error {
	if r.Version < 1 {
		return fmt.Errorf("ruleset: version must be >= 1, got %d", r.Version)
	}
	if r.Score.Max < r.Score.Min {
		return fmt.Errorf("ruleset: score.max %.1f below score.min %.1f", r.Score.Max, r.Score.Min)
	}
	if r.Score.Start < r.Score.Min || r.Score.Start > r.Score.Max {
		return fmt.Errorf("ruleset: score.start %.1f outside [%.1f, %.1f]", r.Score.Start, r.Score.Min, r.Score.Max)
	}
	if r.SizeRatio.CautionRatio < 1 || r.SizeRatio.PredationRatio < 1 {
		return fmt.Errorf("ruleset: size ratios must be >= 1")
	}
	if r.SizeRatio.CautionRatio > r.SizeRatio.PredationRatio {
		return fmt.Errorf("ruleset: size_ratio.caution_ratio %.1f above predation_ratio %.1f",
			r.SizeRatio.CautionRatio, r.SizeRatio.PredationRatio)
	}
	return nil
}

// RuleScorer judges pairs against the husbandry ruleset. Hard rules force the
// incompatible tier; soft rules subtract score and may attach a keeping
// condition, which moves the pair to the conditional tier.
type RuleScorer struct {
	rules Ruleset
}

func NewRuleScorer(rules Ruleset) *RuleScorer {
	return &RuleScorer{rules: rules}
}

// DefaultRuleScorer builds a scorer from LoadRuleset.
func DefaultRuleScorer() (*RuleScorer, error) {
	rs, err := LoadRuleset()
	if err != nil {
		return nil, err
	}
	return NewRuleScorer(rs), nil
}

// outcome accumulates rule results for one pair.
type outcome struct {
	hard       bool
	penalty    float64
	reasons    []string
	conditions []string
}

func (o *outcome) fail(reason string) {
	o.hard = true
	o.reasons = append(o.reasons, reason)
}

func (o *outcome) flag(penalty float64, reason, condition string) {
	o.penalty += penalty
	o.reasons = append(o.reasons, reason)
	o.conditions = append(o.conditions, condition)
}

func (o *outcome) note(penalty float64, reason string) {
	o.penalty += penalty
	o.reasons = append(o.reasons, reason)
}

// Evaluate applies every rule and assembles the verdict. Inputs are taken in
// canonical name order first, so the result is identical for (a, b) and
// (b, a).
func (s *RuleScorer) Evaluate(a, b *types.Species) (Verdict, error) {
	if a == nil || b == nil {
		return Verdict{}, fmt.Errorf("rule scorer: nil species")
	}
	lo, hi := a, b
	if lo.Name > hi.Name {
		lo, hi = hi, lo
	}

	var o outcome
	s.waterRule(&o, lo, hi)
	s.temperatureRule(&o, lo, hi)
	s.phRule(&o, lo, hi)
	s.temperamentRule(&o, lo, hi)
	s.sizeRule(&o, lo, hi)
	s.schoolingRule(&o, lo, hi)

	score := s.rules.Score.Start - o.penalty
	if o.hard {
		score -= s.rules.Score.HardPenalty
	}
	score = math.Max(s.rules.Score.Min, math.Min(s.rules.Score.Max, score))

	v := Verdict{
		SpeciesA: lo.Name,
		SpeciesB: hi.Name,
		Reasons:  o.reasons,
		Score:    score,
	}
	switch {
	case o.hard:
		v.Level = types.LevelIncompatible
	case len(o.conditions) > 0:
		v.Level = types.LevelConditional
		v.Conditions = o.conditions
	default:
		v.Level = types.LevelCompatible
		if len(v.Reasons) == 0 {
			v.Reasons = []string{"water, temperature, and pH requirements align"}
		}
	}
	return Normalize(v), nil
}

func (s *RuleScorer) waterRule(o *outcome, lo, hi *types.Species) {
	if lo.WaterType == hi.WaterType {
		return
	}
	o.fail(fmt.Sprintf("%s is a %s species while %s needs %s water",
		lo.Name, lo.WaterType, hi.Name, hi.WaterType))
}

func (s *RuleScorer) temperatureRule(o *outcome, lo, hi *types.Species) {
	overlap := rangeOverlap(lo.MinTempC, lo.MaxTempC, hi.MinTempC, hi.MaxTempC)
	if overlap < 0 {
		o.fail(fmt.Sprintf("temperature ranges do not overlap (%s: %.1f-%.1f°C, %s: %.1f-%.1f°C)",
			lo.Name, lo.MinTempC, lo.MaxTempC, hi.Name, hi.MinTempC, hi.MaxTempC))
		return
	}
	if overlap < s.rules.Temperature.MinOverlapC {
		low := math.Max(lo.MinTempC, hi.MinTempC)
		high := math.Min(lo.MaxTempC, hi.MaxTempC)
		o.flag(s.rules.Temperature.ConditionalPenalty,
			fmt.Sprintf("temperature ranges overlap by only %.1f°C", overlap),
			fmt.Sprintf("hold the tank between %.1f°C and %.1f°C", low, high))
	}
}

func (s *RuleScorer) phRule(o *outcome, lo, hi *types.Species) {
	overlap := rangeOverlap(lo.MinPH, lo.MaxPH, hi.MinPH, hi.MaxPH)
	if overlap < 0 {
		o.fail(fmt.Sprintf("pH ranges do not overlap (%s: %.1f-%.1f, %s: %.1f-%.1f)",
			lo.Name, lo.MinPH, lo.MaxPH, hi.Name, hi.MinPH, hi.MaxPH))
		return
	}
	if overlap < s.rules.PH.MinOverlap {
		low := math.Max(lo.MinPH, hi.MinPH)
		high := math.Min(lo.MaxPH, hi.MaxPH)
		o.flag(s.rules.PH.ConditionalPenalty,
			fmt.Sprintf("pH ranges overlap by only %.1f", overlap),
			fmt.Sprintf("buffer the water between pH %.1f and %.1f", low, high))
	}
}

func (s *RuleScorer) temperamentRule(o *outcome, lo, hi *types.Species) {
	aggressive := func(sp *types.Species) bool { return sp.Temperament == types.TemperamentAggressive }
	semi := func(sp *types.Species) bool { return sp.Temperament == types.TemperamentSemiAggressive }
	peaceful := func(sp *types.Species) bool { return sp.Temperament == types.TemperamentPeaceful }

	switch {
	case aggressive(lo) && aggressive(hi):
		o.flag(s.rules.Temperament.AggressivePairPenalty,
			"both species are aggressive",
			"provide a large tank with broken sight lines and one territory per fish")
	case aggressive(lo) && peaceful(hi):
		o.fail(fmt.Sprintf("%s is aggressive and would harass %s", lo.Name, hi.Name))
	case aggressive(hi) && peaceful(lo):
		o.fail(fmt.Sprintf("%s is aggressive and would harass %s", hi.Name, lo.Name))
	case aggressive(lo) && semi(hi), aggressive(hi) && semi(lo):
		aggr := lo
		if aggressive(hi) {
			aggr = hi
		}
		o.flag(s.rules.Temperament.SemiAggressiveWithAggressivePenalty,
			fmt.Sprintf("%s is aggressive toward most tankmates", aggr.Name),
			"introduce both at the same time and provide dense cover")
	case semi(lo) && semi(hi):
		o.note(s.rules.Temperament.SemiAggressivePairPenalty,
			"both species are semi-aggressive; expect occasional sparring")
	}
}

func (s *RuleScorer) sizeRule(o *outcome, lo, hi *types.Species) {
	small, large := lo, hi
	if small.AdultSizeCM > large.AdultSizeCM {
		small, large = large, small
	}
	if small.AdultSizeCM <= 0 {
		return
	}
	ratio := large.AdultSizeCM / small.AdultSizeCM
	switch {
	case ratio >= s.rules.SizeRatio.PredationRatio:
		o.fail(fmt.Sprintf("%s (%.0f cm) is large enough to prey on %s (%.0f cm)",
			large.Name, large.AdultSizeCM, small.Name, small.AdultSizeCM))
	case ratio >= s.rules.SizeRatio.CautionRatio:
		o.flag(s.rules.SizeRatio.CautionPenalty,
			fmt.Sprintf("%s grows much larger than %s", large.Name, small.Name),
			fmt.Sprintf("keep %s well fed and give %s dense cover", large.Name, small.Name))
	}
}

func (s *RuleScorer) schoolingRule(o *outcome, lo, hi *types.Species) {
	pairs := [2][2]*types.Species{{lo, hi}, {hi, lo}}
	for _, p := range pairs {
		sp, other := p[0], p[1]
		if sp.SchoolingMin < s.rules.Schooling.NoteMinCount {
			continue
		}
		if other.Temperament == types.TemperamentPeaceful {
			continue
		}
		o.flag(s.rules.Schooling.Penalty,
			fmt.Sprintf("%s needs the security of a school around boisterous tankmates", sp.Name),
			fmt.Sprintf("keep %s in a group of at least %d", sp.Name, sp.SchoolingMin))
	}
}

func rangeOverlap(aMin, aMax, bMin, bMax float64) float64 {
	return math.Min(aMax, bMax) - math.Max(aMin, bMin)
}
