package grounding

import "fmt"

// ScoreStrategy combines the model's self-reported confidence with the
// independently derived violation set into a single compliance score in
// [0,100]. The exact arithmetic is deliberately pluggable; the strategy in
// use is part of the service configuration.
type ScoreStrategy interface {
	Name() string
	Score(selfReported int, violations []ViolationCode) int
}

// NewScoreStrategy builds a strategy by configured name.
func NewScoreStrategy(name string, violationPenalty int) (ScoreStrategy, error) {
	switch name {
	case "subtractive":
		return SubtractiveStrategy{Penalty: violationPenalty}, nil
	case "zero-on-violation":
		return ZeroOnViolationStrategy{}, nil
	}
	return nil, fmt.Errorf("unknown score strategy %q", name)
}

// SubtractiveStrategy deducts a fixed penalty per violation from the
// self-reported confidence.
type SubtractiveStrategy struct {
	Penalty int
}

func (SubtractiveStrategy) Name() string { return "subtractive" }

func (s SubtractiveStrategy) Score(selfReported int, violations []ViolationCode) int {
	return clampScore(selfReported - s.Penalty*len(violations))
}

// ZeroOnViolationStrategy scores zero if any violation exists, otherwise the
// self-reported confidence.
type ZeroOnViolationStrategy struct{}

func (ZeroOnViolationStrategy) Name() string { return "zero-on-violation" }

func (ZeroOnViolationStrategy) Score(selfReported int, violations []ViolationCode) int {
	if len(violations) > 0 {
		return 0
	}
	return clampScore(selfReported)
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
