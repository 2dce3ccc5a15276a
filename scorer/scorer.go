package scorer

import (
	"regexp"
	"strings"

	"github.com/hupe1980/topicflow/core"
)

// Keyword scores by case-insensitive substring matching: the confidence is
// the fraction of keywords found in the message. A message containing every
// keyword scores 1.
func Keyword(keywords ...string) core.ScoreFunc {
	lowered := make([]string, len(keywords))
	for i, k := range keywords {
		lowered[i] = strings.ToLower(k)
	}
	return func(message string) float64 {
		if len(lowered) == 0 {
			return 0
		}
		msg := strings.ToLower(message)
		var hits int
		for _, k := range lowered {
			if strings.Contains(msg, k) {
				hits++
			}
		}
		return float64(hits) / float64(len(lowered))
	}
}

// Regexp scores a fixed confidence when the message matches the pattern,
// zero otherwise.
func Regexp(pattern *regexp.Regexp, confidence float64) core.ScoreFunc {
	return func(message string) float64 {
		if pattern.MatchString(message) {
			return clamp(confidence)
		}
		return 0
	}
}

// Constant always scores the same confidence. Useful for catch-all topics
// registered last.
func Constant(confidence float64) core.ScoreFunc {
	c := clamp(confidence)
	return func(string) float64 { return c }
}

// Highest combines scorers by taking the maximum confidence.
func Highest(scorers ...core.ScoreFunc) core.ScoreFunc {
	return func(message string) float64 {
		var best float64
		for _, s := range scorers {
			if score := s(message); score > best {
				best = score
			}
		}
		return clamp(best)
	}
}

// Scaled multiplies another scorer's confidence by factor, letting hosts
// de-prioritize a topic without rewriting its scorer.
func Scaled(s core.ScoreFunc, factor float64) core.ScoreFunc {
	return func(message string) float64 {
		return clamp(s(message) * factor)
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
