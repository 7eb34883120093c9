// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scoreutil provides the clamping and weighting helpers every scorer
// uses so that all scores stay in [0, 1].
package scoreutil

import "math"

// Clamp01 clamps v into [0, 1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Term is one weighted input to a combined score. Absent terms are
// skipped entirely, so their weight does not dilute the others.
type Term struct {
	Value   float64
	Weight  float64
	Present bool
}

// WeightedMean combines the present terms into a clamped weighted mean.
// It returns 0 when no present term carries positive weight.
func WeightedMean(terms ...Term) float64 {
	var sum, weights float64
	for _, t := range terms {
		if !t.Present || t.Weight <= 0 {
			continue
		}
		sum += Clamp01(t.Value) * t.Weight
		weights += t.Weight
	}
	if weights == 0 {
		return 0
	}
	return Clamp01(sum / weights)
}
