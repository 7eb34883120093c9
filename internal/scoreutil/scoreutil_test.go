// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scoreutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp01(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-0.2, 0},
		{0.3, 0.3},
		{1.7, 1},
		{math.NaN(), 0},
		{math.Inf(1), 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Clamp01(tt.in))
	}
}

func TestWeightedMean(t *testing.T) {
	topic := Term{Value: 0.5, Weight: 0.4, Present: true}
	semantic := Term{Value: 1, Weight: 0.6, Present: true}

	assert.InDelta(t, 0.8, WeightedMean(topic, semantic), 1e-9)

	absent := Term{Value: 0, Weight: 0.25, Present: false}
	assert.InDelta(t, 0.8, WeightedMean(topic, semantic, absent), 1e-9, "absent term leaves the denominator")

	response := Term{Value: 0, Weight: 0.25, Present: true}
	assert.InDelta(t, 0.8/1.25, WeightedMean(topic, semantic, response), 1e-9)

	assert.Equal(t, 0.0, WeightedMean())
	assert.Equal(t, 0.0, WeightedMean(Term{Value: 1, Weight: 0, Present: true}))
	assert.Equal(t, 1.0, WeightedMean(Term{Value: 3, Weight: 1, Present: true}), "inputs are clamped")
}
