// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package predict holds the learned predictors: referee response
// (will the referee accept the invitation) and manuscript outcome (will the
// manuscript be accepted). Both degrade to a neutral 0.5 when untrained.
package predict

import (
	"math"
)

// Features is one feature vector in the kind's schema order.
type Features []float64

// Predictor returns a probability in [0, 1] for a feature vector.
type Predictor interface {
	Predict(x Features) float64

	// Active reports whether predictions come from a trained model.
	Active() bool
}

// Neutral is the untrained predictor. It always predicts exactly 0.5.
type Neutral struct{}

// Predict returns 0.5.
func (Neutral) Predict(Features) float64 { return 0.5 }

// Active returns false.
func (Neutral) Active() bool { return false }

// Logistic is a fitted logistic regression over standardized features.
type Logistic struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
	Mean    []float64 `json:"mean"`
	Scale   []float64 `json:"scale"`
}

// Predict returns the modelled probability of the positive class. A vector
// of the wrong length yields 0.5.
func (l *Logistic) Predict(x Features) float64 {
	if len(x) != len(l.Weights) {
		return 0.5
	}
	return sigmoid(l.logit(x))
}

// Active returns true.
func (l *Logistic) Active() bool { return true }

func (l *Logistic) logit(x Features) float64 {
	z := l.Bias
	for i, w := range l.Weights {
		z += w * (x[i] - l.Mean[i]) / l.Scale[i]
	}
	return z
}

func (l *Logistic) valid(dims int) bool {
	if len(l.Weights) != dims || len(l.Mean) != dims || len(l.Scale) != dims {
		return false
	}
	if !finite(l.Bias) {
		return false
	}
	for i := 0; i < dims; i++ {
		if !finite(l.Weights[i]) || !finite(l.Mean[i]) || !finite(l.Scale[i]) || l.Scale[i] <= 0 {
			return false
		}
	}
	return true
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
