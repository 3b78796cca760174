package vad

import (
	"fmt"
	"math"
)

// referenceRMS is the root-mean-square level treated as certain speech.
// Normalized speech at conversational volume sits around 0.1–0.3 RMS;
// windows at or above this level score 1.0.
const referenceRMS = 0.3

// EnergyScorer is an RMS-energy speech detector. It is a stand-in for a
// trained classification model with the same window contract, useful for
// deployments without a model file and for tests.
type EnergyScorer struct {
	windowSize int
}

// NewEnergyScorer builds an energy scorer for the given window geometry.
func NewEnergyScorer(sampleRate, windowSize int) (*EnergyScorer, error) {
	if err := ValidateWindowSize(sampleRate, windowSize); err != nil {
		return nil, err
	}
	return &EnergyScorer{windowSize: windowSize}, nil
}

// Score maps the window's RMS energy onto [0, 1] against referenceRMS.
func (e *EnergyScorer) Score(window []float32) (float64, error) {
	if len(window) != e.windowSize {
		return 0, fmt.Errorf("expected %d samples, got %d", e.windowSize, len(window))
	}
	var sum float64
	for _, s := range window {
		v := float64(s)
		sum += v * v
	}
	rms := math.Sqrt(sum / float64(len(window)))
	score := rms / referenceRMS
	if score > 1 {
		score = 1
	}
	return score, nil
}
