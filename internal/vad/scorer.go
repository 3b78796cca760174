// Package vad defines the capability contract for voice-activity scoring
// and a reference energy-based implementation.
//
// A Scorer classifies one fixed-size window of normalized samples at a
// time and returns a speech probability. Scorers are stateless per call
// from the pipeline's perspective; any internal model state is the
// implementation's concern.
package vad

import "fmt"

// Scorer rates a single window of normalized float samples.
type Scorer interface {
	// Score returns the speech probability for the window in [0, 1].
	// The window length must match the size the scorer was built for.
	Score(window []float32) (float64, error)
}

// supportedWindowSizes lists the window lengths the classifier family is
// trained for, per sample rate. Anything else is a configuration error.
var supportedWindowSizes = map[int][]int{
	8000:  {256, 512, 768},
	16000: {512, 1024, 1536},
}

// ValidateWindowSize reports whether windowSize is a size the classifier
// supports at sampleRate. Violations are construction-time errors, never
// stream-time errors.
func ValidateWindowSize(sampleRate, windowSize int) error {
	sizes, ok := supportedWindowSizes[sampleRate]
	if !ok {
		return fmt.Errorf("unsupported sample rate %d Hz", sampleRate)
	}
	for _, s := range sizes {
		if windowSize == s {
			return nil
		}
	}
	return fmt.Errorf("window size %d is not supported at %d Hz (supported: %v)", windowSize, sampleRate, sizes)
}
