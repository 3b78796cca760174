package vad

import "testing"

func TestValidateWindowSize(t *testing.T) {
	cases := []struct {
		sampleRate int
		windowSize int
		ok         bool
	}{
		{16000, 512, true},
		{16000, 1024, true},
		{16000, 1536, true},
		{8000, 256, true},
		{8000, 512, true},
		{8000, 768, true},
		{16000, 500, false},
		{16000, 256, false},
		{8000, 1024, false},
		{44100, 512, false},
	}
	for _, tc := range cases {
		err := ValidateWindowSize(tc.sampleRate, tc.windowSize)
		if tc.ok && err != nil {
			t.Fatalf("%d Hz / %d: unexpected error %v", tc.sampleRate, tc.windowSize, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%d Hz / %d: expected error", tc.sampleRate, tc.windowSize)
		}
	}
}

func TestEnergyScorerSilence(t *testing.T) {
	scorer, err := NewEnergyScorer(16000, 512)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	score, err := scorer.Score(make([]float32, 512))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 0 {
		t.Fatalf("expected score 0 for silence, got %f", score)
	}
}

func TestEnergyScorerLoudSignal(t *testing.T) {
	scorer, err := NewEnergyScorer(16000, 512)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	window := make([]float32, 512)
	for i := range window {
		window[i] = 0.8
	}
	score, err := scorer.Score(window)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 1 {
		t.Fatalf("expected score clamped to 1, got %f", score)
	}
}

func TestEnergyScorerQuietSignalScoresLow(t *testing.T) {
	scorer, err := NewEnergyScorer(16000, 512)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	window := make([]float32, 512)
	for i := range window {
		window[i] = 0.03
	}
	score, err := scorer.Score(window)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score <= 0 || score >= 0.5 {
		t.Fatalf("expected low nonzero score, got %f", score)
	}
}

func TestEnergyScorerWrongWindowLength(t *testing.T) {
	scorer, err := NewEnergyScorer(16000, 512)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := scorer.Score(make([]float32, 100)); err == nil {
		t.Fatalf("expected error for wrong window length")
	}
}

func TestNewEnergyScorerRejectsBadGeometry(t *testing.T) {
	if _, err := NewEnergyScorer(16000, 500); err == nil {
		t.Fatalf("expected error for unsupported window size")
	}
}
