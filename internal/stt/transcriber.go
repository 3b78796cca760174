package stt

import (
	"context"
	"fmt"
	"strings"

	"github.com/overtone-labs/voxd/internal/segment"
	"github.com/overtone-labs/voxd/internal/wave"
)

// Transcriber converts one closed speech segment into one finalized text
// result: WAV-encode, recognize, concatenate fragments.
type Transcriber struct {
	rec        Recognizer
	sampleRate int
}

// NewTranscriber wires a recognizer at the pipeline's sample rate.
func NewTranscriber(rec Recognizer, sampleRate int) (*Transcriber, error) {
	if rec == nil {
		return nil, fmt.Errorf("recognizer must not be nil")
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	return &Transcriber{rec: rec, sampleRate: sampleRate}, nil
}

// Transcribe returns the finalized text for seg, or "" when the segment
// produced nothing worth emitting. The recognizer is never invoked on an
// empty segment. Recognizer errors come back wrapped in
// ErrTranscriptionFailed, except cancellation which propagates as-is.
func (t *Transcriber) Transcribe(ctx context.Context, seg *segment.Segment) (string, error) {
	if seg == nil || len(seg.Samples) == 0 {
		return "", nil
	}

	container := wave.Encode(seg.Samples, t.sampleRate)
	fragments, err := t.rec.Recognize(ctx, container)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("segment %d: %w: %v", seg.Seq, ErrTranscriptionFailed, err)
	}

	var parts []string
	for _, f := range fragments {
		if text := strings.TrimSpace(f.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), nil
}
