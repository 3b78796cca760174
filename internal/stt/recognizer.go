package stt

import (
	"context"
	"errors"
)

// ErrTranscriptionFailed marks a recognizer failure for a single segment.
// The segment's result is dropped and the stream continues; it never
// aborts the connection.
var ErrTranscriptionFailed = errors.New("transcription failed")

// Fragment is one piece of recognizer output text, in arrival order.
type Fragment struct {
	Text string
}

// Recognizer abstracts the transcription capability. Input is a complete
// single-channel 16-bit PCM RIFF/WAVE container; implementations must be
// safe for concurrent use across connections.
type Recognizer interface {
	Recognize(ctx context.Context, wavAudio []byte) ([]Fragment, error)
}
