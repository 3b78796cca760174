package stt

import (
	"context"
	"errors"
	"testing"

	"github.com/overtone-labs/voxd/internal/segment"
)

type fakeRecognizer struct {
	fragments []Fragment
	err       error
	calls     int
	lastWAV   []byte
}

func (f *fakeRecognizer) Recognize(_ context.Context, wavAudio []byte) ([]Fragment, error) {
	f.calls++
	f.lastWAV = wavAudio
	return f.fragments, f.err
}

func testSegment(nsamples int) *segment.Segment {
	return &segment.Segment{
		Samples:    make([]float32, nsamples),
		Seq:        7,
		SampleRate: 16000,
	}
}

func TestNewTranscriberValidation(t *testing.T) {
	if _, err := NewTranscriber(nil, 16000); err == nil {
		t.Fatalf("expected error for nil recognizer")
	}
	if _, err := NewTranscriber(&fakeRecognizer{}, 0); err == nil {
		t.Fatalf("expected error for zero sample rate")
	}
}

func TestTranscribeJoinsFragments(t *testing.T) {
	rec := &fakeRecognizer{fragments: []Fragment{{Text: " hello "}, {Text: "world"}}}
	tr, err := NewTranscriber(rec, 16000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text, err := tr.Transcribe(context.Background(), testSegment(1600))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "hello world" {
		t.Fatalf("expected joined fragments, got %q", text)
	}
	if len(rec.lastWAV) != 44+1600*2 {
		t.Fatalf("expected WAV container of %d bytes, got %d", 44+1600*2, len(rec.lastWAV))
	}
}

func TestTranscribeEmptySegmentSkipsRecognizer(t *testing.T) {
	rec := &fakeRecognizer{fragments: []Fragment{{Text: "never"}}}
	tr, err := NewTranscriber(rec, 16000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text, err := tr.Transcribe(context.Background(), testSegment(0))
	if err != nil || text != "" {
		t.Fatalf("expected empty result, got %q, %v", text, err)
	}
	if rec.calls != 0 {
		t.Fatalf("recognizer should not run on an empty segment")
	}
}

func TestTranscribeSuppressesBlankFragments(t *testing.T) {
	rec := &fakeRecognizer{fragments: []Fragment{{Text: "  "}, {Text: ""}}}
	tr, err := NewTranscriber(rec, 16000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text, err := tr.Transcribe(context.Background(), testSegment(1600))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "" {
		t.Fatalf("expected blank output suppressed, got %q", text)
	}
}

func TestTranscribeWrapsRecognizerError(t *testing.T) {
	rec := &fakeRecognizer{err: errors.New("model exploded")}
	tr, err := NewTranscriber(rec, 16000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = tr.Transcribe(context.Background(), testSegment(1600))
	if !errors.Is(err, ErrTranscriptionFailed) {
		t.Fatalf("expected ErrTranscriptionFailed, got %v", err)
	}
}

func TestTranscribePropagatesCancellation(t *testing.T) {
	rec := &fakeRecognizer{err: errors.New("interrupted")}
	tr, err := NewTranscriber(rec, 16000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = tr.Transcribe(ctx, testSegment(1600))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestMockRecognizer(t *testing.T) {
	rec := NewMockRecognizer()
	fragments, err := rec.Recognize(context.Background(), make([]byte, 100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fragments) != 1 || fragments[0].Text == "" {
		t.Fatalf("expected one placeholder fragment, got %+v", fragments)
	}
}
