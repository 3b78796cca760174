// This file contains the whisper.cpp-backed recognizer using the CGO
// bindings. The whisper.cpp static library (libwhisper.a) and headers
// must be available at link time via LIBRARY_PATH and C_INCLUDE_PATH.

package stt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/overtone-labs/voxd/internal/config"
)

// WhisperRecognizer runs whisper.cpp inference in-process. The model is
// loaded once and shared; each Recognize call creates its own whisper
// context, so concurrent calls from different connections are safe.
type WhisperRecognizer struct {
	model    whisperlib.Model
	language string
}

// NewWhisperRecognizer loads the model at cfg.ModelPath. The caller must
// Close the recognizer when done with it.
func NewWhisperRecognizer(cfg config.STTConfig) (*WhisperRecognizer, error) {
	if cfg.ModelPath == "" {
		return nil, errors.New("whisper model path must not be empty")
	}
	model, err := whisperlib.New(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("load whisper model %q: %w", cfg.ModelPath, err)
	}
	return &WhisperRecognizer{model: model, language: cfg.Language}, nil
}

// Close releases the whisper model.
func (w *WhisperRecognizer) Close() error {
	if w.model != nil {
		return w.model.Close()
	}
	return nil
}

func (w *WhisperRecognizer) Recognize(ctx context.Context, wavAudio []byte) ([]Fragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	samples, err := decodeContainer(wavAudio)
	if err != nil {
		return nil, err
	}

	// Whisper contexts are not thread-safe; the shared model is.
	wctx, err := w.model.NewContext()
	if err != nil {
		return nil, fmt.Errorf("create whisper context: %w", err)
	}
	if w.language != "" {
		if err := wctx.SetLanguage(w.language); err != nil {
			return nil, fmt.Errorf("set language %q: %w", w.language, err)
		}
	}

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return nil, fmt.Errorf("process audio: %w", err)
	}

	var fragments []Fragment
	for {
		seg, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read segment: %w", err)
		}
		if text := strings.TrimSpace(seg.Text); text != "" {
			fragments = append(fragments, Fragment{Text: text})
		}
	}
	return fragments, nil
}

// decodeContainer extracts normalized float32 samples from a mono PCM16
// WAV container.
func decodeContainer(wavAudio []byte) ([]float32, error) {
	dec := wav.NewDecoder(bytes.NewReader(wavAudio))
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav container: %w", err)
	}
	return floatSamples(buf), nil
}

func floatSamples(buf *audio.IntBuffer) []float32 {
	samples := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float32(v) / 32768.0
	}
	return samples
}
