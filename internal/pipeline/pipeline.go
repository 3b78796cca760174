// Package pipeline wires decoding, windowing, segmentation, and
// transcription into one per-connection streaming pipeline:
// bytes → samples → windows → segments → text.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/overtone-labs/voxd/internal/config"
	"github.com/overtone-labs/voxd/internal/pcm"
	"github.com/overtone-labs/voxd/internal/segment"
	"github.com/overtone-labs/voxd/internal/stt"
	"github.com/overtone-labs/voxd/internal/vad"
)

// Result is one finalized utterance, in emission order.
type Result struct {
	Seq      uint64
	Text     string
	Duration time.Duration
	Flushed  bool
}

// Option configures optional pipeline behavior.
type Option func(*Pipeline)

// WithMetrics attaches shared pipeline metrics.
func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithShouldClose installs a caller-supplied stop-on-silence predicate,
// replacing the min-silence debounce decision.
func WithShouldClose(fn func(silence time.Duration) bool) Option {
	return func(p *Pipeline) { p.shouldClose = fn }
}

// Pipeline owns the mutable per-connection state (accumulator and
// segmenter). It must not be shared across connections; independent
// pipelines may run concurrently.
type Pipeline struct {
	cfg         config.PipelineConfig
	scorer      vad.Scorer
	transcriber *stt.Transcriber
	acc         *pcm.Accumulator
	seg         *segment.Segmenter
	logger      *slog.Logger
	metrics     *Metrics
	shouldClose func(time.Duration) bool
}

// New validates cfg and builds a pipeline around the given capabilities.
// Misconfiguration fails here, never at stream time.
func New(cfg config.PipelineConfig, scorer vad.Scorer, rec stt.Recognizer, logger *slog.Logger, opts ...Option) (*Pipeline, error) {
	if scorer == nil {
		return nil, errors.New("scorer must not be nil")
	}
	if err := vad.ValidateWindowSize(cfg.SampleRate, cfg.WindowSize); err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:    cfg,
		scorer: scorer,
		logger: logger.With(slog.String("component", "pipeline")),
	}
	for _, opt := range opts {
		opt(p)
	}

	acc, err := pcm.NewAccumulator(cfg.WindowSize)
	if err != nil {
		return nil, err
	}
	seg, err := segment.New(segment.Config{
		SampleRate:      cfg.SampleRate,
		WindowSize:      cfg.WindowSize,
		SpeechThreshold: cfg.SpeechThreshold,
		MinSpeech:       time.Duration(cfg.MinSpeechMS) * time.Millisecond,
		MinSilence:      time.Duration(cfg.MinSilenceMS) * time.Millisecond,
		MaxSpeech:       time.Duration(cfg.MaxSpeechMS) * time.Millisecond,
		ShouldClose:     p.shouldClose,
	})
	if err != nil {
		return nil, err
	}
	transcriber, err := stt.NewTranscriber(rec, cfg.SampleRate)
	if err != nil {
		return nil, err
	}

	p.acc = acc
	p.seg = seg
	p.transcriber = transcriber
	return p, nil
}

// Run consumes chunks from in until it closes or ctx is cancelled,
// emitting finalized utterances on out as soon as each is transcribed.
// On normal end-of-stream the segmenter is flushed and any final
// segments are emitted before out is closed. Cancellation stops
// immediately without flushing and returns ctx.Err(). out is always
// closed before Run returns.
func (p *Pipeline) Run(ctx context.Context, in <-chan []byte, out chan<- Result) error {
	defer close(out)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chunk, ok := <-in:
			if !ok {
				p.seg.Flush()
				return p.drain(ctx, out)
			}
			if err := p.process(ctx, chunk, out); err != nil {
				return err
			}
		}
	}
}

// process handles one inbound chunk: decode, window, score, segment,
// then transcribe whatever segments closed. A malformed chunk is dropped
// with a warning; the stream continues.
func (p *Pipeline) process(ctx context.Context, chunk []byte, out chan<- Result) error {
	samples, err := pcm.Decode(chunk)
	if err != nil {
		p.logger.Warn("dropping malformed audio chunk", slog.String("error", err.Error()))
		p.metrics.AddMalformedChunk(ctx)
		return nil
	}

	for _, window := range p.acc.Push(samples) {
		score, err := p.scorer.Score(window)
		if err != nil {
			// A scoring failure on one window is treated as silence.
			p.logger.Warn("vad scoring failed", slog.String("error", err.Error()))
			score = 0
		}
		if err := p.seg.Push(window, score); err != nil {
			return err
		}
		p.metrics.AddWindow(ctx)
	}

	return p.drain(ctx, out)
}

// drain transcribes every closed segment in FIFO order. A failed
// transcription drops that segment only.
func (p *Pipeline) drain(ctx context.Context, out chan<- Result) error {
	for !p.seg.Empty() {
		if err := ctx.Err(); err != nil {
			return err
		}
		seg := p.seg.Pop()
		p.metrics.ObserveSegment(ctx, seg.Duration())

		text, err := p.transcriber.Transcribe(ctx, seg)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			p.logger.Warn("segment transcription failed",
				slog.Uint64("segment", seg.Seq),
				slog.String("error", err.Error()))
			p.metrics.AddTranscriptionFailure(ctx)
			continue
		}
		if text == "" {
			continue
		}

		select {
		case out <- Result{Seq: seg.Seq, Text: text, Duration: seg.Duration(), Flushed: seg.Flushed}:
			p.metrics.AddTranscript(ctx)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
