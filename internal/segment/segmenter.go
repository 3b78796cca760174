// Package segment turns a stream of scored audio windows into closed
// speech segments under hysteresis and duration rules.
package segment

import (
	"fmt"
	"time"
)

// Segment is one contiguous utterance: an ordered run of samples plus a
// monotonically increasing sequence number.
type Segment struct {
	// Samples is the normalized audio of the utterance, trailing silence
	// excluded.
	Samples []float32

	// Seq orders segments within one segmenter.
	Seq uint64

	// SampleRate is the rate the samples were captured at.
	SampleRate int

	// Flushed marks segments closed by Flush rather than by a silence
	// boundary or the duration cap.
	Flushed bool
}

// Duration returns the segment length in wall time.
func (s *Segment) Duration() time.Duration {
	if s.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(s.Samples)) * time.Second / time.Duration(s.SampleRate)
}

// Config carries the segmentation parameters. All durations are in wall
// time; the segmenter converts them to window counts internally.
type Config struct {
	SampleRate int
	WindowSize int

	// SpeechThreshold is the score above which a window counts as speech.
	SpeechThreshold float64

	// MinSpeech discards closed segments shorter than this as noise.
	MinSpeech time.Duration

	// MinSilence is the contiguous below-threshold run required to close
	// an open segment (silence debounce).
	MinSilence time.Duration

	// MaxSpeech forcibly splits a segment that reaches this duration
	// without a natural silence boundary.
	MaxSpeech time.Duration

	// ShouldClose, when set, replaces the MinSilence comparison: it is
	// consulted with the accumulated silence duration after each
	// below-threshold window and closes the segment when it returns true.
	ShouldClose func(silence time.Duration) bool
}

type state int

const (
	stateSilent state = iota
	stateSpeaking
	stateEnding
)

// Segmenter is the stateful window classifier. It is not safe for
// concurrent use; each audio connection owns its own instance.
type Segmenter struct {
	cfg       Config
	windowDur time.Duration

	st         state
	current    []float32
	silenceRun int // consecutive below-threshold windows at the tail of current
	nextSeq    uint64

	queue []*Segment
}

// New validates the configuration and returns a segmenter in the silent
// state.
func New(cfg Config) (*Segmenter, error) {
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", cfg.SampleRate)
	}
	if cfg.WindowSize <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", cfg.WindowSize)
	}
	if cfg.SpeechThreshold <= 0 || cfg.SpeechThreshold >= 1 {
		return nil, fmt.Errorf("speech threshold must be in (0, 1), got %f", cfg.SpeechThreshold)
	}
	if cfg.MinSilence <= 0 {
		return nil, fmt.Errorf("min silence must be positive, got %v", cfg.MinSilence)
	}
	if cfg.MaxSpeech <= cfg.MinSpeech {
		return nil, fmt.Errorf("max speech %v must exceed min speech %v", cfg.MaxSpeech, cfg.MinSpeech)
	}
	return &Segmenter{
		cfg:       cfg,
		windowDur: time.Duration(cfg.WindowSize) * time.Second / time.Duration(cfg.SampleRate),
	}, nil
}

// Push feeds one scored window into the state machine. Completed segments
// land on the output queue in order.
func (s *Segmenter) Push(window []float32, score float64) error {
	if len(window) != s.cfg.WindowSize {
		return fmt.Errorf("expected %d samples, got %d", s.cfg.WindowSize, len(window))
	}
	speech := score > s.cfg.SpeechThreshold

	switch s.st {
	case stateSilent:
		if !speech {
			return nil
		}
		s.current = append(s.current[:0], window...)
		s.silenceRun = 0
		s.st = stateSpeaking

	case stateSpeaking, stateEnding:
		s.current = append(s.current, window...)
		if speech {
			// A breath or short pause stays inside the utterance.
			s.silenceRun = 0
			s.st = stateSpeaking
		} else {
			s.silenceRun++
			s.st = stateEnding
			if s.silenceClosed() {
				// Boundary at the start of the silence run: trailing
				// silence is not part of the utterance.
				speechLen := len(s.current) - s.silenceRun*s.cfg.WindowSize
				s.close(s.current[:speechLen], false)
				return nil
			}
		}
	}

	if s.duration(len(s.current)) >= s.cfg.MaxSpeech {
		// Duration cap: split here to keep memory bounded during
		// continuous speech. The next speech window opens a new segment.
		s.close(s.current, false)
	}
	return nil
}

// silenceClosed decides whether the accumulated silence run ends the
// segment, using the injected predicate when one is configured.
func (s *Segmenter) silenceClosed() bool {
	silence := time.Duration(s.silenceRun) * s.windowDur
	if s.cfg.ShouldClose != nil {
		return s.cfg.ShouldClose(silence)
	}
	return silence >= s.cfg.MinSilence
}

// Flush closes any open segment regardless of trailing-silence duration.
// Segments below MinSpeech are still discarded as noise. Used only at
// end-of-stream; the segmenter resets to silent.
func (s *Segmenter) Flush() {
	if s.st == stateSilent {
		return
	}
	speechLen := len(s.current) - s.silenceRun*s.cfg.WindowSize
	s.close(s.current[:speechLen], true)
}

func (s *Segmenter) close(samples []float32, flushed bool) {
	if s.duration(len(samples)) >= s.cfg.MinSpeech && len(samples) > 0 {
		owned := make([]float32, len(samples))
		copy(owned, samples)
		s.queue = append(s.queue, &Segment{
			Samples:    owned,
			Seq:        s.nextSeq,
			SampleRate: s.cfg.SampleRate,
			Flushed:    flushed,
		})
		s.nextSeq++
	}
	s.current = s.current[:0]
	s.silenceRun = 0
	s.st = stateSilent
}

func (s *Segmenter) duration(nsamples int) time.Duration {
	return time.Duration(nsamples) * time.Second / time.Duration(s.cfg.SampleRate)
}

// Empty reports whether the output queue holds no closed segments.
func (s *Segmenter) Empty() bool {
	return len(s.queue) == 0
}

// Front peeks at the oldest closed segment without removing it.
func (s *Segmenter) Front() *Segment {
	if len(s.queue) == 0 {
		return nil
	}
	return s.queue[0]
}

// Pop dequeues the oldest closed segment. Consumers pop exactly once per
// segment they transcribe.
func (s *Segmenter) Pop() *Segment {
	if len(s.queue) == 0 {
		return nil
	}
	seg := s.queue[0]
	s.queue = s.queue[1:]
	return seg
}
