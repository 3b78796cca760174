// Package ingest is the bus-facing speech-to-text service. It consumes
// audio frames published by edge devices, runs one pipeline per session,
// and broadcasts finalized transcripts.
package ingest

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/overtone-labs/voxd/internal/bus"
	"github.com/overtone-labs/voxd/internal/config"
	"github.com/overtone-labs/voxd/internal/pipeline"
	"github.com/overtone-labs/voxd/internal/protocol"
	"github.com/overtone-labs/voxd/internal/stt"
	"github.com/overtone-labs/voxd/internal/vad"
)

const frameBuffer = 256

type Service struct {
	cfg      config.PipelineConfig
	bus      *bus.Client
	rec      stt.Recognizer
	metrics  *pipeline.Metrics
	logger   *slog.Logger
	sub      *nats.Subscription
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	mu       sync.Mutex
	sessions map[string]*session
}

// session is the inbound side of one running pipeline. The channel is
// closed exactly once, when the final frame arrives or the service
// shuts down.
type session struct {
	in     chan []byte
	closed bool
}

func NewService(parent context.Context, cfg config.PipelineConfig, busClient *bus.Client, rec stt.Recognizer, metrics *pipeline.Metrics, logger *slog.Logger) *Service {
	ctx, cancel := context.WithCancel(parent)
	return &Service{
		cfg:      cfg,
		bus:      busClient,
		rec:      newLimitedRecognizer(rec, cfg.MaxParallelTranscriptions),
		metrics:  metrics,
		logger:   logger.With(slog.String("component", "ingest")),
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*session),
	}
}

func (s *Service) Start() error {
	sub, err := s.bus.Conn().Subscribe(protocol.SubjectAudioFramePrefix+".>", s.handleFrame)
	if err != nil {
		return err
	}
	s.sub = sub
	return nil
}

// Close stops accepting frames, cancels in-flight pipelines, and waits
// for them to wind down. Streams cut off this way do not flush.
func (s *Service) Close() {
	if s.sub != nil {
		_ = s.sub.Drain()
	}
	s.cancel()
	s.wg.Wait()
}

func (s *Service) Healthy() bool {
	return s.sub != nil
}

func (s *Service) handleFrame(msg *nats.Msg) {
	var frame protocol.AudioFrame
	if err := json.Unmarshal(msg.Data, &frame); err != nil {
		s.logger.Warn("failed to decode audio frame", slog.String("error", err.Error()))
		return
	}
	if frame.SessionID == "" {
		s.logger.Warn("audio frame missing session id", slog.String("subject", msg.Subject))
		return
	}
	if frame.SampleRate != 0 && frame.SampleRate != s.cfg.SampleRate {
		s.logger.Warn("audio frame sample rate mismatch",
			slog.String("session_id", frame.SessionID),
			slog.Int("got", frame.SampleRate),
			slog.Int("want", s.cfg.SampleRate))
		return
	}

	sess := s.lookup(frame.SessionID, frame.Final)
	if sess == nil {
		return
	}

	if len(frame.PCM) > 0 {
		select {
		case sess.in <- frame.PCM:
		case <-s.ctx.Done():
			return
		}
	}
	if frame.Final {
		s.finish(frame.SessionID, sess)
	}
}

// lookup returns the session for id, starting a pipeline for it on
// first sight. A final frame for an unknown session starts nothing.
func (s *Service) lookup(id string, final bool) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		return sess
	}
	if final {
		return nil
	}

	sess := &session{in: make(chan []byte, frameBuffer)}
	if !s.startPipeline(id, sess) {
		return nil
	}
	s.sessions[id] = sess
	return sess
}

// finish closes the inbound channel. Only the subscription callback
// calls it; NATS dispatches callbacks for one subscription serially, so
// the close cannot race a blocked send.
func (s *Service) finish(id string, sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess.closed {
		return
	}
	sess.closed = true
	delete(s.sessions, id)
	close(sess.in)
}

// detach drops the session from the routing map without touching its
// channel. Used when a pipeline ends on its own, so a later frame with
// the same session id starts a fresh stream.
func (s *Service) detach(id string, sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[id] == sess {
		delete(s.sessions, id)
	}
}

func (s *Service) startPipeline(id string, sess *session) bool {
	scorer, err := vad.NewEnergyScorer(s.cfg.SampleRate, s.cfg.WindowSize)
	if err != nil {
		s.logger.Error("failed to build scorer", slog.String("error", err.Error()))
		return false
	}
	p, err := pipeline.New(s.cfg, scorer, s.rec, s.logger, pipeline.WithMetrics(s.metrics))
	if err != nil {
		s.logger.Error("failed to build pipeline",
			slog.String("session_id", id),
			slog.String("error", err.Error()))
		return false
	}

	out := make(chan pipeline.Result, 16)

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		if err := p.Run(s.ctx, sess.in, out); err != nil && s.ctx.Err() == nil {
			s.logger.Warn("pipeline ended with error",
				slog.String("session_id", id),
				slog.String("error", err.Error()))
		}
		s.detach(id, sess)
	}()
	go func() {
		defer s.wg.Done()
		for result := range out {
			s.publishTranscript(id, result)
		}
	}()

	s.logger.Info("session started", slog.String("session_id", id))
	return true
}

func (s *Service) publishTranscript(sessionID string, result pipeline.Result) {
	transcript := protocol.Transcript{
		SessionID: sessionID,
		Seq:       result.Seq,
		Text:      result.Text,
		Flushed:   result.Flushed,
		Timestamp: time.Now().UTC(),
	}
	data, err := json.Marshal(transcript)
	if err != nil {
		s.logger.Warn("failed to encode transcript", slog.String("error", err.Error()))
		return
	}
	if err := s.bus.Conn().Publish(protocol.SubjectTranscriptFinal, data); err != nil {
		s.logger.Warn("failed to publish transcript",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
	}
}
