// Package archive subscribes to finalized transcripts on the bus and
// persists them to the transcript store.
package archive

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/overtone-labs/voxd/internal/bus"
	"github.com/overtone-labs/voxd/internal/protocol"
	"github.com/overtone-labs/voxd/internal/store"
)

type Service struct {
	store  *store.Store
	bus    *bus.Client
	logger *slog.Logger
	sub    *nats.Subscription
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewService(parent context.Context, st *store.Store, busClient *bus.Client, logger *slog.Logger) *Service {
	ctx, cancel := context.WithCancel(parent)
	return &Service{
		store:  st,
		bus:    busClient,
		logger: logger.With(slog.String("component", "archive")),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *Service) Start() error {
	if s.store == nil {
		return nil
	}
	sub, err := s.bus.Conn().Subscribe(protocol.SubjectTranscriptFinal, s.handleTranscript)
	if err != nil {
		return err
	}
	s.sub = sub
	return nil
}

func (s *Service) Close() {
	s.cancel()
	if s.sub != nil {
		_ = s.sub.Drain()
	}
	s.wg.Wait()
}

func (s *Service) Healthy() bool {
	return s.store == nil || s.sub != nil
}

func (s *Service) handleTranscript(msg *nats.Msg) {
	var transcript protocol.Transcript
	if err := json.Unmarshal(msg.Data, &transcript); err != nil {
		s.logger.Warn("archive failed to decode transcript", slog.String("error", err.Error()))
		return
	}
	if transcript.Text == "" {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.store.EnsureSession(s.ctx, transcript.SessionID); err != nil {
			s.logger.Warn("archive failed to ensure session", slog.String("error", err.Error()))
			return
		}
		err := s.store.AppendUtterance(s.ctx, store.Utterance{
			SessionID: transcript.SessionID,
			Seq:       transcript.Seq,
			Text:      transcript.Text,
			Flushed:   transcript.Flushed,
			CreatedAt: transcript.Timestamp,
		})
		if err != nil {
			s.logger.Warn("archive failed to persist transcript",
				slog.String("session_id", transcript.SessionID),
				slog.String("error", err.Error()))
		}
	}()
}
