package store

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/overtone-labs/voxd/internal/config"
)

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestOpenEphemeral(t *testing.T) {
	ctx := context.Background()
	cfg := config.StoreConfig{RetentionMode: "ephemeral"}
	s, err := Open(ctx, cfg, newLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.Ensure(); err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	if err := s.AppendUtterance(ctx, Utterance{SessionID: "s", Text: "dropped"}); err != nil {
		t.Fatalf("ephemeral append should be a no-op: %v", err)
	}
}

func TestAppendAndQuery(t *testing.T) {
	tmp := t.TempDir()
	cfg := config.StoreConfig{Path: filepath.Join(tmp, "transcripts.db"), RetentionMode: "session"}
	s, err := Open(context.Background(), cfg, newLogger())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	sessionID := "session-123"
	if err := s.EnsureSession(context.Background(), sessionID); err != nil {
		t.Fatalf("ensure session: %v", err)
	}
	if err := s.AppendUtterance(context.Background(), Utterance{SessionID: sessionID, Seq: 2, Text: "world"}); err != nil {
		t.Fatalf("append utterance: %v", err)
	}
	if err := s.AppendUtterance(context.Background(), Utterance{SessionID: sessionID, Seq: 1, Text: "hello", Flushed: true}); err != nil {
		t.Fatalf("append utterance: %v", err)
	}

	utterances, err := s.ListSessionUtterances(context.Background(), sessionID, 10)
	if err != nil {
		t.Fatalf("list utterances: %v", err)
	}
	if len(utterances) != 2 {
		t.Fatalf("expected 2 utterances, got %d", len(utterances))
	}
	if utterances[0].Text != "hello" || utterances[1].Text != "world" {
		t.Fatalf("expected seq order, got %q then %q", utterances[0].Text, utterances[1].Text)
	}
	if !utterances[0].Flushed {
		t.Fatalf("expected flushed flag to round-trip")
	}
}

func TestPruneByDaysAndSessions(t *testing.T) {
	tmp := t.TempDir()
	cfg := config.StoreConfig{Path: filepath.Join(tmp, "transcripts.db"), RetentionMode: "persistent", RetentionDays: 1, MaxSessions: 1}
	s, err := Open(context.Background(), cfg, newLogger())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	s.clock = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	if err := s.EnsureSession(context.Background(), "old-session"); err != nil {
		t.Fatalf("ensure session: %v", err)
	}
	if err := s.AppendUtterance(context.Background(), Utterance{SessionID: "old-session", Seq: 1, Text: "stale"}); err != nil {
		t.Fatalf("append utterance: %v", err)
	}

	s.clock = func() time.Time { return time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC) }
	if err := s.EnsureSession(context.Background(), "new-session"); err != nil {
		t.Fatalf("ensure session: %v", err)
	}
	if err := s.Prune(context.Background()); err != nil {
		t.Fatalf("prune: %v", err)
	}

	utterances, err := s.ListSessionUtterances(context.Background(), "old-session", 10)
	if err != nil {
		t.Fatalf("list utterances: %v", err)
	}
	if len(utterances) != 0 {
		t.Fatalf("expected old session pruned")
	}
}
