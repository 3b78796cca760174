package ingest

import (
	"context"

	"github.com/overtone-labs/voxd/internal/stt"
	"golang.org/x/sync/semaphore"
)

// limitedRecognizer bounds how many transcriptions run at once across
// all sessions. Each pipeline stays sequential on its own; the cap only
// matters when many sessions are live.
type limitedRecognizer struct {
	rec stt.Recognizer
	sem *semaphore.Weighted
}

func newLimitedRecognizer(rec stt.Recognizer, limit int) stt.Recognizer {
	if limit <= 0 {
		limit = 1
	}
	return &limitedRecognizer{rec: rec, sem: semaphore.NewWeighted(int64(limit))}
}

func (l *limitedRecognizer) Recognize(ctx context.Context, wavAudio []byte) ([]stt.Fragment, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer l.sem.Release(1)
	return l.rec.Recognize(ctx, wavAudio)
}
