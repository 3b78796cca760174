package pipeline

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Metrics aggregates pipeline counters across all connections. A nil
// *Metrics is a no-op so tests and minimal deployments can skip wiring.
type Metrics struct {
	windows       metric.Int64Counter
	malformed     metric.Int64Counter
	failures      metric.Int64Counter
	transcripts   metric.Int64Counter
	segmentLength metric.Float64Histogram
}

// NewMetrics registers the pipeline instruments on the global meter
// provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter("github.com/overtone-labs/voxd/internal/pipeline")

	windows, err := meter.Int64Counter("voxd.pipeline.windows",
		metric.WithDescription("Audio windows scored"))
	if err != nil {
		return nil, err
	}
	malformed, err := meter.Int64Counter("voxd.pipeline.malformed_chunks",
		metric.WithDescription("Audio chunks dropped as malformed"))
	if err != nil {
		return nil, err
	}
	failures, err := meter.Int64Counter("voxd.pipeline.transcription_failures",
		metric.WithDescription("Segments dropped after recognizer failure"))
	if err != nil {
		return nil, err
	}
	transcripts, err := meter.Int64Counter("voxd.pipeline.transcripts",
		metric.WithDescription("Finalized utterances emitted"))
	if err != nil {
		return nil, err
	}
	segmentLength, err := meter.Float64Histogram("voxd.pipeline.segment_seconds",
		metric.WithDescription("Closed speech segment duration"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		windows:       windows,
		malformed:     malformed,
		failures:      failures,
		transcripts:   transcripts,
		segmentLength: segmentLength,
	}, nil
}

func (m *Metrics) AddWindow(ctx context.Context) {
	if m == nil {
		return
	}
	m.windows.Add(ctx, 1)
}

func (m *Metrics) AddMalformedChunk(ctx context.Context) {
	if m == nil {
		return
	}
	m.malformed.Add(ctx, 1)
}

func (m *Metrics) AddTranscriptionFailure(ctx context.Context) {
	if m == nil {
		return
	}
	m.failures.Add(ctx, 1)
}

func (m *Metrics) AddTranscript(ctx context.Context) {
	if m == nil {
		return
	}
	m.transcripts.Add(ctx, 1)
}

func (m *Metrics) ObserveSegment(ctx context.Context, d time.Duration) {
	if m == nil {
		return
	}
	m.segmentLength.Record(ctx, d.Seconds())
}
