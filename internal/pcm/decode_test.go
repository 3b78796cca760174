package pcm

import (
	"errors"
	"math"
	"testing"
)

func TestDecodeRejectsOddLength(t *testing.T) {
	_, err := Decode([]byte{0x01, 0x02, 0x03})
	if !errors.Is(err, ErrMalformedChunk) {
		t.Fatalf("expected ErrMalformedChunk, got %v", err)
	}
}

func TestDecodeEmptyChunk(t *testing.T) {
	samples, err := Decode(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(samples) != 0 {
		t.Fatalf("expected no samples, got %d", len(samples))
	}
}

func TestDecodeKnownValues(t *testing.T) {
	// 0, 16384 (0.5), -16384 (-0.5), -32768 (-1.0), little-endian
	chunk := []byte{0x00, 0x00, 0x00, 0x40, 0x00, 0xC0, 0x00, 0x80}
	samples, err := Decode(chunk)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float32{0, 0.5, -0.5, -1.0}
	if len(samples) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(samples))
	}
	for i, w := range want {
		if samples[i] != w {
			t.Fatalf("sample %d: expected %f, got %f", i, w, samples[i])
		}
	}
}

func TestQuantizeRoundTrip(t *testing.T) {
	values := []float32{0, 0.25, -0.25, 0.9999, -1.0}
	for _, v := range values {
		q := Quantize(v)
		back := float32(q) / 32768.0
		if math.Abs(float64(back-v)) > 1.0/32768.0 {
			t.Fatalf("value %f round-tripped to %f", v, back)
		}
	}
}

func TestQuantizeClamps(t *testing.T) {
	if got := Quantize(1.5); got != 32767 {
		t.Fatalf("expected clamp to 32767, got %d", got)
	}
	if got := Quantize(-1.5); got != -32768 {
		t.Fatalf("expected clamp to -32768, got %d", got)
	}
}
