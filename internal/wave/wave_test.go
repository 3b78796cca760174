package wave

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/go-audio/wav"
)

func TestEncodeHeaderLayout(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, -1.0}
	out := Encode(samples, 16000)

	if len(out) != 44+len(samples)*2 {
		t.Fatalf("expected %d bytes, got %d", 44+len(samples)*2, len(out))
	}
	if string(out[0:4]) != "RIFF" || string(out[8:12]) != "WAVE" {
		t.Fatalf("bad container magic: %q %q", out[0:4], out[8:12])
	}
	if got := binary.LittleEndian.Uint32(out[4:8]); got != uint32(36+len(samples)*2) {
		t.Fatalf("bad riff size: %d", got)
	}
	if string(out[12:16]) != "fmt " {
		t.Fatalf("bad fmt chunk id: %q", out[12:16])
	}
	if got := binary.LittleEndian.Uint16(out[20:22]); got != 1 {
		t.Fatalf("expected PCM format tag, got %d", got)
	}
	if got := binary.LittleEndian.Uint16(out[22:24]); got != 1 {
		t.Fatalf("expected mono, got %d channels", got)
	}
	if got := binary.LittleEndian.Uint32(out[24:28]); got != 16000 {
		t.Fatalf("bad sample rate: %d", got)
	}
	if got := binary.LittleEndian.Uint32(out[28:32]); got != 32000 {
		t.Fatalf("bad byte rate: %d", got)
	}
	if got := binary.LittleEndian.Uint16(out[32:34]); got != 2 {
		t.Fatalf("bad block align: %d", got)
	}
	if got := binary.LittleEndian.Uint16(out[34:36]); got != 16 {
		t.Fatalf("bad bits per sample: %d", got)
	}
	if string(out[36:40]) != "data" {
		t.Fatalf("bad data chunk id: %q", out[36:40])
	}
	if got := binary.LittleEndian.Uint32(out[40:44]); got != uint32(len(samples)*2) {
		t.Fatalf("bad data size: %d", got)
	}
}

func TestEncodeDecodableByWavReader(t *testing.T) {
	samples := make([]float32, 160)
	for i := range samples {
		samples[i] = 0.25
	}
	out := Encode(samples, 16000)

	dec := wav.NewDecoder(bytes.NewReader(out))
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if buf.Format.SampleRate != 16000 || buf.Format.NumChannels != 1 {
		t.Fatalf("unexpected format: %+v", buf.Format)
	}
	if len(buf.Data) != len(samples) {
		t.Fatalf("expected %d samples, got %d", len(samples), len(buf.Data))
	}
	want := int(0.25 * 32768)
	if buf.Data[0] != want {
		t.Fatalf("expected sample value %d, got %d", want, buf.Data[0])
	}
}

func TestEncodeEmptyInput(t *testing.T) {
	out := Encode(nil, 16000)
	if len(out) != 44 {
		t.Fatalf("expected header only, got %d bytes", len(out))
	}
	if got := binary.LittleEndian.Uint32(out[40:44]); got != 0 {
		t.Fatalf("expected zero data size, got %d", got)
	}
}
