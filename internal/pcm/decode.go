// Package pcm converts raw 16-bit little-endian PCM byte streams into
// normalized float32 samples and groups them into fixed-size analysis
// windows.
package pcm

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrMalformedChunk indicates a PCM chunk whose byte length is not a
// multiple of the 2-byte sample size. The chunk should be dropped; the
// stream itself stays usable.
var ErrMalformedChunk = errors.New("malformed audio chunk")

// Decode converts a chunk of 16-bit little-endian signed mono PCM into
// float32 samples normalized to [-1.0, 1.0].
func Decode(chunk []byte) ([]float32, error) {
	if len(chunk)%2 != 0 {
		return nil, fmt.Errorf("%w: odd byte length %d", ErrMalformedChunk, len(chunk))
	}
	samples := make([]float32, len(chunk)/2)
	for i := range samples {
		sample := int16(binary.LittleEndian.Uint16(chunk[i*2:]))
		samples[i] = float32(sample) / 32768.0
	}
	return samples, nil
}

// Quantize converts a normalized float32 sample back to int16, clamping
// out-of-range values instead of wrapping.
func Quantize(sample float32) int16 {
	scaled := int32(sample * 32768.0)
	if scaled > 32767 {
		return 32767
	}
	if scaled < -32768 {
		return -32768
	}
	return int16(scaled)
}
