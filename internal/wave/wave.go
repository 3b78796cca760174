// Package wave encodes normalized float samples into a single-channel
// 16-bit PCM RIFF/WAVE container. The header layout is byte-exact because
// the result is handed to external decoders (whisper.cpp, command-line
// recognizers).
package wave

import (
	"encoding/binary"

	"github.com/overtone-labs/voxd/internal/pcm"
)

const (
	headerSize    = 44
	numChannels   = 1
	bitsPerSample = 16
)

// Encode wraps samples in a standard 44-byte RIFF/WAVE header (PCM format
// tag 1, mono, 16 bits per sample) followed by the little-endian PCM16
// payload. Samples outside [-1, 1] are clamped during quantization.
func Encode(samples []float32, sampleRate int) []byte {
	dataSize := len(samples) * 2
	byteRate := sampleRate * numChannels * bitsPerSample / 8
	blockAlign := numChannels * bitsPerSample / 8

	buf := make([]byte, headerSize+dataSize)

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")

	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16) // fmt chunk size for PCM
	binary.LittleEndian.PutUint16(buf[20:22], 1)  // format tag: PCM
	binary.LittleEndian.PutUint16(buf[22:24], numChannels)
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], bitsPerSample)

	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))

	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[headerSize+i*2:], uint16(pcm.Quantize(s)))
	}

	return buf
}
