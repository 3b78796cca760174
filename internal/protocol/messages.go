package protocol

import "time"

// AudioFrame carries one chunk of 16-bit LE mono PCM from an edge device.
// Final marks the last frame of a session; its PCM may be empty.
type AudioFrame struct {
	SessionID  string `json:"session_id"`
	Sequence   int    `json:"sequence"`
	SampleRate int    `json:"sample_rate"`
	PCM        []byte `json:"pcm"`
	Final      bool   `json:"final"`
}

// Transcript is one finalized utterance broadcast on the bus, in emission
// order per session.
type Transcript struct {
	SessionID string    `json:"session_id"`
	Seq       uint64    `json:"seq"`
	Text      string    `json:"text"`
	Flushed   bool      `json:"flushed,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	SubjectAudioFramePrefix = "audio.frame"
	SubjectTranscriptFinal  = "stt.text.final"
)
