package pcm

import "fmt"

// Accumulator buffers decoded samples across chunk boundaries and slices
// them into fixed-size, non-overlapping windows. The internal buffer is
// owned exclusively by the accumulator; emitted windows are copies and
// never alias it.
type Accumulator struct {
	windowSize int
	buf        []float32
}

// NewAccumulator creates an accumulator emitting windows of exactly
// windowSize samples.
func NewAccumulator(windowSize int) (*Accumulator, error) {
	if windowSize <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", windowSize)
	}
	return &Accumulator{
		windowSize: windowSize,
		buf:        make([]float32, 0, windowSize*4),
	}, nil
}

// Push appends samples to the buffer and returns every complete window
// now available, in arrival order. The remainder stays buffered for the
// next call; no sample is dropped or reordered.
func (a *Accumulator) Push(samples []float32) [][]float32 {
	a.buf = append(a.buf, samples...)

	n := len(a.buf) / a.windowSize
	if n == 0 {
		return nil
	}

	windows := make([][]float32, 0, n)
	for i := 0; i < n; i++ {
		w := make([]float32, a.windowSize)
		copy(w, a.buf[i*a.windowSize:])
		windows = append(windows, w)
	}

	remainder := len(a.buf) - n*a.windowSize
	copy(a.buf, a.buf[n*a.windowSize:])
	a.buf = a.buf[:remainder]

	return windows
}

// Pending reports how many samples are buffered short of a full window.
func (a *Accumulator) Pending() int {
	return len(a.buf)
}

// Reset discards any buffered remainder.
func (a *Accumulator) Reset() {
	a.buf = a.buf[:0]
}
