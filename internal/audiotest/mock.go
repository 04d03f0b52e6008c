// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"io"
	"math"
)

// MockSource is a test helper that generates 16-bit PCM for testing.
// It implements the audio.Source interface (without importing it to avoid cycles).
type MockSource struct {
	sampleRate  int
	channels    int
	totalFrames int
	generated   int
	closed      bool
	waveform    func(frame int, channel int) int16
}

// NewMockSource creates a new mock audio source producing totalFrames frames.
func NewMockSource(sampleRate, channels, totalFrames int, waveform func(frame int, channel int) int16) *MockSource {
	return &MockSource{
		sampleRate:  sampleRate,
		channels:    channels,
		totalFrames: totalFrames,
		waveform:    waveform,
	}
}

// NewSilentSource creates a mock source that generates silence.
func NewSilentSource(sampleRate, channels, totalFrames int) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(int, int) int16 {
		return 0
	})
}

// NewSineSource creates a mock source that generates a sine at half scale.
func NewSineSource(sampleRate, channels, totalFrames int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(frame int, _ int) int16 {
		t := float64(frame) / float64(sampleRate)
		return int16(16384 * math.Sin(2*math.Pi*frequency*t))
	})
}

// NewConstantSource creates a mock source with a constant value.
func NewConstantSource(sampleRate, channels, totalFrames int, value int16) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(int, int) int16 {
		return value
	})
}

// NewRampSource emits frame*channels+channel, wrapped to int16. It makes
// sample order and latency visible in assertions.
func NewRampSource(sampleRate, channels, totalFrames int) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(frame int, channel int) int16 {
		return int16(frame*channels + channel)
	})
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) Close() error    { m.closed = true; return nil }

// Closed reports whether Close was called.
func (m *MockSource) Closed() bool { return m.closed }

// Reset rewinds the generator.
func (m *MockSource) Reset() {
	m.generated = 0
}

func (m *MockSource) ReadPCM(dst []int16) (int, error) {
	if m.generated >= m.totalFrames {
		return 0, io.EOF
	}

	frames := min(len(dst)/m.channels, m.totalFrames-m.generated)

	for f := range frames {
		idx := m.generated + f
		for ch := range m.channels {
			dst[f*m.channels+ch] = m.waveform(idx, ch)
		}
	}

	m.generated += frames
	written := frames * m.channels

	if m.generated >= m.totalFrames {
		return written, io.EOF
	}

	return written, nil
}

// Interleave builds an interleaved buffer of frames frames using fn.
func Interleave(frames, channels int, fn func(frame, channel int) int16) []int16 {
	out := make([]int16, frames*channels)
	for f := range frames {
		for c := range channels {
			out[f*channels+c] = fn(f, c)
		}
	}
	return out
}

// ChunkedSource plays back fixed samples at most chunk samples per read,
// ignoring frame boundaries the way a byte-oriented decoder does.
type ChunkedSource struct {
	sampleRate int
	channels   int
	samples    []int16
	chunk      int
	closed     bool
}

func NewChunkedSource(sampleRate, channels int, samples []int16, chunk int) *ChunkedSource {
	return &ChunkedSource{
		sampleRate: sampleRate,
		channels:   channels,
		samples:    samples,
		chunk:      chunk,
	}
}

func (c *ChunkedSource) SampleRate() int { return c.sampleRate }
func (c *ChunkedSource) Channels() int   { return c.channels }
func (c *ChunkedSource) Close() error    { c.closed = true; return nil }
func (c *ChunkedSource) Closed() bool    { return c.closed }

func (c *ChunkedSource) ReadPCM(dst []int16) (int, error) {
	if len(c.samples) == 0 {
		return 0, io.EOF
	}

	n := copy(dst[:min(len(dst), c.chunk)], c.samples)
	c.samples = c.samples[n:]
	if len(c.samples) == 0 {
		return n, io.EOF
	}
	return n, nil
}
