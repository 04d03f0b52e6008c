// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
)

const pcmFormat = 1

// Writer streams interleaved 16-bit PCM into a WAV container. The header
// sizes are patched on Close, so the destination has to seek.
type Writer struct {
	enc    *gowav.Encoder
	buf    *goaudio.IntBuffer
	frames int
}

func NewWriter(ws io.WriteSeeker, sampleRate, channels int) (*Writer, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, ErrInvalidWriterFormat
	}

	return &Writer{
		enc: gowav.NewEncoder(ws, sampleRate, 16, channels, pcmFormat),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: 16,
		},
	}, nil
}

// WritePCM appends samples. len(samples) should be a multiple of the
// channel count.
func (w *Writer) WritePCM(samples []int16) error {
	if len(samples) == 0 {
		return nil
	}

	if cap(w.buf.Data) < len(samples) {
		w.buf.Data = make([]int, len(samples))
	}
	w.buf.Data = w.buf.Data[:len(samples)]

	for i, s := range samples {
		w.buf.Data[i] = int(s)
	}

	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("%w", err)
	}

	w.frames += len(samples) / w.buf.Format.NumChannels
	return nil
}

// Frames written so far.
func (w *Writer) Frames() int { return w.frames }

func (w *Writer) Close() error {
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// WriteWAV16 writes a complete 16-bit PCM WAV with the given layout.
func WriteWAV16(ws io.WriteSeeker, sampleRate, channels int, samples []int16) error {
	w, err := NewWriter(ws, sampleRate, channels)
	if err != nil {
		return err
	}

	if err := w.WritePCM(samples); err != nil {
		return err
	}

	return w.Close()
}
