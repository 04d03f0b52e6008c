// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/ik5/ddpfx/audio"
)

// pcmReader is the part of aiff.Decoder the source reads through.
type pcmReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type source struct {
	dec    pcmReader
	format goaudio.Format
	buf    goaudio.IntBuffer
}

// newSource settles the layout once; the decoder's buffer always points
// at it.
func newSource(dec pcmReader, format *goaudio.Format) (*source, error) {
	if format == nil || format.NumChannels <= 0 || format.SampleRate <= 0 {
		return nil, ErrUnsupportedAiffLayout
	}

	s := &source{dec: dec, format: *format}
	s.buf.Format = &s.format
	s.buf.SourceBitDepth = 16
	return s, nil
}

func (s *source) SampleRate() int { return s.format.SampleRate }
func (s *source) Channels() int   { return s.format.NumChannels }
func (s *source) Close() error    { return nil }

// ReadPCM reads whole frames into dst. A ragged tail of dst is left
// untouched, and a truncated last frame in the file is dropped.
func (s *source) ReadPCM(dst []int16) (int, error) {
	ch := s.format.NumChannels
	want := len(dst) - len(dst)%ch
	if want == 0 {
		return 0, fmt.Errorf("%w: %d samples for %d channels", audio.ErrInvalidDstSize, len(dst), ch)
	}

	if cap(s.buf.Data) < want {
		s.buf.Data = make([]int, want)
	}
	s.buf.Data = s.buf.Data[:want]

	n, err := s.dec.PCMBuffer(&s.buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	n -= n % ch
	for i, v := range s.buf.Data[:n] {
		dst[i] = int16(v)
	}

	if n < want || err != nil {
		return n, io.EOF
	}
	return n, nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, err := audio.AsReadSeeker(r)
	if err != nil {
		return nil, fmt.Errorf("reading aiff data: %w", err)
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}
	dec.ReadInfo()

	if dec.BitDepth != 16 {
		return nil, fmt.Errorf("%w: %d bits", ErrOnlyPCM16bitSupported, dec.BitDepth)
	}
	return newSource(dec, dec.Format())
}
