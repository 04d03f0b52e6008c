// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/ddpfx/audio"
)

// go-mp3 decodes every file to interleaved 16-bit little-endian stereo.
const (
	channels      = 2
	bytesPerFrame = channels * 2
)

// pcmReader is the part of gomp3.Decoder the source reads through.
type pcmReader interface {
	io.Reader
	SampleRate() int
}

type source struct {
	dec        pcmReader
	sampleRate int

	raw  []byte
	tail int // bytes of a split frame held at the front of raw
}

func newSource(dec pcmReader) (*source, error) {
	rate := dec.SampleRate()
	if rate <= 0 {
		return nil, fmt.Errorf("%w: %d Hz", ErrInvalidSampleRate, rate)
	}

	return &source{
		dec:        dec,
		sampleRate: rate,
		raw:        make([]byte, 2048*bytesPerFrame),
	}, nil
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return channels }
func (s *source) Close() error    { return nil }

// ReadPCM decodes whole stereo frames into dst. A frame split across two
// go-mp3 reads is held back until its remaining bytes arrive.
func (s *source) ReadPCM(dst []int16) (int, error) {
	frames := len(dst) / channels
	if frames == 0 {
		return 0, fmt.Errorf("%w: %d samples", audio.ErrInvalidDstSize, len(dst))
	}

	need := frames * bytesPerFrame
	if len(s.raw) < need {
		raw := make([]byte, need)
		copy(raw, s.raw[:s.tail])
		s.raw = raw
	}

	n, err := s.dec.Read(s.raw[s.tail:need])
	n += s.tail
	whole := n - n%bytesPerFrame
	for i := range whole / 2 {
		dst[i] = int16(binary.LittleEndian.Uint16(s.raw[2*i:]))
	}
	s.tail = copy(s.raw, s.raw[whole:n])

	switch {
	case errors.Is(err, io.EOF):
		s.tail = 0
		return whole / 2, io.EOF
	case err != nil:
		return whole / 2, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return whole / 2, nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotMP3File, err)
	}
	return newSource(dec)
}
