// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"fmt"
	"io"

	"github.com/ik5/ddpfx/audio"
	goflac "github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
)

// flacStream is an interface for flac.Stream to allow testing
type flacStream interface {
	ParseNext() (*frame.Frame, error)
	Close() error
}

type source struct {
	stream     flacStream
	sampleRate int
	channels   int
	bitDepth   int

	// decoded but not yet delivered samples of the current frame
	pending []int16
	pos     int
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }

func (s *source) Close() error {
	if err := s.stream.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (s *source) to16(v int32) int16 {
	switch {
	case s.bitDepth > 16:
		return int16(v >> (s.bitDepth - 16))
	case s.bitDepth < 16:
		return int16(v << (16 - s.bitDepth))
	default:
		return int16(v)
	}
}

func (s *source) decodeFrame() error {
	f, err := s.stream.ParseNext()
	if err != nil {
		return err
	}
	if len(f.Subframes) != s.channels {
		return ErrChannelMismatch
	}

	nSamples := f.Subframes[0].NSamples
	need := nSamples * s.channels
	if cap(s.pending) < need {
		s.pending = make([]int16, need)
	}
	s.pending = s.pending[:need]
	s.pos = 0

	for i := range nSamples {
		for ch, sub := range f.Subframes {
			s.pending[i*s.channels+ch] = s.to16(sub.Samples[i])
		}
	}

	return nil
}

func (s *source) ReadPCM(dst []int16) (int, error) {
	n := 0
	for n < len(dst) {
		if s.pos >= len(s.pending) {
			if err := s.decodeFrame(); err != nil {
				if err == io.EOF {
					if n == 0 {
						return 0, io.EOF
					}
					return n, nil
				}
				return n, fmt.Errorf("%w", err)
			}
		}

		c := copy(dst[n:], s.pending[s.pos:])
		n += c
		s.pos += c
	}

	return n, nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	stream, err := goflac.New(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFlacFile, err)
	}

	info := stream.Info
	bitDepth := int(info.BitsPerSample)
	if bitDepth < 4 || bitDepth > 32 {
		_ = stream.Close()
		return nil, ErrUnsupportedBitDepth
	}

	return &source{
		stream:     stream,
		sampleRate: int(info.SampleRate),
		channels:   int(info.NChannels),
		bitDepth:   bitDepth,
	}, nil
}
