// SPDX-License-Identifier: EPL-2.0

package decoder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ik5/ddpfx/audio"
	"github.com/ik5/ddpfx/engine"
)

// Source plays the host for a Loop and serves the decoded PCM as an
// audio.Source. Compressed input is read from r one InputBufferSize
// buffer at a time, every returned output buffer is drained and handed
// straight back, and an output port renegotiation is acknowledged as soon
// as it is signalled.
//
// The layout is settled by the first decoded PCM. A format change after
// that fails the stream with ErrFormatChanged.
type Source struct {
	loop *Loop
	q    *queue
	r    io.Reader
	log  *slog.Logger

	format    Format
	delivered bool
	readDone  bool
	ended     bool
	pcm       []int16
}

// NewSource starts decoding r with dec and blocks until the output layout
// is known.
func NewSource(r io.Reader, dec engine.Decoder, opts ...Option) (*Source, error) {
	q := &queue{}
	for range NumOutputBuffers {
		q.outputs = append(q.outputs, &Buffer{Data: make([]byte, OutputBufferSize)})
	}

	l := New(dec, q, opts...)
	s := &Source{
		loop:   l,
		q:      q,
		r:      r,
		log:    l.log,
		format: l.Format(),
	}

	for len(s.pcm) == 0 && !s.ended {
		if err := s.pump(); err != nil {
			_ = l.Stop()
			return nil, err
		}
	}

	s.log.Info("decoding", "format", s.format)
	return s, nil
}

func (s *Source) SampleRate() int { return s.format.SampleRate }
func (s *Source) Channels() int   { return s.format.Channels }

// Loop returns the decode session behind s.
func (s *Source) Loop() *Loop { return s.loop }

// Close stops the decode engine. r is left open.
func (s *Source) Close() error { return s.loop.Stop() }

// ReadPCM copies whole frames of decoded PCM into dst.
func (s *Source) ReadPCM(dst []int16) (int, error) {
	ch := s.format.Channels
	if len(dst) < ch {
		return 0, fmt.Errorf("%w: %d samples for %d channels", audio.ErrInvalidDstSize, len(dst), ch)
	}

	for len(s.pcm) == 0 {
		if s.ended {
			return 0, io.EOF
		}
		if err := s.pump(); err != nil {
			return 0, err
		}
	}

	n := copy(dst[:len(dst)-len(dst)%ch], s.pcm)
	s.pcm = s.pcm[n:]
	return n, nil
}

// pump queues input when the loop has none, runs one Fill and collects
// what the loop handed back.
func (s *Source) pump() error {
	if len(s.q.inputs) == 0 && !s.readDone {
		if err := s.readInput(); err != nil {
			return err
		}
	}

	if err := s.loop.Fill(context.Background()); err != nil {
		return err
	}

	for _, b := range s.q.returned {
		if b.Length > 0 {
			s.pcm = append(s.pcm, b.PCM()...)
			s.delivered = true
		}
		if b.EOS {
			s.ended = true
		}
		b.Offset, b.Length, b.EOS = 0, 0, false
		s.q.outputs = append(s.q.outputs, b)
	}
	s.q.returned = s.q.returned[:0]

	for _, f := range s.q.changed {
		if s.delivered {
			return fmt.Errorf("%w: %v to %v", ErrFormatChanged, s.format, f)
		}
		if err := s.renegotiate(); err != nil {
			return err
		}
		s.format = f
	}
	s.q.changed = s.q.changed[:0]
	return nil
}

// renegotiate walks the output port through disable and enable.
func (s *Source) renegotiate() error {
	if err := s.loop.PortEnableCompleted(1, false); err != nil {
		return err
	}
	return s.loop.PortEnableCompleted(1, true)
}

// readInput queues the next input buffer, and an EOS buffer once r is
// drained.
func (s *Source) readInput() error {
	b := &Buffer{Data: make([]byte, InputBufferSize), Timestamp: s.loop.KeyTime()}

	n, err := io.ReadFull(s.r, b.Data)
	if n > 0 {
		b.Length = n
		s.q.inputs = append(s.q.inputs, b)
	}

	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		s.readDone = true
		s.q.inputs = append(s.q.inputs, &Buffer{EOS: true})
		return nil
	case err != nil:
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

// queue is the host side of the Loop behind a Source. Buffers always
// come back in queue order.
type queue struct {
	inputs   []*Buffer
	outputs  []*Buffer
	returned []*Buffer
	changed  []Format
}

func (q *queue) NextInput() (*Buffer, bool) {
	if len(q.inputs) == 0 {
		return nil, false
	}
	return q.inputs[0], true
}

func (q *queue) NextOutput() (*Buffer, bool) {
	if len(q.outputs) == 0 {
		return nil, false
	}
	return q.outputs[0], true
}

func (q *queue) OutputsQueued() int { return len(q.outputs) }

func (q *queue) ReturnInput(*Buffer) { q.inputs = q.inputs[1:] }

func (q *queue) ReturnOutput(b *Buffer) {
	q.outputs = q.outputs[1:]
	q.returned = append(q.returned, b)
}

func (q *queue) NotifyFormatChanged(f Format) { q.changed = append(q.changed, f) }

// NotifyError is a no-op: the same error is returned by Fill.
func (q *queue) NotifyError(error) {}
