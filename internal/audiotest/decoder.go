// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"github.com/ik5/ddpfx/engine"
)

// Frame is one scripted access unit of a Decoder.
type Frame struct {
	// Size is the compressed size in bytes.
	Size       int
	Blocks     int
	SampleRate int
	Layout     engine.Layout
	// Value fills every decoded sample. Zero selects a ramp that starts at 1
	// so silence is never produced by accident.
	Value int16
	// AddErr is returned by AddBytes once the frame is complete.
	AddErr error
	// DecodeErr is returned by Decode for this frame.
	DecodeErr error
}

// Decoder is a scripted engine.Decoder. Frames are consumed in order, the
// last one repeats once the script runs out.
type Decoder struct {
	Frames   []Frame
	Quit     bool
	OpenErr  error
	Params   map[engine.DecoderParam]int
	Channels int

	Opens, Closes, Decodes int
	Consumed               int

	// ParamCalls lists every SetOutputParam call in order.
	ParamCalls []engine.DecoderParam

	pos     int
	pending int
	ready   bool
}

// NewDecoder returns a scripted decoder that quits on error.
func NewDecoder(frames ...Frame) *Decoder {
	return &Decoder{
		Frames:   frames,
		Quit:     true,
		Params:   map[engine.DecoderParam]int{},
		Channels: 2,
	}
}

func (d *Decoder) current() Frame {
	if len(d.Frames) == 0 {
		return Frame{Size: 1, Blocks: 6, SampleRate: 48000}
	}
	return d.Frames[min(d.pos, len(d.Frames)-1)]
}

func (d *Decoder) Open() error {
	d.Opens++
	return d.OpenErr
}

func (d *Decoder) Close() error {
	d.Closes++
	d.pending, d.ready = 0, false
	return nil
}

func (d *Decoder) AddBytes(p []byte) (int, bool, error) {
	f := d.current()
	n := min(len(p), f.Size-d.pending)
	d.pending += n
	d.Consumed += n

	if d.pending < f.Size {
		return n, false, nil
	}
	if f.AddErr != nil {
		d.next()
		return n, false, f.AddErr
	}
	d.ready = true
	return n, true, nil
}

func (d *Decoder) next() {
	d.pos++
	d.pending, d.ready = 0, false
}

func (d *Decoder) Layout() engine.Layout { return d.current().Layout }

func (d *Decoder) SetOutputChannels(n int) { d.Channels = n }

func (d *Decoder) SetOutputParam(p engine.DecoderParam, value int) error {
	d.Params[p] = value
	d.ParamCalls = append(d.ParamCalls, p)
	return nil
}

func (d *Decoder) Decode(pcm []int16) (engine.Timeslice, error) {
	if !d.ready {
		return engine.Timeslice{}, engine.IncompleteFrame
	}
	f := d.current()
	d.next()
	d.Decodes++

	if f.DecodeErr != nil {
		return engine.Timeslice{}, f.DecodeErr
	}

	n := min(f.Blocks*engine.BlockSize*d.Channels, len(pcm))
	for i := range n {
		if f.Value != 0 {
			pcm[i] = f.Value
		} else {
			pcm[i] = int16(i%30000 + 1)
		}
	}

	return engine.Timeslice{Blocks: f.Blocks, SampleRate: f.SampleRate}, nil
}

func (d *Decoder) QuitOnError() bool { return d.Quit }
