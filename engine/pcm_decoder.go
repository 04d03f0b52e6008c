// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ik5/ddpfx/routing"
	"github.com/ik5/ddpfx/utils"
)

// rear pair bits of a dependent substream channel map
const rearPairMap = 0x300

// PCMDecoder is a Decoder for interleaved 16-bit little-endian PCM cut
// into timeslices of MaxBlocks blocks. It describes its input in Layout
// the way a coded stream does and renders each timeslice to the channel
// count and stereo mode the decode loop configures.
type PCMDecoder struct {
	rate   int
	layout []Channel

	outCh  int
	lfe    bool
	stereo routing.StereoMode
	params map[DecoderParam]int

	slice []byte
	fill  int
	in    []int16
}

// NewPCMDecoder returns a decoder for PCM at sampleRate with 2, 6 or 8
// channels in the order of ChannelMap.
func NewPCMDecoder(sampleRate, channels int) (*PCMDecoder, error) {
	layout, ok := ChannelMap(channels)
	if !ok || sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d Hz, %d channels", ErrUnsupportedLayout, sampleRate, channels)
	}

	frames := MaxBlocks * BlockSize
	return &PCMDecoder{
		rate:   sampleRate,
		layout: layout,
		outCh:  channels,
		lfe:    true,
		params: map[DecoderParam]int{},
		slice:  make([]byte, frames*channels*BytesPerSample),
		in:     make([]int16, frames*channels),
	}, nil
}

// SliceBytes is the input size of one timeslice.
func (d *PCMDecoder) SliceBytes() int { return len(d.slice) }

func (d *PCMDecoder) Open() error {
	d.fill = 0
	return nil
}

func (d *PCMDecoder) Close() error {
	d.fill = 0
	return nil
}

func (d *PCMDecoder) AddBytes(p []byte) (int, bool, error) {
	n := copy(d.slice[d.fill:], p)
	d.fill += n
	return n, d.fill == len(d.slice), nil
}

func (d *PCMDecoder) Layout() Layout {
	l := Layout{
		IndependentPresent: true,
		Acmod:              int(routing.AcmodStereo),
	}
	if len(d.layout) >= 6 {
		l.Acmod = int(routing.Acmod32)
		l.LFE = true
	}
	if len(d.layout) == 8 {
		l.DependentCount = 1
		l.ChannelMap = rearPairMap
	}
	return l
}

func (d *PCMDecoder) SetOutputChannels(n int) { d.outCh = n }

func (d *PCMDecoder) SetOutputParam(p DecoderParam, value int) error {
	switch p {
	case OutLFE:
		d.lfe = value != 0
	case OutStereoMode:
		d.stereo = routing.StereoMode(value)
	case OutMode, OutCompMode:
	default:
		return fmt.Errorf("%w: %v", ErrUnknownParam, p)
	}
	d.params[p] = value
	return nil
}

// Param returns the last value written for p.
func (d *PCMDecoder) Param(p DecoderParam) (int, bool) {
	v, ok := d.params[p]
	return v, ok
}

func (d *PCMDecoder) Decode(pcm []int16) (Timeslice, error) {
	if d.fill < len(d.slice) {
		return Timeslice{}, IncompleteFrame
	}
	d.fill = 0

	frames := MaxBlocks * BlockSize
	if len(pcm) < frames*d.outCh {
		return Timeslice{}, fmt.Errorf("%w: %d samples", ErrBufferSize, len(pcm))
	}
	for i := range d.in {
		d.in[i] = int16(binary.LittleEndian.Uint16(d.slice[2*i:]))
	}

	inCh := len(d.layout)
	for f := range frames {
		in := d.in[f*inCh : (f+1)*inCh]
		out := pcm[f*d.outCh : (f+1)*d.outCh]
		switch {
		case d.outCh == 2:
			d.foldStereo(out, in)
		case d.outCh == inCh:
			copy(out, in)
		case d.outCh == 6 && inCh == 8:
			copy(out, in[:6])
			out[4] = mix(in[4], in[6])
			out[5] = mix(in[5], in[7])
		default:
			clear(out)
			copy(out, in)
		}
		if !d.lfe && d.outCh >= 6 {
			out[3] = 0
		}
	}

	return Timeslice{Blocks: MaxBlocks, SampleRate: d.rate}, nil
}

func (d *PCMDecoder) QuitOnError() bool { return true }

// foldStereo renders one frame as Lo/Ro, or as Lt/Rt with the surrounds
// matrixed in antiphase when the surround stereo mode is set. LFE is
// dropped.
func (d *PCMDecoder) foldStereo(out, in []int16) {
	const c = math.Sqrt2 / 2

	var l, r, s float64
	for i, ch := range d.layout {
		v := float64(in[i])
		switch ch {
		case ChanL:
			l += v
		case ChanR:
			r += v
		case ChanC:
			l += c * v
			r += c * v
		case ChanLs, ChanLb:
			if d.stereo == routing.StereoSurround {
				s += v
			} else {
				l += c * v
			}
		case ChanRs, ChanRb:
			if d.stereo == routing.StereoSurround {
				s += v
			} else {
				r += c * v
			}
		}
	}
	s *= c / 2

	out[0] = utils.Clamp16(int32(max(min(l-s, math.MaxInt32), math.MinInt32)))
	out[1] = utils.Clamp16(int32(max(min(r+s, math.MaxInt32), math.MinInt32)))
}

// mix folds a back channel into its side surround at -3 dB.
func mix(side, back int16) int16 {
	return utils.Clamp16(int32(side) + int32(float64(back)*math.Sqrt2/2))
}
