// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"math"

	"github.com/ik5/ddpfx/utils"
)

const defaultBands = 20

// GainKernel is a reference Kernel. It folds any supported input layout to
// stereo, applies pregain plus postgain (1/16 dB units) and reports the
// block level through the visualizer parameters.
type GainKernel struct {
	version [4]int16
	params  map[string][]int16
	opened  bool
	started bool

	rate   int
	inCh   int
	layout []Channel

	in  []int16
	out []int16
}

// NewGainKernel returns a closed kernel reporting the given major version.
func NewGainKernel(major int16) *GainKernel {
	return &GainKernel{version: [4]int16{major, 0, 0, 0}}
}

func (k *GainKernel) defaults() map[string][]int16 {
	freqs := make([]int16, defaultBands)
	for i := range freqs {
		// log-ish spread, 47 Hz .. ~19 kHz
		freqs[i] = int16(47 * math.Pow(1.37, float64(i)))
	}

	return map[string][]int16{
		ParamVersion:        append([]int16(nil), k.version[:]...),
		ParamEndpoint:       {0},
		ParamPregain:        {0},
		ParamPostgain:       {0},
		ParamVisEnable:      {0},
		ParamOutputConfig:   {0},
		ParamEQBands:        {defaultBands},
		ParamEQBandFreqs:    append([]int16(nil), freqs...),
		ParamVisBandCount:   {defaultBands},
		ParamVisBandFreqs:   append([]int16(nil), freqs...),
		ParamVisGains:       make([]int16, defaultBands),
		ParamVisExcitations: make([]int16, defaultBands),
		ParamLeveler:        {0},
		ParamLevelerInput:   {0},
		ParamVirtualBass:    {0},
	}
}

func (k *GainKernel) Open() error {
	k.params = k.defaults()
	k.opened = true
	k.started = false
	return nil
}

func (k *GainKernel) SetInit(name string, value int16) error {
	if k.started {
		return fmt.Errorf("init parameter %q after start", name)
	}
	return k.Set(name, 0, value)
}

func (k *GainKernel) Start() error {
	if !k.opened {
		return ErrNotStarted
	}
	k.started = true
	return nil
}

func (k *GainKernel) Close() error {
	k.opened, k.started = false, false
	k.params = nil
	return nil
}

func (k *GainKernel) slot(name string, offset, n int) ([]int16, error) {
	v, ok := k.params[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	if offset < 0 || offset+n > len(v) {
		return nil, fmt.Errorf("%w: %q[%d:%d]", ErrParamRange, name, offset, offset+n)
	}
	return v[offset : offset+n], nil
}

func (k *GainKernel) Get(name string, idx int) (int16, error) {
	v, err := k.slot(name, idx, 1)
	if err != nil {
		return 0, err
	}
	return v[0], nil
}

func (k *GainKernel) GetBulk(name string, offset int, dst []int16) error {
	v, err := k.slot(name, offset, len(dst))
	if err != nil {
		return err
	}
	copy(dst, v)
	return nil
}

func (k *GainKernel) Set(name string, idx int, value int16) error {
	v, err := k.slot(name, idx, 1)
	if err != nil {
		return err
	}
	v[0] = value
	return nil
}

func (k *GainKernel) SetBulk(name string, offset int, values []int16) error {
	v, err := k.slot(name, offset, len(values))
	if err != nil {
		return err
	}
	copy(v, values)
	return nil
}

func (k *GainKernel) ResetUserSettings() error {
	endp := k.params[ParamEndpoint][0]
	k.params = k.defaults()
	k.params[ParamEndpoint][0] = endp
	return nil
}

func (k *GainKernel) SetInputConfig(sampleRate, blockSize int, layout []Channel) error {
	if blockSize != BlockSize {
		return ErrBlockAlign
	}
	if !k.started {
		return ErrNotStarted
	}

	k.rate = sampleRate
	k.inCh = len(layout)
	k.layout = layout
	k.in = make([]int16, BlockSize*k.inCh)
	k.out = make([]int16, BlockSize*2)
	return nil
}

func (k *GainKernel) SetInput(block []int16) error {
	if len(block) != len(k.in) {
		return ErrBufferSize
	}
	copy(k.in, block)
	return nil
}

func (k *GainKernel) gain() float64 {
	total := float64(k.params[ParamPregain][0]) + float64(k.params[ParamPostgain][0])
	return math.Pow(10, total/16/20)
}

func (k *GainKernel) Process() error {
	if !k.started || k.inCh == 0 {
		return ErrNotStarted
	}

	g := k.gain()
	var energy float64

	for f := range BlockSize {
		var l, r float64
		frame := k.in[f*k.inCh : (f+1)*k.inCh]
		for i, ch := range k.layout {
			s := float64(frame[i])
			switch ch {
			case ChanL, ChanLb:
				l += s
			case ChanR, ChanRb:
				r += s
			case ChanC, ChanLs, ChanRs:
				if ch != ChanRs {
					l += s * math.Sqrt2 / 2
				}
				if ch != ChanLs {
					r += s * math.Sqrt2 / 2
				}
			}
		}

		l, r = l*g, r*g
		k.out[2*f] = utils.Clamp16(int32(max(min(l, math.MaxInt32), math.MinInt32)))
		k.out[2*f+1] = utils.Clamp16(int32(max(min(r, math.MaxInt32), math.MinInt32)))
		energy += (l*l + r*r) / 2
	}

	k.updateVisualizer(energy / BlockSize)
	return nil
}

func (k *GainKernel) updateVisualizer(meanSquare float64) {
	level := int16(-2080)
	if meanSquare > 0 {
		db := 10 * math.Log10(meanSquare/(32768*32768))
		level = int16(max(db*16, -2080))
	}

	gains := k.params[ParamVisGains]
	exc := k.params[ParamVisExcitations]
	for i := range gains {
		gains[i] = 0
		exc[i] = level
	}
}

func (k *GainKernel) Output(block []int16) error {
	if len(block) != len(k.out) {
		return ErrBufferSize
	}
	copy(block, k.out)
	return nil
}
