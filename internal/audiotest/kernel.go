// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"fmt"
	"slices"

	"github.com/ik5/ddpfx/engine"
)

// Kernel is an engine.Kernel that records every call and passes the first
// OutChannels of each input frame through unchanged. Parameters are created
// on first write so tests can use any name.
type Kernel struct {
	Major       int16
	OutChannels int

	// ProcessErr, when set, is returned by Process.
	ProcessErr error
	// OpenErr, when set, is returned by Open.
	OpenErr error

	Calls  []string
	Blocks int

	params  map[string][]int16
	inCh    int
	started bool
	closed  bool
	in      []int16
}

// NewKernel returns a pass-through stereo kernel of the given major version.
func NewKernel(major int16) *Kernel {
	return &Kernel{Major: major, OutChannels: 2, params: map[string][]int16{}}
}

func (k *Kernel) record(format string, args ...any) {
	k.Calls = append(k.Calls, fmt.Sprintf(format, args...))
}

func (k *Kernel) Open() error {
	k.record("open")
	if k.OpenErr != nil {
		return k.OpenErr
	}
	if k.params == nil {
		k.params = map[string][]int16{}
	}
	k.params[engine.ParamVersion] = []int16{k.Major, 0, 0, 0}
	k.closed = false
	return nil
}

func (k *Kernel) SetInit(name string, value int16) error {
	k.record("init %s=%d", name, value)
	k.grow(name, 1)[0] = value
	return nil
}

func (k *Kernel) Start() error {
	k.record("start")
	k.started = true
	return nil
}

func (k *Kernel) Close() error {
	k.record("close")
	k.closed = true
	k.started = false
	return nil
}

// Closed reports whether the last lifecycle call was Close.
func (k *Kernel) Closed() bool { return k.closed }

func (k *Kernel) grow(name string, n int) []int16 {
	v := k.params[name]
	if len(v) < n {
		v = append(v, make([]int16, n-len(v))...)
		k.params[name] = v
	}
	return v
}

func (k *Kernel) Get(name string, idx int) (int16, error) {
	v, ok := k.params[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", engine.ErrUnknownParam, name)
	}
	if idx < 0 || idx >= len(v) {
		return 0, engine.ErrParamRange
	}
	return v[idx], nil
}

func (k *Kernel) GetBulk(name string, offset int, dst []int16) error {
	v, ok := k.params[name]
	if !ok {
		return fmt.Errorf("%w: %q", engine.ErrUnknownParam, name)
	}
	if offset < 0 || offset+len(dst) > len(v) {
		return engine.ErrParamRange
	}
	copy(dst, v[offset:])
	return nil
}

func (k *Kernel) Set(name string, idx int, value int16) error {
	k.record("set %s[%d]=%d", name, idx, value)
	k.grow(name, idx+1)[idx] = value
	return nil
}

func (k *Kernel) SetBulk(name string, offset int, values []int16) error {
	k.record("set %s[%d:%d]=%v", name, offset, offset+len(values), values)
	copy(k.grow(name, offset+len(values))[offset:], values)
	return nil
}

// Param returns a copy of the stored values for name.
func (k *Kernel) Param(name string) []int16 {
	return slices.Clone(k.params[name])
}

// SetParam stores values without recording a call.
func (k *Kernel) SetParam(name string, values ...int16) {
	copy(k.grow(name, len(values)), values)
}

// CallsWithPrefix returns the recorded calls starting with prefix.
func (k *Kernel) CallsWithPrefix(prefix string) []string {
	var out []string
	for _, c := range k.Calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			out = append(out, c)
		}
	}
	return out
}

// ResetCalls clears the call log.
func (k *Kernel) ResetCalls() { k.Calls = nil }

func (k *Kernel) ResetUserSettings() error {
	k.record("reset")
	return nil
}

func (k *Kernel) SetInputConfig(sampleRate, blockSize int, layout []engine.Channel) error {
	k.record("input %d %d %d", sampleRate, blockSize, len(layout))
	if blockSize != engine.BlockSize {
		return engine.ErrBlockAlign
	}
	k.inCh = len(layout)
	k.in = make([]int16, engine.BlockSize*k.inCh)
	return nil
}

// Configure sets the input channel count without going through Open.
func (k *Kernel) Configure(inChannels int) {
	k.inCh = inChannels
	k.in = make([]int16, engine.BlockSize*inChannels)
	k.started = true
}

func (k *Kernel) SetInput(block []int16) error {
	if len(block) != len(k.in) {
		return engine.ErrBufferSize
	}
	copy(k.in, block)
	return nil
}

func (k *Kernel) Process() error {
	if k.ProcessErr != nil {
		return k.ProcessErr
	}
	k.Blocks++
	return nil
}

func (k *Kernel) Output(block []int16) error {
	if len(block) != engine.BlockSize*k.OutChannels {
		return engine.ErrBufferSize
	}
	for f := range engine.BlockSize {
		for c := range k.OutChannels {
			var s int16
			if c < k.inCh {
				s = k.in[f*k.inCh+c]
			}
			block[f*k.OutChannels+c] = s
		}
	}
	return nil
}
