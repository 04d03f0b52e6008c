// SPDX-License-Identifier: EPL-2.0

package blockbuf

import (
	"fmt"
	"log/slog"

	"github.com/ik5/ddpfx/engine"
)

const block = engine.BlockSize

// Strategy selects how in-place calls keep the caller's input intact while
// the kernel writes output.
type Strategy int

const (
	// InternalBuffer renders into a scratch buffer and copies the result
	// back. The scratch grows to the largest request seen and never shrinks.
	InternalBuffer Strategy = iota
	// Shift renders in place and moves the result right by one block.
	Shift
)

func (s Strategy) String() string {
	switch s {
	case InternalBuffer:
		return "internal-buffer"
	case Shift:
		return "shift"
	}
	return "unknown"
}

// Mode is the aliasing of a Process call.
type Mode int

const (
	Separate Mode = iota
	InPlace
)

// ModeOf reports whether in and out start at the same sample.
func ModeOf(in, out []int16) Mode {
	if len(in) > 0 && len(out) > 0 && &in[0] == &out[0] {
		return InPlace
	}
	return Separate
}

// Adapter is the block buffering state for one input format. Create a new
// one, or call Reset, whenever the format changes.
type Adapter struct {
	inCh, outCh int
	strategy    Strategy
	log         *slog.Logger

	input     []int16 // unprocessed, block*inCh
	processed []int16 // kernel output, block*outCh
	count     int     // frames staged in input, and already read from processed

	scratch []int16
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithStrategy selects the in-place strategy.
func WithStrategy(s Strategy) Option {
	return func(a *Adapter) { a.strategy = s }
}

// WithLogger sets the logger. If log is nil, slog.Default() is used.
func WithLogger(log *slog.Logger) Option {
	return func(a *Adapter) {
		if log != nil {
			a.log = log
		}
	}
}

// WithScratch preallocates the in-place scratch buffer for frames frames.
func WithScratch(frames int) Option {
	return func(a *Adapter) { a.scratch = make([]int16, frames*a.outCh) }
}

// New returns an Adapter for inCh channels in and outCh channels out.
func New(inCh, outCh int, opts ...Option) *Adapter {
	a := &Adapter{
		inCh:      inCh,
		outCh:     outCh,
		log:       slog.Default(),
		input:     make([]int16, block*inCh),
		processed: make([]int16, block*outCh),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.With("component", "blockbuf")
	return a
}

// Reset discards staged audio and restores the initial silent block.
func (a *Adapter) Reset() {
	clear(a.input)
	clear(a.processed)
	a.count = 0
}

func (a *Adapter) InChannels() int   { return a.inCh }
func (a *Adapter) OutChannels() int  { return a.outCh }
func (a *Adapter) Strategy() Strategy { return a.strategy }

// Staged returns the number of input frames waiting for a full block.
func (a *Adapter) Staged() int { return a.count }

// ScratchFrames returns the capacity of the in-place scratch buffer.
func (a *Adapter) ScratchFrames() int {
	if a.outCh == 0 {
		return 0
	}
	return len(a.scratch) / a.outCh
}

// ProcessBlocks runs k directly over whole blocks with no buffering.
func ProcessBlocks(k engine.Kernel, in []int16, inCh int, out []int16, outCh int, frames int) error {
	if frames%block != 0 {
		return ErrBlockAlign
	}
	return engine.ProcessLoop(k, in, inCh, out, outCh, frames)
}

func (a *Adapter) processStaged(k engine.Kernel) error {
	return engine.ProcessLoop(k, a.input, a.inCh, a.processed, a.outCh, block)
}

// Process runs frames frames of in through k and writes the same number of
// frames, one block late, to out. in and out may be the same slice.
func (a *Adapter) Process(k engine.Kernel, in, out []int16, frames int) error {
	if frames <= 0 {
		return nil
	}
	if len(in) < frames*a.inCh || len(out) < frames*a.outCh {
		return ErrShortBuffer
	}

	mode := ModeOf(in, out)
	if mode == InPlace && a.outCh > a.inCh {
		return fmt.Errorf("%w: %d in, %d out", ErrChannelMismatch, a.inCh, a.outCh)
	}

	dst := out
	if mode == InPlace && a.strategy == InternalBuffer {
		if need := frames * a.outCh; len(a.scratch) < need {
			a.log.Debug("scratch resized", "from", a.ScratchFrames(), "to", frames)
			a.scratch = make([]int16, need)
		}
		dst = a.scratch
	}

	if err := a.run(k, in, dst, frames, mode); err != nil {
		return err
	}

	if mode == InPlace && a.strategy == InternalBuffer {
		copy(out[:frames*a.outCh], a.scratch[:frames*a.outCh])
	}
	return nil
}

// run is the shared body. ip and op are frame positions in in and dst.
func (a *Adapter) run(k engine.Kernel, in, dst []int16, n int, mode Mode) error {
	inCh, outCh := a.inCh, a.outCh
	ip, op := 0, 0

	// complete a partially staged block
	if a.count > 0 && a.count+n >= block {
		c := block - a.count
		copy(a.input[a.count*inCh:], in[:c*inCh])
		copy(dst[:c*outCh], a.processed[a.count*outCh:])
		ip, op, n = c, c, n-c

		if err := a.processStaged(k); err != nil {
			return err
		}
		a.count = 0
	}

	if a.count+n < block {
		copy(a.input[a.count*inCh:], in[ip*inCh:(ip+n)*inCh])
		copy(dst[op*outCh:(op+n)*outCh], a.processed[a.count*outCh:(a.count+n)*outCh])
		a.count += n
		return nil
	}

	// staging is empty and at least one block remains: the last whole
	// block is reserved for the staging buffer, the ones before it are
	// processed straight into dst
	n -= block
	direct := n - n%block

	if mode == InPlace && a.strategy == Shift {
		copy(a.input, in[(ip+direct)*inCh:(ip+direct+block)*inCh])

		if direct > 0 {
			if err := engine.ProcessLoop(k, in[ip*inCh:], inCh, dst[op*outCh:], outCh, direct); err != nil {
				return err
			}
			copy(dst[(op+block)*outCh:(op+block+direct)*outCh], dst[op*outCh:(op+direct)*outCh])
		}
		copy(dst[op*outCh:(op+block)*outCh], a.processed)

		ip += direct + block
		op += direct + block
		n -= direct

		if err := a.processStaged(k); err != nil {
			return err
		}
	} else {
		copy(dst[op*outCh:(op+block)*outCh], a.processed)
		op += block

		if direct > 0 {
			if err := engine.ProcessLoop(k, in[ip*inCh:], inCh, dst[op*outCh:], outCh, direct); err != nil {
				return err
			}
			ip += direct
			op += direct
			n -= direct
		}

		if err := engine.ProcessLoop(k, in[ip*inCh:], inCh, a.processed, outCh, block); err != nil {
			return err
		}
		ip += block
	}

	copy(a.input, in[ip*inCh:(ip+n)*inCh])
	copy(dst[op*outCh:(op+n)*outCh], a.processed[:n*outCh])
	a.count = n
	return nil
}
