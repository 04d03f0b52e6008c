// SPDX-License-Identifier: EPL-2.0

package effect

import (
	"errors"
	"fmt"

	"github.com/ik5/ddpfx/blockbuf"
	"github.com/ik5/ddpfx/crossfade"
	"github.com/ik5/ddpfx/engine"
	"github.com/ik5/ddpfx/utils"
)

// Buffer is a run of interleaved frames in the configured layout.
type Buffer struct {
	Samples []int16
	Frames  int
}

func grow(buf *[]int16, n int) []int16 {
	if len(*buf) < n {
		*buf = make([]int16, n)
	}
	return (*buf)[:n]
}

// Process runs in through the effect into out. Both must hold the same
// frame count. They may share storage when the input and output layouts
// match and the output is written, not accumulated.
//
// While a disable or bypass fades out, Process keeps returning nil. It
// returns ErrNoData, with out holding the unprocessed audio, once the
// effect no longer contributes.
func (e *Effect) Process(in, out Buffer) error {
	if e.kernel == nil {
		return ErrNotOpen
	}
	if in.Frames != out.Frames || in.Frames <= 0 {
		return fmt.Errorf("%w: frame count %d in, %d out", ErrInvalidArgument, in.Frames, out.Frames)
	}

	inCh, outCh := e.cfg.Input.Channels, e.cfg.Output.Channels
	n := in.Frames
	if len(in.Samples) < n*inCh || len(out.Samples) < n*outCh {
		return fmt.Errorf("%w: buffers too short for %d frames", ErrInvalidArgument, n)
	}

	src := in.Samples[:n*inCh]
	dst := out.Samples[:n*outCh]
	mode := blockbuf.ModeOf(src, dst)
	acc := e.cfg.Output.Access == AccessAccumulate

	e.dump(&e.dumpIn, src, "input")

	if !e.supported {
		passThrough(dst, src, n, inCh, outCh, acc, mode)
		e.dump(&e.dumpOut, dst, "output")
		return nil
	}

	if mode == blockbuf.InPlace && (inCh != outCh || acc) {
		return fmt.Errorf("%w: in-place processing needs matching layouts and write access", ErrInvalidArgument)
	}

	e.processed = true

	var err error
	switch e.trans.State() {
	case crossfade.Enabled:
		err = e.processEnabled(src, dst, n, acc)
	case crossfade.Disabled:
		if mode == blockbuf.Separate {
			e.writeDry(dst, e.stereo(src, n), n, acc, 1, 1)
		}
		err = ErrNoData
	default:
		err = e.processFading(src, dst, n, acc, mode)
	}

	if err != nil && !errors.Is(err, ErrNoData) {
		return invalid(err)
	}
	e.dump(&e.dumpOut, dst, "output")
	return err
}

func (e *Effect) processEnabled(src, dst []int16, n int, acc bool) error {
	if !acc {
		return e.buf.Process(e.kernel, src, dst, n)
	}

	wet := grow(&e.wet, n*2)
	if err := e.buf.Process(e.kernel, src, wet, n); err != nil {
		return err
	}
	crossfade.Accumulate(dst, wet)
	return nil
}

// processFading mixes unprocessed and processed audio while a transition
// runs. Separate buffers are mixed over the whole call, in-place buffers
// block by block.
func (e *Effect) processFading(src, dst []int16, n int, acc bool, mode blockbuf.Mode) error {
	disabling := e.trans.State() == crossfade.Disabling

	if mode == blockbuf.Separate {
		start, end := e.trans.Ramp(n)
		e.writeDry(dst, e.stereo(src, n), n, acc, start, end)

		wet := grow(&e.wet, n*2)
		if err := e.buf.Process(e.kernel, src, wet, n); err != nil {
			return err
		}
		crossfade.AccumulateWithFade(dst, wet, n, 1, 1, 1-start, 1-end)
	} else {
		primer := grow(&e.primer, engine.BlockSize*2)
		for off := 0; off < n; off += engine.BlockSize {
			m := min(engine.BlockSize, n-off)
			seg := src[off*2 : (off+m)*2]

			if err := e.buf.Process(e.kernel, seg, primer[:m*2], m); err != nil {
				return err
			}
			start, end := e.trans.BlockRamp(off, m)
			crossfade.CrossFade(seg, primer, m, e.volL, e.volR, start, end)
		}
	}

	if e.trans.Advance(n) {
		if disabling {
			e.log.Debug("graceful disable finished")
			return ErrNoData
		}
		e.log.Debug("graceful enable finished")
	}
	return nil
}

func (e *Effect) writeDry(dst, dry []int16, n int, acc bool, start, end float32) {
	if acc {
		crossfade.AccumulateWithFade(dst, dry, n, e.volL, e.volR, start, end)
		return
	}
	crossfade.CopyWithFade(dst, dry, n, e.volL, e.volR, start, end)
}

// stereo returns the front pair of src.
func (e *Effect) stereo(src []int16, n int) []int16 {
	inCh := e.cfg.Input.Channels
	if inCh == 2 {
		return src
	}

	dry := grow(&e.dry, n*2)
	for f := range n {
		dry[2*f] = src[f*inCh]
		dry[2*f+1] = src[f*inCh+1]
	}
	return dry
}

// passThrough copies src to dst channel by channel. Missing output
// channels repeat the last input channel.
func passThrough(dst, src []int16, n, inCh, outCh int, acc bool, mode blockbuf.Mode) {
	if mode == blockbuf.InPlace && inCh == outCh {
		return
	}

	for f := range n {
		for c := range outCh {
			s := src[f*inCh+min(c, inCh-1)]
			i := f*outCh + c
			if acc {
				dst[i] = utils.Clamp16(int32(dst[i]) + int32(s))
			} else {
				dst[i] = s
			}
		}
	}
}
