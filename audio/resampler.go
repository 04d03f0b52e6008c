// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/ddpfx/utils"
)

// Resampler streams from src to target sample rate using cubic interpolation.
// Works on interleaved samples; preserves channel count.
// Includes basic anti-aliasing filtering when downsampling.
type Resampler struct {
	src      Source
	dstRate  int
	ratio    float64 // source frames per output frame
	channels int

	// frames[1] and frames[2] bracket the current output position
	frames   [4][]float32
	hasFrame [4]bool
	primed   bool

	pos float64

	srcBuf []int16
	srcPos int
	srcLen int
	eof    bool

	filterState []float32
	useFilter   bool
	filterAlpha float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	src = AlignFrames(src)
	channels := src.Channels()
	ratio := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:         src,
		dstRate:     dstRate,
		ratio:       ratio,
		channels:    channels,
		srcBuf:      make([]int16, 1024*channels),
		useFilter:   ratio > 1.0,
		filterAlpha: 0.5,
		filterState: make([]float32, channels),
	}

	for i := range r.frames {
		r.frames[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// nextFrame converts the next source frame into dst. It reports false once
// the source is drained.
func (r *Resampler) nextFrame(dst []float32) (bool, error) {
	for r.srcPos >= r.srcLen {
		if r.eof {
			return false, nil
		}

		n, err := r.src.ReadPCM(r.srcBuf)
		r.srcPos, r.srcLen = 0, n
		if err == io.EOF {
			r.eof = true
		} else if err != nil {
			return false, fmt.Errorf("%w", err)
		}
	}

	for c := range r.channels {
		v := utils.Int16ToFloat32(r.srcBuf[r.srcPos+c])
		if r.useFilter {
			// one-pole low-pass: y[n] = a*x[n] + (1-a)*y[n-1]
			v = r.filterAlpha*v + (1-r.filterAlpha)*r.filterState[c]
			r.filterState[c] = v
		}
		dst[c] = v
	}
	r.srcPos += r.channels

	return true, nil
}

func (r *Resampler) prime() error {
	ok, err := r.nextFrame(r.frames[1])
	if err != nil {
		return err
	}
	if !ok {
		return io.EOF
	}
	if r.useFilter {
		// start the filter from the first sample to avoid a warm-up transient
		copy(r.filterState, r.frames[1])
	}
	copy(r.frames[0], r.frames[1])
	r.hasFrame[0], r.hasFrame[1] = true, true

	for i := 2; i < 4; i++ {
		ok, err := r.nextFrame(r.frames[i])
		if err != nil {
			return err
		}
		r.hasFrame[i] = ok
		if !ok {
			break
		}
	}

	r.primed = true
	return nil
}

func (r *Resampler) shift() error {
	r.frames[0], r.frames[1], r.frames[2], r.frames[3] = r.frames[1], r.frames[2], r.frames[3], r.frames[0]
	r.hasFrame[0], r.hasFrame[1], r.hasFrame[2] = r.hasFrame[1], r.hasFrame[2], r.hasFrame[3]

	if !r.hasFrame[2] {
		r.hasFrame[3] = false
		return nil
	}

	ok, err := r.nextFrame(r.frames[3])
	r.hasFrame[3] = ok
	return err
}

// ReadPCM produces dst samples at the destination rate.
// dst length should be a multiple of r.channels.
func (r *Resampler) ReadPCM(dst []int16) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	written := 0
	framesNeeded := len(dst) / r.channels

	for written < framesNeeded {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			if err := r.shift(); err != nil {
				return written * r.channels, err
			}
		}

		if !r.hasFrame[1] {
			if written == 0 {
				return 0, io.EOF
			}
			return written * r.channels, io.EOF
		}

		f2, f3 := r.frames[2], r.frames[3]
		if !r.hasFrame[2] {
			f2 = r.frames[1]
		}
		if !r.hasFrame[3] {
			f3 = f2
		}

		out := dst[written*r.channels : (written+1)*r.channels]
		utils.CubicInterpolateFrame(out, r.frames[0], r.frames[1], f2, f3, float32(r.pos))

		written++
		r.pos += r.ratio
	}

	return written * r.channels, nil
}
