// SPDX-License-Identifier: EPL-2.0

package crossfade

import "github.com/ik5/ddpfx/utils"

func sat(v float32) int16 {
	switch {
	case v >= 32767:
		return 32767
	case v <= -32768:
		return -32768
	}
	return int16(v)
}

// Scale multiplies each left and right sample by volL and volR.
func Scale(samples []int16, volL, volR float32) {
	for i := 0; i+1 < len(samples); i += 2 {
		samples[i] = sat(float32(samples[i]) * volL)
		samples[i+1] = sat(float32(samples[i+1]) * volR)
	}
}

// CopyWithFade overwrites frames stereo frames of dst with src scaled by the
// channel volume and a ramp from start to end.
func CopyWithFade(dst, src []int16, frames int, volL, volR, start, end float32) {
	d := end - start
	n := float32(frames)
	for i := range frames {
		f := start + (float32(i)/n)*d
		dst[2*i] = sat(float32(src[2*i]) * volL * f)
		dst[2*i+1] = sat(float32(src[2*i+1]) * volR * f)
	}
}

// AccumulateWithFade mixes src into dst like CopyWithFade, saturating the
// sum.
func AccumulateWithFade(dst, src []int16, frames int, volL, volR, start, end float32) {
	d := end - start
	n := float32(frames)
	for i := range frames {
		f := start + (float32(i)/n)*d
		dst[2*i] = utils.Clamp16(int32(dst[2*i]) + int32(float32(src[2*i])*volL*f))
		dst[2*i+1] = utils.Clamp16(int32(dst[2*i+1]) + int32(float32(src[2*i+1])*volR*f))
	}
}

// CrossFade blends fadeIn into target. The ramp weighs target, fadeIn gets
// the complement, and both carry the channel volume.
func CrossFade(target, fadeIn []int16, frames int, volL, volR, start, end float32) {
	d := end - start
	n := float32(frames)
	for i := range frames {
		f := start + (float32(i)/n)*d
		inv := 1 - f
		target[2*i] = utils.Clamp16(int32(float32(fadeIn[2*i])*(inv*volL)) + int32(float32(target[2*i])*(f*volL)))
		target[2*i+1] = utils.Clamp16(int32(float32(fadeIn[2*i+1])*(inv*volR)) + int32(float32(target[2*i+1])*(f*volR)))
	}
}

// Accumulate adds src into dst sample by sample, saturating. It stops at
// the shorter of the two.
func Accumulate(dst, src []int16) {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = utils.Clamp16(int32(dst[i]) + int32(src[i]))
	}
}
