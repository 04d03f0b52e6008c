// SPDX-License-Identifier: EPL-2.0

package decoder

// fadeIn ramps frames frames of interleaved pcm up from silence. The gain
// rises by 1/frames per frame and samples are rounded half up.
func fadeIn(pcm []int16, channels, frames int) {
	step := 1 / float32(frames)
	var f float32
	for i := range frames {
		for c := range channels {
			j := i*channels + c
			pcm[j] = int16(float32(pcm[j])*f + 0.5)
		}
		f += step
	}
}
