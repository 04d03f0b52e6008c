// SPDX-License-Identifier: EPL-2.0

package crossfade

import "math"

// One24 is unity in the 8.24 fixed point volume format.
const One24 = 1 << 24

// DBScale is the number of gain steps per decibel used by the kernel.
const DBScale = 16

// Gain limits in kernel units: -130 dB and 0 dB.
const (
	MinGain = -130 * DBScale
	MaxGain = 0

	minVolume = 0.00000031623
)

// ExternalGain maps a pair of 8.24 linear volumes to a kernel gain value.
// The louder channel wins.
func ExternalGain(volL, volR uint32) int16 {
	v := max(volume(volL), volume(volR))

	switch {
	case v <= minVolume:
		return MinGain
	case v >= 1:
		return MaxGain
	}

	db := 20 * math.Log10(float64(v))
	return int16(float32(db) * DBScale)
}

func volume(v uint32) float32 {
	return float32(v) / One24
}
