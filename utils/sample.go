// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// Float32ToInt16 maps a float sample in [-1,1] to int16 PCM. Values outside
// the range are clamped.
func Float32ToInt16(x float32) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	// 32767 for both signs keeps the mapping symmetric
	return int16(x * 32767.0)
}

// Int16ToFloat32 is the inverse of Float32ToInt16 within one LSB.
func Int16ToFloat32(s int16) float32 {
	return float32(s) / 32767.0
}

// Clamp16 saturates a 32-bit intermediate to the int16 range.
func Clamp16(v int32) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

// Clamp32 saturates a 64-bit intermediate to the int32 range.
func Clamp32(v int64) int32 {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < math.MinInt32 {
		return math.MinInt32
	}
	return int32(v)
}
