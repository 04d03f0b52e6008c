// SPDX-License-Identifier: EPL-2.0

// Package crossfade holds the gain ramp arithmetic used when the effect is
// switched on or off while audio is flowing.
//
// The combinators work on interleaved stereo int16 frames. A ramp runs
// linearly from start to end across the frames of one call: frame i gets
// start + (i/frames)*(end-start). Results saturate to the int16 range.
//
// Transition is the countdown that decides which ramp the effect applies
// on each Process call.
package crossfade
