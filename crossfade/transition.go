// SPDX-License-Identifier: EPL-2.0

package crossfade

// PreRoll is the number of frames of kernel output kept inaudible after an
// enable, while the freshly reset kernel is still emitting silence.
const PreRoll = 2048

// FadeLength returns the fade duration in frames for a sample rate: one
// eighth of a second.
func FadeLength(sampleRate int) int {
	return max(sampleRate/8, 1)
}

// State is the effective processing state of a Transition.
type State int

const (
	Disabled State = iota
	Enabling
	Enabled
	Disabling
)

func (s State) String() string {
	switch s {
	case Disabled:
		return "disabled"
	case Enabling:
		return "enabling"
	case Enabled:
		return "enabled"
	case Disabling:
		return "disabling"
	}
	return "unknown"
}

// Transition tracks graceful enable and disable. A new request overwrites
// whatever countdown is running.
type Transition struct {
	countdown int
	length    int
	enabled   bool
	bypassed  bool
}

// NewTransition returns a disabled transition fading over length frames.
func NewTransition(length int) *Transition {
	return &Transition{length: max(length, 1)}
}

// SetLength changes the fade duration. A running countdown is kept.
func (t *Transition) SetLength(length int) { t.length = max(length, 1) }

func (t *Transition) Length() int    { return t.length }
func (t *Transition) Countdown() int { return t.countdown }
func (t *Transition) Enabled() bool  { return t.enabled }
func (t *Transition) Bypassed() bool { return t.bypassed }

// Enable switches processing on. It returns false when already enabled.
func (t *Transition) Enable() bool {
	if t.enabled {
		return false
	}
	t.enabled = true
	if !t.bypassed {
		t.countdown = t.length + PreRoll
	}
	return true
}

// Disable switches processing off. It returns false when already disabled.
func (t *Transition) Disable() bool {
	if !t.enabled {
		return false
	}
	t.enabled = false
	if !t.bypassed {
		t.countdown = t.length
	}
	return true
}

// SetBypass routes audio around the kernel without changing the enabled
// flag. With crossFaded set on an enabled effect the switch is ramped,
// otherwise it is immediate.
func (t *Transition) SetBypass(bypass, crossFaded bool) {
	t.bypassed = bypass

	switch {
	case !crossFaded || !t.enabled:
		t.countdown = 0
	case bypass:
		t.countdown = t.length
	default:
		t.countdown = t.length + PreRoll
	}
}

// Reset drops any running countdown.
func (t *Transition) Reset() { t.countdown = 0 }

// State reports the effective state.
func (t *Transition) State() State {
	if t.bypassed || !t.enabled {
		if t.countdown > 0 {
			return Disabling
		}
		return Disabled
	}
	if t.countdown > 0 {
		return Enabling
	}
	return Enabled
}

func clampUnit(f float32) float32 {
	return min(max(f, 0), 1)
}

// Ramp returns the weight of the unprocessed signal at the start and end of
// the next frames frames, for callers mixing whole buffers at once. The
// processed signal takes the complement.
func (t *Transition) Ramp(frames int) (start, end float32) {
	l := float32(t.length)
	s := float32(t.countdown) / l
	e := max(float32(t.countdown-frames)/l, 0)

	if t.State() == Disabling {
		return clampUnit(1 - s), clampUnit(1 - e)
	}
	return clampUnit(s), clampUnit(e)
}

// BlockRamp is Ramp for a run of n frames that starts offset frames into
// the current buffer. In-place callers use it block by block.
func (t *Transition) BlockRamp(offset, n int) (start, end float32) {
	l := float32(t.length)

	if t.State() == Disabling {
		cross := min(t.length-t.countdown+offset, t.length)
		crossEnd := min(cross+n, t.length)
		return float32(cross) / l, float32(crossEnd-1) / l
	}

	cross := max(t.countdown-offset, 0)
	crossEnd := max(cross-n, 0)
	if crossEnd > t.length {
		return 1, 1
	}
	if cross > t.length {
		start = 1
	} else {
		start = float32(cross) / l
	}
	return start, min(float32(crossEnd+1)/l, 1)
}

// Advance consumes frames of the countdown. It reports whether a running
// transition finished with this call. The countdown never goes negative.
func (t *Transition) Advance(frames int) bool {
	if t.countdown <= 0 {
		return false
	}
	t.countdown -= frames
	if t.countdown <= 0 {
		t.countdown = 0
		return true
	}
	return false
}
