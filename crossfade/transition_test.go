// SPDX-License-Identifier: EPL-2.0

package crossfade

import "testing"

func TestTransition_EnableCountdownExact(t *testing.T) {
	t.Parallel()

	for _, chunk := range []int{1, 100, 256, 1000, 4000} {
		tr := NewTransition(FadeLength(48000))
		tr.Enable()

		total := tr.Length() + PreRoll
		if got := tr.Countdown(); got != total {
			t.Fatalf("Countdown() after Enable = %d, want %d", got, total)
		}

		consumed := 0
		for consumed+chunk < total {
			if tr.Advance(chunk) {
				t.Fatalf("chunk %d: Advance() done after %d frames, want %d", chunk, consumed+chunk, total)
			}
			consumed += chunk
			if tr.Countdown() != total-consumed {
				t.Fatalf("chunk %d: Countdown() = %d, want %d", chunk, tr.Countdown(), total-consumed)
			}
		}

		if !tr.Advance(total - consumed) {
			t.Errorf("chunk %d: Advance() at exactly %d frames = false, want true", chunk, total)
		}
		if tr.Countdown() != 0 {
			t.Errorf("chunk %d: Countdown() = %d, want 0", chunk, tr.Countdown())
		}
		if tr.State() != Enabled {
			t.Errorf("chunk %d: State() = %v, want %v", chunk, tr.State(), Enabled)
		}
	}
}

func TestTransition_OvershootClampsToZero(t *testing.T) {
	t.Parallel()

	tr := NewTransition(100)
	tr.Enable()
	tr.Disable()

	if !tr.Advance(1000) {
		t.Error("Advance() past the end = false, want true")
	}
	if tr.Countdown() != 0 {
		t.Errorf("Countdown() = %d, want 0", tr.Countdown())
	}
	if tr.Advance(10) {
		t.Error("Advance() with no transition = true, want false")
	}
}

func TestTransition_States(t *testing.T) {
	t.Parallel()

	tr := NewTransition(FadeLength(44100))
	if tr.State() != Disabled {
		t.Fatalf("initial State() = %v, want %v", tr.State(), Disabled)
	}
	if tr.Disable() {
		t.Error("Disable() on disabled = true, want false")
	}

	tr.Enable()
	if tr.State() != Enabling {
		t.Errorf("State() after Enable = %v, want %v", tr.State(), Enabling)
	}
	if tr.Enable() {
		t.Error("second Enable() = true, want false")
	}

	tr.Advance(tr.Countdown())
	if tr.State() != Enabled {
		t.Errorf("State() after countdown = %v, want %v", tr.State(), Enabled)
	}

	tr.Disable()
	if tr.State() != Disabling || tr.Countdown() != FadeLength(44100) {
		t.Errorf("after Disable: State() = %v Countdown() = %d, want %v %d", tr.State(), tr.Countdown(), Disabling, FadeLength(44100))
	}

	// re-enable mid disable restarts the enable countdown
	tr.Advance(10)
	tr.Enable()
	if tr.Countdown() != FadeLength(44100)+PreRoll {
		t.Errorf("Countdown() after re-enable = %d, want %d", tr.Countdown(), FadeLength(44100)+PreRoll)
	}
}

func TestTransition_SetBypass(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		enabled    bool
		bypass     bool
		crossFaded bool
		want       int
		wantState  State
	}{
		{"bypass with fade", true, true, true, 1000, Disabling},
		{"bypass hard", true, true, false, 0, Disabled},
		{"unbypass with fade", true, false, true, 1000 + PreRoll, Enabling},
		{"unbypass hard", true, false, false, 0, Enabled},
		{"bypass while disabled", false, true, true, 0, Disabled},
	}

	for _, tt := range tests {
		tr := NewTransition(1000)
		if tt.enabled {
			tr.Enable()
			tr.Advance(tr.Countdown())
		}
		tr.SetBypass(tt.bypass, tt.crossFaded)

		if tr.Countdown() != tt.want {
			t.Errorf("%s: Countdown() = %d, want %d", tt.name, tr.Countdown(), tt.want)
		}
		if tr.State() != tt.wantState {
			t.Errorf("%s: State() = %v, want %v", tt.name, tr.State(), tt.wantState)
		}
	}
}

func TestTransition_Ramp(t *testing.T) {
	t.Parallel()

	tr := NewTransition(1000)
	tr.Enable()

	// pre-roll keeps the unprocessed signal at full weight
	if s, e := tr.Ramp(500); s != 1 || e != 1 {
		t.Errorf("Ramp() in pre-roll = (%v, %v), want (1, 1)", s, e)
	}

	tr.Advance(PreRoll + 500)
	if s, e := tr.Ramp(250); s != 0.5 || e != 0.25 {
		t.Errorf("Ramp() while enabling = (%v, %v), want (0.5, 0.25)", s, e)
	}

	tr.Advance(500)
	tr.Disable()
	if s, e := tr.Ramp(250); s != 0 || e != 0.25 {
		t.Errorf("Ramp() while disabling = (%v, %v), want (0, 0.25)", s, e)
	}
	if s, e := tr.Ramp(5000); s != 0 || e != 1 {
		t.Errorf("Ramp() past the end = (%v, %v), want (0, 1)", s, e)
	}
}

func TestTransition_BlockRamp(t *testing.T) {
	t.Parallel()

	tr := NewTransition(1024)
	tr.Enable()

	if s, e := tr.BlockRamp(0, 256); s != 1 || e != 1 {
		t.Errorf("BlockRamp() in pre-roll = (%v, %v), want (1, 1)", s, e)
	}

	// block straddling the end of the pre-roll
	s, e := tr.BlockRamp(PreRoll-128, 256)
	if s != 1 || e != float32(1024-128+1)/1024 {
		t.Errorf("BlockRamp() across pre-roll = (%v, %v), want (1, %v)", s, e, float32(1024-128+1)/1024)
	}

	tr.Advance(tr.Countdown())
	tr.Disable()
	s, e = tr.BlockRamp(256, 256)
	if s != 0.25 || e != float32(511)/1024 {
		t.Errorf("BlockRamp() while disabling = (%v, %v), want (0.25, %v)", s, e, float32(511)/1024)
	}
}
