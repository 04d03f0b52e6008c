// SPDX-License-Identifier: EPL-2.0

package settings

import (
	"errors"
	"slices"
	"testing"
)

func TestSchema_Lengths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		settings []Setting
		want     map[int8]int
	}{
		{
			name: "empty",
			want: map[int8]int{},
		},
		{
			name:     "single",
			settings: []Setting{{Param: 0}},
			want:     map[int8]int{0: 1},
		},
		{
			name: "scalar then bulk",
			settings: []Setting{
				{Param: 0}, {Param: 1}, {Param: 1, Offset: 1}, {Param: 1, Offset: 2},
			},
			want: map[int8]int{0: 1, 1: 3},
		},
		{
			name: "bulk at the end",
			settings: []Setting{
				{Param: 2}, {Param: 2, Offset: 1}, {Param: 3},
				{Param: 4}, {Param: 4, Offset: 1},
			},
			want: map[int8]int{2: 2, 3: 1, 4: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := Schema{Settings: tt.settings}
			got := s.Lengths()
			if len(got) != len(tt.want) {
				t.Fatalf("Lengths() = %v, want %v", got, tt.want)
			}
			for p, n := range tt.want {
				if got[p] != n {
					t.Errorf("Lengths()[%d] = %d, want %d", p, got[p], n)
				}
			}
		})
	}
}

func newTestCache(t *testing.T, devices ...Device) *Cache {
	t.Helper()

	c := NewCache(2, nil)
	rows := make([]Row, len(devices))
	for i, d := range devices {
		rows[i] = Row{Device: d, Values: []int16{int16(i), int16(i * 10)}}
	}
	if err := c.Replace(rows); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	return c
}

func TestCache_Index(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		devices []Device
		active  Device
		want    int
	}{
		{"empty", nil, Speaker, -1},
		{"exact", []Device{Earpiece, Speaker}, Speaker, 1},
		{"first fallback", []Device{Speaker, Earpiece}, WiredHeadset, 1},
		{"chain order wins over row order", []Device{WiredHeadset, Earpiece, BluetoothSCO}, SCOHeadset, 2},
		{"walks whole chain", []Device{Speaker, Earpiece}, SCOHeadset, 1},
		{"no match uses first row", []Device{A2DPSpeaker, RemoteSubmix}, WiredHeadset, 0},
		{"device without chain", []Device{Earpiece, Speaker}, Device(0x40000), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestCache(t, tt.devices...)
			if got := c.Index(tt.active); got != tt.want {
				t.Errorf("Index(%v) = %d, want %d", tt.active, got, tt.want)
			}
			// deterministic across calls
			if got := c.Index(tt.active); got != tt.want {
				t.Errorf("second Index(%v) = %d, want %d", tt.active, got, tt.want)
			}
		})
	}
}

func TestCache_Set(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, Speaker, WiredHeadset)

	row, err := c.Set(WiredHeadset, 1, []int16{99})
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if row != 1 {
		t.Errorf("Set() row = %d, want 1", row)
	}
	if got, want := c.Row(1), []int16{1, 99}; !slices.Equal(got, want) {
		t.Errorf("Row(1) = %v, want %v", got, want)
	}

	if _, err := c.Set(Earpiece, 0, []int16{1}); !errors.Is(err, ErrUnknownDevice) {
		t.Errorf("Set(unknown) error = %v, want %v", err, ErrUnknownDevice)
	}
	if _, err := c.Set(Speaker, 1, []int16{1, 2}); !errors.Is(err, ErrIndexRange) {
		t.Errorf("Set(overflow) error = %v, want %v", err, ErrIndexRange)
	}
	if got, want := c.Row(0), []int16{0, 0}; !slices.Equal(got, want) {
		t.Errorf("Row(0) after failed Set = %v, want %v", got, want)
	}
}

func TestCache_ReplaceRejectsBadWidth(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, Speaker)
	err := c.Replace([]Row{
		{Device: Earpiece, Values: []int16{1, 2}},
		{Device: WiredHeadset, Values: []int16{1}},
	})
	if !errors.Is(err, ErrRowWidth) {
		t.Fatalf("Replace() error = %v, want %v", err, ErrRowWidth)
	}
	if c.Len() != 1 || c.Device(0) != Speaker {
		t.Errorf("cache changed after failed Replace: len %d", c.Len())
	}
}
