// SPDX-License-Identifier: EPL-2.0

package engine_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/ik5/ddpfx/engine"
	"github.com/ik5/ddpfx/internal/audiotest"
)

func TestOpen(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		major int16
		want  []string
	}{
		{"init endpoint", 1, []string{"open", "init endp=3", "start", "input 48000 256 6"}},
		{"live endpoint", 2, []string{"open", "start", "set endp[0]=3", "input 48000 256 6"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			k := audiotest.NewKernel(tt.major)
			inst, err := engine.Open(k, 3, 48000, 6, 2)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}

			if !slices.Equal(k.Calls, tt.want) {
				t.Errorf("Open() calls = %q, want %q", k.Calls, tt.want)
			}
			if inst.SampleRate != 48000 || inst.InChannels != 6 || inst.OutChannels != 2 {
				t.Errorf("Open() = %d Hz %d->%d, want 48000 Hz 6->2", inst.SampleRate, inst.InChannels, inst.OutChannels)
			}
			if got := k.Param(engine.ParamEndpoint); !slices.Equal(got, []int16{3}) {
				t.Errorf("endpoint = %v, want [3]", got)
			}
		})
	}
}

func TestOpen_UnsupportedLayout(t *testing.T) {
	t.Parallel()

	k := audiotest.NewKernel(2)
	if _, err := engine.Open(k, 0, 48000, 4, 2); !errors.Is(err, engine.ErrUnsupportedLayout) {
		t.Fatalf("Open() error = %v, want %v", err, engine.ErrUnsupportedLayout)
	}
	if !k.Closed() {
		t.Error("Open() left the kernel open after a failed start")
	}
}

func TestOpen_KernelFailure(t *testing.T) {
	t.Parallel()

	errLicense := errors.New("license check failed")
	k := audiotest.NewKernel(2)
	k.OpenErr = errLicense

	if _, err := engine.Open(k, 0, 48000, 2, 2); !errors.Is(err, errLicense) {
		t.Fatalf("Open() error = %v, want %v", err, errLicense)
	}
	if !slices.Equal(k.Calls, []string{"open"}) {
		t.Errorf("Open() calls = %q, want only open", k.Calls)
	}
}

func TestChannelMap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		channels int
		want     []engine.Channel
		ok       bool
	}{
		{2, []engine.Channel{engine.ChanL, engine.ChanR}, true},
		{6, []engine.Channel{engine.ChanL, engine.ChanR, engine.ChanC, engine.ChanLFE, engine.ChanLs, engine.ChanRs}, true},
		{8, []engine.Channel{engine.ChanL, engine.ChanR, engine.ChanC, engine.ChanLFE, engine.ChanLs, engine.ChanRs, engine.ChanLb, engine.ChanRb}, true},
		{1, nil, false},
		{4, nil, false},
	}

	for _, tt := range tests {
		got, ok := engine.ChannelMap(tt.channels)
		if ok != tt.ok || !slices.Equal(got, tt.want) {
			t.Errorf("ChannelMap(%d) = %v, %v, want %v, %v", tt.channels, got, ok, tt.want, tt.ok)
		}
	}
}
