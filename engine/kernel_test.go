// SPDX-License-Identifier: EPL-2.0

package engine_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/ik5/ddpfx/engine"
	"github.com/ik5/ddpfx/internal/audiotest"
)

func TestProcessLoop(t *testing.T) {
	t.Parallel()

	k := audiotest.NewKernel(2)
	k.Configure(2)

	in := audiotest.Interleave(2*engine.BlockSize, 2, func(f, c int) int16 { return int16(2*f + c) })
	out := make([]int16, len(in))

	if err := engine.ProcessLoop(k, in, 2, out, 2, 2*engine.BlockSize); err != nil {
		t.Fatalf("ProcessLoop() error = %v", err)
	}
	if !slices.Equal(out, in) {
		t.Error("ProcessLoop() output differs from the pass-through input")
	}
	if k.Blocks != 2 {
		t.Errorf("ProcessLoop() ran %d blocks, want 2", k.Blocks)
	}
}

func TestProcessLoop_InPlace(t *testing.T) {
	t.Parallel()

	k := audiotest.NewKernel(2)
	k.Configure(6)

	buf := audiotest.Interleave(engine.BlockSize, 6, func(f, c int) int16 { return int16(10*f + c) })
	if err := engine.ProcessLoop(k, buf, 6, buf, 2, engine.BlockSize); err != nil {
		t.Fatalf("ProcessLoop() error = %v", err)
	}

	want := audiotest.Interleave(engine.BlockSize, 2, func(f, c int) int16 { return int16(10*f + c) })
	if !slices.Equal(buf[:len(want)], want) {
		t.Error("ProcessLoop() in place did not fold to the front pair")
	}
}

func TestProcessLoop_Errors(t *testing.T) {
	t.Parallel()

	errDSP := errors.New("dsp fault")
	failing := audiotest.NewKernel(2)
	failing.Configure(2)
	failing.ProcessErr = errDSP

	ok := audiotest.NewKernel(2)
	ok.Configure(2)

	block := make([]int16, 2*engine.BlockSize)

	tests := []struct {
		name   string
		k      engine.Kernel
		in     []int16
		frames int
		want   error
	}{
		{"unaligned", ok, block, engine.BlockSize - 1, engine.ErrBlockAlign},
		{"short", ok, block[:10], engine.BlockSize, engine.ErrBufferSize},
		{"kernel", failing, block, engine.BlockSize, errDSP},
	}

	for _, tt := range tests {
		out := make([]int16, 2*engine.BlockSize)
		if err := engine.ProcessLoop(tt.k, tt.in, 2, out, 2, tt.frames); !errors.Is(err, tt.want) {
			t.Errorf("%s: ProcessLoop() error = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  engine.Error
		want string
	}{
		{engine.IncompleteFrame, "incomplete frame"},
		{engine.InvalidHeader, "invalid frame header"},
		{engine.Success, "no error"},
		{engine.Error(99), "decoder error 99"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error(%d).Error() = %q, want %q", int(tt.err), got, tt.want)
		}
	}

	if int(engine.IncompleteFrame) != 60 {
		t.Errorf("IncompleteFrame = %d, want 60", int(engine.IncompleteFrame))
	}
	if !errors.Is(error(engine.InvalidFrame), engine.InvalidFrame) {
		t.Error("errors.Is(InvalidFrame, InvalidFrame) = false")
	}
}
