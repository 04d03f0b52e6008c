// SPDX-License-Identifier: EPL-2.0

package blockbuf

import (
	"errors"
	"slices"
	"testing"

	"github.com/ik5/ddpfx/internal/audiotest"
)

func newKernel(inCh, outCh int) *audiotest.Kernel {
	k := audiotest.NewKernel(2)
	k.OutChannels = outCh
	k.Configure(inCh)
	return k
}

func signal(frames, channels int) []int16 {
	return audiotest.Interleave(frames, channels, func(f, c int) int16 {
		return int16((f*channels+c)%32000 + 1)
	})
}

// delayed is what a pass-through kernel behind the adapter must produce:
// one silent block, then the input with the first outCh channels kept.
func delayed(in []int16, frames, inCh, outCh int) []int16 {
	out := make([]int16, frames*outCh)
	for f := block; f < frames; f++ {
		for c := range outCh {
			out[f*outCh+c] = in[(f-block)*inCh+c]
		}
	}
	return out
}

type setup struct {
	name     string
	inPlace  bool
	strategy Strategy
}

var setups = []setup{
	{"separate", false, InternalBuffer},
	{"in-place internal buffer", true, InternalBuffer},
	{"in-place shift", true, Shift},
}

func run(t *testing.T, s setup, in []int16, chunks []int, inCh, outCh int) []int16 {
	t.Helper()

	a := New(inCh, outCh, WithStrategy(s.strategy))
	k := newKernel(inCh, outCh)

	var got []int16
	pos := 0
	for _, n := range chunks {
		src := slices.Clone(in[pos*inCh : (pos+n)*inCh])
		dst := src
		if !s.inPlace {
			dst = make([]int16, n*outCh)
		}
		if err := a.Process(k, src, dst, n); err != nil {
			t.Fatalf("Process(%d) error = %v", n, err)
		}
		got = append(got, dst[:n*outCh]...)
		pos += n
	}
	return got
}

func TestAdapter_ChunkingInvariance(t *testing.T) {
	t.Parallel()

	const total = 3000
	in := signal(total, 2)
	want := delayed(in, total, 2, 2)

	chunkings := map[string][]int{
		"one call":        {total},
		"blocks":          {256, 256, 256, 256, 256, 256, 256, 256, 256, 256, 256, 184},
		"small":           repeat(100, 30),
		"odd":             {1, 255, 257, 511, 513, 7, 1000, 456},
		"single frames":   repeat(1, total),
		"straddle":        {200, 100, 600, 900, 1, 1199},
		"exact two block": {512, 512, 512, 512, 512, 440},
	}

	for _, s := range setups {
		for name, chunks := range chunkings {
			got := run(t, s, in, chunks, 2, 2)
			if len(got) != len(want) {
				t.Fatalf("%s/%s: output length = %d, want %d", s.name, name, len(got), len(want))
			}
			if i := firstDiff(got, want); i >= 0 {
				t.Errorf("%s/%s: sample %d = %d, want %d", s.name, name, i, got[i], want[i])
			}
		}
	}
}

func TestAdapter_FirstBlockSilent(t *testing.T) {
	t.Parallel()

	in := audiotest.Interleave(600, 2, func(int, int) int16 { return 1000 })
	for _, s := range setups {
		got := run(t, s, in, []int{10, 50, 540}, 2, 2)
		for i, v := range got[:block*2] {
			if v != 0 {
				t.Fatalf("%s: sample %d = %d, want 0", s.name, i, v)
			}
		}
		if got[block*2] != 1000 {
			t.Errorf("%s: first processed sample = %d, want 1000", s.name, got[block*2])
		}
	}
}

func TestAdapter_Downmix(t *testing.T) {
	t.Parallel()

	const total = 1500
	in := signal(total, 6)
	want := delayed(in, total, 6, 2)

	for _, s := range setups {
		got := run(t, s, in, []int{300, 700, 12, 488}, 6, 2)
		if i := firstDiff(got, want); i >= 0 {
			t.Errorf("%s: sample %d = %d, want %d", s.name, i, got[i], want[i])
		}
	}
}

func TestAdapter_InPlaceWidening(t *testing.T) {
	t.Parallel()

	a := New(2, 6)
	buf := make([]int16, 512*6)
	err := a.Process(newKernel(2, 6), buf, buf, 256)
	if !errors.Is(err, ErrChannelMismatch) {
		t.Errorf("Process() error = %v, want %v", err, ErrChannelMismatch)
	}
}

func TestAdapter_ShortBuffer(t *testing.T) {
	t.Parallel()

	a := New(2, 2)
	err := a.Process(newKernel(2, 2), make([]int16, 10), make([]int16, 100), 50)
	if !errors.Is(err, ErrShortBuffer) {
		t.Errorf("Process() error = %v, want %v", err, ErrShortBuffer)
	}
}

func TestAdapter_ScratchNeverShrinks(t *testing.T) {
	t.Parallel()

	a := New(2, 2, WithScratch(128))
	k := newKernel(2, 2)

	for _, n := range []int{100, 2000, 300} {
		buf := make([]int16, n*2)
		if err := a.Process(k, buf, buf, n); err != nil {
			t.Fatalf("Process(%d) error = %v", n, err)
		}
	}
	if got := a.ScratchFrames(); got != 2000 {
		t.Errorf("ScratchFrames() = %d, want 2000", got)
	}
}

func TestAdapter_Reset(t *testing.T) {
	t.Parallel()

	a := New(2, 2)
	k := newKernel(2, 2)
	in := signal(300, 2)
	out := make([]int16, len(in))
	if err := a.Process(k, in, out, 300); err != nil {
		t.Fatal(err)
	}
	if a.Staged() != 44 {
		t.Errorf("Staged() = %d, want 44", a.Staged())
	}

	a.Reset()
	if a.Staged() != 0 {
		t.Errorf("Staged() after Reset = %d, want 0", a.Staged())
	}
	if err := a.Process(k, in, out, 300); err != nil {
		t.Fatal(err)
	}
	if out[0] != 0 || out[block*2-1] != 0 {
		t.Error("first block after Reset is not silent")
	}
}

func TestAdapter_KernelErrorPropagates(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	k := newKernel(2, 2)
	k.ProcessErr = boom

	a := New(2, 2)
	in := signal(600, 2)
	if err := a.Process(k, in, make([]int16, len(in)), 600); !errors.Is(err, boom) {
		t.Errorf("Process() error = %v, want %v", err, boom)
	}
}

func TestProcessBlocks_Alignment(t *testing.T) {
	t.Parallel()

	k := newKernel(2, 2)
	if err := ProcessBlocks(k, make([]int16, 600), 2, make([]int16, 600), 2, 300); !errors.Is(err, ErrBlockAlign) {
		t.Errorf("ProcessBlocks(300) error = %v, want %v", err, ErrBlockAlign)
	}

	in := signal(512, 2)
	out := make([]int16, len(in))
	if err := ProcessBlocks(k, in, 2, out, 2, 512); err != nil {
		t.Fatalf("ProcessBlocks(512) error = %v", err)
	}
	if !slices.Equal(in, out) {
		t.Error("ProcessBlocks() output differs from pass-through input")
	}
	if k.Blocks != 2 {
		t.Errorf("kernel blocks = %d, want 2", k.Blocks)
	}
}

func TestModeOf(t *testing.T) {
	t.Parallel()

	buf := make([]int16, 8)
	if ModeOf(buf, buf) != InPlace {
		t.Error("ModeOf(buf, buf) != InPlace")
	}
	if ModeOf(buf, buf[2:]) != Separate {
		t.Error("ModeOf(buf, buf[2:]) != Separate")
	}
	if ModeOf(nil, buf) != Separate {
		t.Error("ModeOf(nil, buf) != Separate")
	}
}

func BenchmarkAdapter_Process(b *testing.B) {
	for _, s := range setups {
		b.Run(s.name, func(b *testing.B) {
			a := New(2, 2, WithStrategy(s.strategy))
			k := newKernel(2, 2)
			in := signal(1000, 2)
			out := make([]int16, len(in))
			b.ResetTimer()
			for range b.N {
				dst := out
				if s.inPlace {
					dst = in
				}
				_ = a.Process(k, in, dst, 1000)
			}
		})
	}
}

func repeat(n, times int) []int {
	out := make([]int, times)
	for i := range out {
		out[i] = n
	}
	return out
}

func firstDiff(a, b []int16) int {
	for i := range min(len(a), len(b)) {
		if a[i] != b[i] {
			return i
		}
	}
	if len(a) != len(b) {
		return min(len(a), len(b))
	}
	return -1
}
