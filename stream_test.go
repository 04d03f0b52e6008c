// SPDX-License-Identifier: EPL-2.0

package ddpfx

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/ik5/ddpfx/audio"
	"github.com/ik5/ddpfx/effect"
	"github.com/ik5/ddpfx/engine"
	"github.com/ik5/ddpfx/internal/audiotest"
)

type sink struct {
	samples []int16
	err     error
}

func (s *sink) WritePCM(p []int16) error {
	if s.err != nil {
		return s.err
	}
	s.samples = append(s.samples, p...)
	return nil
}

func newEffect(t *testing.T, src audio.Source) (*effect.Effect, audio.Source) {
	t.Helper()

	e, err := effect.New(func() engine.Kernel { return engine.NewGainKernel(2) })
	if err != nil {
		t.Fatalf("effect.New() error = %v", err)
	}
	t.Cleanup(func() { e.Close() })

	src, cfg, err := Conform(src)
	if err != nil {
		t.Fatalf("Conform() error = %v", err)
	}
	if err := e.SetConfig(cfg); err != nil {
		t.Fatalf("SetConfig() error = %v", err)
	}
	return e, src
}

func TestStream_DisabledIsDry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		channels int
		want     func(frame, channel int) int16
	}{
		{"stereo", 2, func(f, c int) int16 { return int16(2*f + c) }},
		{"5.1 front pair", 6, func(f, c int) int16 { return int16(6*f + c) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e, src := newEffect(t, audiotest.NewRampSource(48000, tt.channels, 5000))
			out := &sink{}

			frames, err := Stream(context.Background(), e, src, out, 1024)
			if err != nil {
				t.Fatalf("Stream() error = %v", err)
			}
			if frames != 5000 {
				t.Errorf("Stream() frames = %d, want 5000", frames)
			}

			want := audiotest.Interleave(5000, 2, tt.want)
			if !slices.Equal(out.samples, want) {
				t.Errorf("Stream() output differs from the dry input")
			}
		})
	}
}

func TestStream_RaggedReads(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		chunk int
		block int
	}{
		{"three samples", 3, 256},
		{"one sample", 1, 100},
		{"odd run over a block", 1001, 256},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			want := audiotest.Interleave(600, 2, func(f, c int) int16 { return int16(1000*c + f) })
			e, src := newEffect(t, audiotest.NewChunkedSource(48000, 2, slices.Clone(want), tt.chunk))
			out := &sink{}

			frames, err := Stream(context.Background(), e, src, out, tt.block)
			if err != nil {
				t.Fatalf("Stream() error = %v", err)
			}
			if frames != 600 {
				t.Errorf("Stream() frames = %d, want 600", frames)
			}
			if !slices.Equal(out.samples, want) {
				t.Errorf("Stream() output differs from the dry input")
			}
		})
	}
}

func TestStream_Enabled(t *testing.T) {
	t.Parallel()

	e, src := newEffect(t, audiotest.NewSineSource(44100, 2, 10000, 440))
	e.Enable()
	out := &sink{}

	frames, err := Stream(context.Background(), e, src, out, 512)
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	if frames != 10000 || len(out.samples) != 20000 {
		t.Errorf("Stream() = %d frames, %d samples, want 10000 and 20000", frames, len(out.samples))
	}
	if !e.Enabled() {
		t.Error("effect disabled after Stream()")
	}
}

func TestStream_Errors(t *testing.T) {
	t.Parallel()

	errSink := errors.New("disk full")

	tests := []struct {
		name    string
		src     audio.Source
		sinkErr error
		block   int
		want    error
	}{
		{"sink", audiotest.NewSilentSource(48000, 2, 5000), errSink, 256, errSink},
		{"block size", audiotest.NewSilentSource(48000, 2, 10), nil, 0, ErrInvalidBufferSize},
		{"channels", audiotest.NewSilentSource(48000, 6, 10), nil, 256, ErrInvalidSource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// the effect is configured for stereo, whatever the source
			e, _ := newEffect(t, audiotest.NewSilentSource(48000, 2, 1))
			_, err := Stream(context.Background(), e, tt.src, &sink{err: tt.sinkErr}, tt.block)
			if !errors.Is(err, tt.want) {
				t.Errorf("Stream() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestStream_Canceled(t *testing.T) {
	t.Parallel()

	e, src := newEffect(t, audiotest.NewSilentSource(48000, 2, 48000*60))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// a canceled context either stops the reader or loses the race to a
	// short stream, never anything else
	if _, err := Stream(ctx, e, src, &sink{}, 256); err != nil && !errors.Is(err, context.Canceled) {
		t.Errorf("Stream() error = %v, want %v", err, context.Canceled)
	}
}
