// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/mewkiz/flac/frame"
)

type mockStream struct {
	frames []*frame.Frame
	next   int
	closed bool
}

func (m *mockStream) ParseNext() (*frame.Frame, error) {
	if m.next >= len(m.frames) {
		return nil, io.EOF
	}
	f := m.frames[m.next]
	m.next++
	return f, nil
}

func (m *mockStream) Close() error {
	m.closed = true
	return nil
}

func newFrame(channels ...[]int32) *frame.Frame {
	f := &frame.Frame{}
	for _, samples := range channels {
		f.Subframes = append(f.Subframes, &frame.Subframe{Samples: samples, NSamples: len(samples)})
	}
	return f
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := (Decoder{}).Decode(bytes.NewReader([]byte("fLaX nope")))
	if !errors.Is(err, ErrNotFlacFile) {
		t.Errorf("Decode() error = %v, want ErrNotFlacFile", err)
	}
}

func TestSource_ReadPCM_Interleaves(t *testing.T) {
	t.Parallel()

	stream := &mockStream{frames: []*frame.Frame{
		newFrame([]int32{1, 2, 3}, []int32{-1, -2, -3}),
		newFrame([]int32{4}, []int32{-4}),
	}}
	src := &source{stream: stream, sampleRate: 44100, channels: 2, bitDepth: 16}

	buf := make([]int16, 4)
	var got []int16
	for {
		n, err := src.ReadPCM(buf)
		got = append(got, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadPCM() error = %v", err)
		}
	}

	want := []int16{1, -1, 2, -2, 3, -3, 4, -4}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestSource_BitDepthScaling(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bitDepth int
		in       int32
		want     int16
	}{
		{name: "24-bit", bitDepth: 24, in: 0x7FFF00, want: 0x7FFF},
		{name: "8-bit", bitDepth: 8, in: -128, want: -32768},
		{name: "16-bit", bitDepth: 16, in: 1234, want: 1234},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stream := &mockStream{frames: []*frame.Frame{newFrame([]int32{tt.in})}}
			src := &source{stream: stream, channels: 1, bitDepth: tt.bitDepth}

			buf := make([]int16, 1)
			if _, err := src.ReadPCM(buf); err != nil {
				t.Fatalf("ReadPCM() error = %v", err)
			}
			if buf[0] != tt.want {
				t.Errorf("sample = %d, want %d", buf[0], tt.want)
			}
		})
	}
}

func TestSource_ChannelMismatch(t *testing.T) {
	t.Parallel()

	stream := &mockStream{frames: []*frame.Frame{newFrame([]int32{1})}}
	src := &source{stream: stream, channels: 2, bitDepth: 16}

	if _, err := src.ReadPCM(make([]int16, 2)); !errors.Is(err, ErrChannelMismatch) {
		t.Errorf("ReadPCM() error = %v, want ErrChannelMismatch", err)
	}
}

func TestSource_Close(t *testing.T) {
	t.Parallel()

	stream := &mockStream{}
	src := &source{stream: stream, channels: 1, bitDepth: 16}
	if err := src.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !stream.closed {
		t.Error("Close() did not close the stream")
	}
}
