// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"slices"
	"testing"

	"github.com/ik5/ddpfx/audio"
)

// mockMP3Reader plays back raw PCM bytes, at most chunk bytes per Read
// when chunk is set.
type mockMP3Reader struct {
	sampleRate int
	data       []byte
	chunk      int
	err        error
}

func (m *mockMP3Reader) SampleRate() int { return m.sampleRate }

func (m *mockMP3Reader) Read(buf []byte) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if len(m.data) == 0 {
		return 0, io.EOF
	}

	if m.chunk > 0 {
		buf = buf[:min(len(buf), m.chunk)]
	}
	n := copy(buf, m.data)
	m.data = m.data[n:]
	if len(m.data) == 0 {
		return n, io.EOF
	}
	return n, nil
}

func pcmBytes(samples []int16) []byte {
	b := make([]byte, 2*len(samples))
	for i, v := range samples {
		binary.LittleEndian.PutUint16(b[2*i:], uint16(v))
	}
	return b
}

func readAll(t *testing.T, src audio.Source, bufSize int) []int16 {
	t.Helper()

	var out []int16
	buf := make([]int16, bufSize)
	for {
		n, err := src.ReadPCM(buf)
		if n%src.Channels() != 0 {
			t.Fatalf("ReadPCM() n = %d, want whole frames", n)
		}
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("ReadPCM() error = %v", err)
		}
	}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := (Decoder{}).Decode(bytes.NewReader([]byte("This is not MP3 data")))
	if !errors.Is(err, ErrNotMP3File) {
		t.Errorf("Decode() error = %v, want ErrNotMP3File", err)
	}
}

func TestSource_ReadPCM(t *testing.T) {
	t.Parallel()

	samples := []int16{0, 1000, -1000, 32767, -32768, 7, 8, -8}

	tests := []struct {
		name    string
		chunk   int
		bufSize int
	}{
		{"whole reads", 0, 4},
		{"split frames", 3, 4},
		{"single bytes", 1, 8},
		{"odd buffer", 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src, err := newSource(&mockMP3Reader{sampleRate: 44100, data: pcmBytes(samples), chunk: tt.chunk})
			if err != nil {
				t.Fatalf("newSource() error = %v", err)
			}

			if got := readAll(t, src, tt.bufSize); !slices.Equal(got, samples) {
				t.Errorf("ReadPCM() = %v, want %v", got, samples)
			}
		})
	}
}

func TestSource_ReadPCM_DropsPartialTail(t *testing.T) {
	t.Parallel()

	data := append(pcmBytes([]int16{5, -5}), 0x01, 0x02)
	src, _ := newSource(&mockMP3Reader{sampleRate: 48000, data: data})

	if got := readAll(t, src, 8); !slices.Equal(got, []int16{5, -5}) {
		t.Errorf("ReadPCM() = %v, want [5 -5]", got)
	}
}

func TestSource_ReadPCM_Errors(t *testing.T) {
	t.Parallel()

	boom := errors.New("bad huffman table")
	src, _ := newSource(&mockMP3Reader{sampleRate: 48000, err: boom})

	_, err := src.ReadPCM(make([]int16, 4))
	if !errors.Is(err, ErrDecode) || !errors.Is(err, boom) {
		t.Errorf("ReadPCM() error = %v, want ErrDecode wrapping %v", err, boom)
	}

	if _, err := src.ReadPCM(make([]int16, 1)); !errors.Is(err, audio.ErrInvalidDstSize) {
		t.Errorf("ReadPCM(1 sample) error = %v, want ErrInvalidDstSize", err)
	}
}

func TestSource_Metadata(t *testing.T) {
	t.Parallel()

	src, err := newSource(&mockMP3Reader{sampleRate: 32000})
	if err != nil {
		t.Fatalf("newSource() error = %v", err)
	}
	if src.SampleRate() != 32000 || src.Channels() != 2 {
		t.Errorf("format = %d Hz / %d ch, want 32000 Hz / 2 ch", src.SampleRate(), src.Channels())
	}
	if err := src.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	if _, err := newSource(&mockMP3Reader{}); !errors.Is(err, ErrInvalidSampleRate) {
		t.Errorf("newSource(0 Hz) error = %v, want ErrInvalidSampleRate", err)
	}
}
