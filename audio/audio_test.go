// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/ik5/ddpfx/internal/audiotest"
)

type mockDecoder struct {
	name string
}

func (d *mockDecoder) Decode(io.Reader) (Source, error) {
	return audiotest.NewSilentSource(44100, 2, 100), nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	decoder := &mockDecoder{name: "wav"}
	registry.Register("wav", decoder)

	got, ok := registry.Get("wav")
	if !ok {
		t.Fatal("Registry.Get() failed to retrieve registered decoder")
	}
	if got != decoder {
		t.Error("Registry.Get() returned different decoder instance")
	}
}

func TestRegistry_CaseInsensitive(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register("FLAC", &mockDecoder{name: "flac"})

	if _, ok := registry.Get("flac"); !ok {
		t.Error("Registry.Get(\"flac\") ok = false, want true")
	}
}

func TestRegistry_ForPath(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	wavDecoder := &mockDecoder{name: "wav"}
	registry.Register("wav", wavDecoder)

	tests := []struct {
		path    string
		want    Decoder
		wantErr error
	}{
		{"music/track.wav", wavDecoder, nil},
		{"TRACK.WAV", wavDecoder, nil},
		{"track.mp3", nil, ErrUnknownFormat},
		{"noext", nil, ErrUnknownFormat},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			got, err := registry.ForPath(tt.path)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ForPath(%q) error = %v, want %v", tt.path, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ForPath(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestRegistry_Formats(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	for _, f := range []string{"ogg", "wav", "aiff"} {
		registry.Register(f, &mockDecoder{name: f})
	}

	got := registry.Formats()
	want := []string{"aiff", "ogg", "wav"}
	if len(got) != len(want) {
		t.Fatalf("Formats() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Formats()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	var wg sync.WaitGroup

	for i := range 10 {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			registry.Register(string(rune('a'+i)), &mockDecoder{})
		}(i)
		go func(i int) {
			defer wg.Done()
			registry.Get(string(rune('a' + i)))
		}(i)
	}

	wg.Wait()

	if n := len(registry.Formats()); n != 10 {
		t.Errorf("len(Formats()) = %d, want 10", n)
	}
}

func TestAsReadSeeker(t *testing.T) {
	t.Parallel()

	rs, err := AsReadSeeker(io.LimitReader(&repeatReader{b: 'x'}, 10))
	if err != nil {
		t.Fatalf("AsReadSeeker() error = %v", err)
	}

	pos, err := rs.Seek(-3, io.SeekEnd)
	if err != nil || pos != 7 {
		t.Fatalf("Seek(-3, SeekEnd) = %d, %v, want 7, nil", pos, err)
	}

	rest, err := io.ReadAll(rs)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(rest) != "xxx" {
		t.Errorf("ReadAll() = %q, want %q", rest, "xxx")
	}

	if _, err := rs.Seek(-1, io.SeekStart); !errors.Is(err, ErrInvalidSeek) {
		t.Errorf("Seek(-1) error = %v, want ErrInvalidSeek", err)
	}
}

type repeatReader struct{ b byte }

func (r *repeatReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = r.b
	}
	return len(p), nil
}

func BenchmarkRegistry_Get(b *testing.B) {
	registry := NewRegistry()
	registry.Register("wav", &mockDecoder{})

	b.ReportAllocs()
	for range b.N {
		registry.Get("wav")
	}
}
