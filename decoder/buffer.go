// SPDX-License-Identifier: EPL-2.0

package decoder

import (
	"encoding/binary"
	"fmt"

	"github.com/ik5/ddpfx/engine"
)

const (
	// NumOutputBuffers is the size of the host's output buffer pool.
	NumOutputBuffers = 4
	// OutputBufferSize is the capacity, in bytes, of one output buffer.
	OutputBufferSize = engine.MaxFrameBytes * 3
	// InputBufferSize holds two maximal compressed frames.
	InputBufferSize = 2 * engine.MaxFrameWords * engine.BytesPerSample
)

// Buffer is a host buffer. For input, Data[Offset:Offset+Length] is the
// compressed data not consumed yet. For output, it is the PCM written so
// far as interleaved little endian 16 bit samples.
type Buffer struct {
	Data   []byte
	Offset int
	Length int

	// Timestamp is in microseconds. On output it is the presentation time
	// of the first sample.
	Timestamp int64
	// SyncTime is the coarser output time used for downstream sync:
	// the input timestamp plus the decoded time since it last changed.
	SyncTime int64

	EOS bool
}

// Free returns the unused capacity behind the data.
func (b *Buffer) Free() int { return len(b.Data) - b.Offset - b.Length }

// PCM decodes the samples of an output buffer.
func (b *Buffer) PCM() []int16 {
	p := b.Data[b.Offset : b.Offset+b.Length]
	s := make([]int16, len(p)/2)
	for i := range s {
		s[i] = int16(binary.LittleEndian.Uint16(p[2*i:]))
	}
	return s
}

func (b *Buffer) appendPCM(s []int16) {
	p := b.Data[b.Offset+b.Length:]
	for i, v := range s {
		binary.LittleEndian.PutUint16(p[2*i:], uint16(v))
	}
	b.Length += 2 * len(s)
}

// Format is the PCM layout of the output port.
type Format struct {
	SampleRate int
	Channels   int
}

func (f Format) String() string {
	return fmt.Sprintf("%d Hz, %d ch", f.SampleRate, f.Channels)
}

// HostQueue is the host side of a Loop. NextInput and NextOutput peek at
// the head of their queue; ReturnInput and ReturnOutput remove the head
// and give it back to the host. OutputsQueued is the number of output
// buffers the host has handed over and not got back yet.
type HostQueue interface {
	NextInput() (*Buffer, bool)
	NextOutput() (*Buffer, bool)
	OutputsQueued() int
	ReturnInput(*Buffer)
	ReturnOutput(*Buffer)
	NotifyFormatChanged(Format)
	NotifyError(error)
}

// PortState tracks an output port renegotiation.
type PortState int

const (
	PortNone PortState = iota
	PortAwaitingDisabled
	PortAwaitingEnabled
)

func (s PortState) String() string {
	switch s {
	case PortNone:
		return "none"
	case PortAwaitingDisabled:
		return "awaiting-disabled"
	case PortAwaitingEnabled:
		return "awaiting-enabled"
	}
	return fmt.Sprintf("port-state(%d)", int(s))
}
