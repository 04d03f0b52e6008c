// SPDX-License-Identifier: EPL-2.0

package engine

// Decoder output parameters, set through Decoder.SetOutputParam.
type DecoderParam int

const (
	OutMode DecoderParam = iota
	OutLFE
	OutStereoMode
	OutCompMode
)

func (p DecoderParam) String() string {
	switch p {
	case OutMode:
		return "outmode"
	case OutLFE:
		return "lfe"
	case OutStereoMode:
		return "stereomode"
	case OutCompMode:
		return "compmode"
	}
	return "unknown"
}

// Stream sizing constants of the decode engine.
const (
	MaxBlocks      = 6
	MaxPCMChannels = 8
	BytesPerSample = 2
	MaxFrameWords  = 2048
)

// MaxFrameBytes is the PCM size of one maximal timeslice.
const MaxFrameBytes = BlockSize * MaxBlocks * MaxPCMChannels * BytesPerSample

// Layout is the channel metadata of the timeslice last added.
type Layout struct {
	// IndependentPresent is false when no independent substream has been
	// seen, Acmod and LFE are meaningless then.
	IndependentPresent bool
	Acmod              int
	LFE                bool
	DependentCount     int
	ChannelMap         uint16
}

// Timeslice describes the PCM written by Decoder.Decode.
type Timeslice struct {
	Blocks     int
	SampleRate int
}

// Decoder is the frame decode engine driven by the decode loop.
//
// AddBytes feeds compressed bytes and reports how many were taken and
// whether a whole timeslice is now buffered. Decode then renders that
// timeslice into pcm using the channel count from SetOutputChannels.
type Decoder interface {
	Open() error
	Close() error

	AddBytes(p []byte) (consumed int, complete bool, err error)
	Layout() Layout

	SetOutputChannels(n int)
	SetOutputParam(p DecoderParam, value int) error

	Decode(pcm []int16) (Timeslice, error)

	// QuitOnError reports whether AddBytes errors abort the timeslice.
	QuitOnError() bool
}
