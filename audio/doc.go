// SPDX-License-Identifier: EPL-2.0

// Package audio provides the PCM plumbing shared by the decoders, the
// effect and the command line tool.
//
// # Source Interface
//
// Everything that produces audio implements Source:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadPCM(dst []int16) (int, error)
//	    Close() error
//	}
//
// Samples are interleaved signed 16-bit PCM, the format the processing
// engines consume. ReadPCM returns the number of int16 values written and
// io.EOF once the stream is drained.
//
// # Conforming Sources
//
// The effect engine only runs at 32, 44.1 and 48 kHz with 2, 6 or 8
// channels. Resampler and ChannelMixer adapt arbitrary inputs:
//
//	res := audio.NewResampler(src, 48000)
//	stereo, err := audio.NewChannelMixer(res, 2)
//
// # Registry
//
// Registry maps file extensions to decoders:
//
//	reg := audio.NewRegistry()
//	reg.Register("wav", wav.Decoder{})
//	dec, err := reg.ForPath("input.wav")
package audio
