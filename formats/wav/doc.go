// SPDX-License-Identifier: EPL-2.0

// Package wav provides WAV decoding and encoding on top of
// github.com/go-audio/wav.
//
// Only 16-bit PCM is accepted, at any sample rate and channel count.
//
//	src, err := wav.Decoder{}.Decode(file)
//	buf := make([]int16, 4096)
//	n, err := src.ReadPCM(buf)
//
// Writer is the streaming counterpart. It implements audio.Sink and is used
// both for processed output and for diagnostic PCM dumps:
//
//	w, err := wav.NewWriter(file, 48000, 2)
//	err = w.WritePCM(samples)
//	err = w.Close()
package wav
