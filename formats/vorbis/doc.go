// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis files through
// github.com/jfreymuth/oggvorbis. The float output of the decoder is
// converted to 16-bit PCM with clamping.
//
//	src, err := vorbis.Decoder{}.Decode(file)
package vorbis
