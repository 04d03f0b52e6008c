// SPDX-License-Identifier: EPL-2.0

// Package ddpfx runs audio through a block-based multichannel
// post-processing effect.
//
// The root package holds the glue between file decoding and the effect.
// The pieces live in subpackages:
//   - audio: the PCM Source abstraction, decoder Registry, Resampler and
//     ChannelMixer
//   - formats/{wav,mp3,vorbis,aiff,flac}: file decoders, plus wav.Writer
//   - engine: the kernel and decode engine contracts, and a reference
//     GainKernel
//   - routing: channel routing and DRC policy per output endpoint
//   - blockbuf: adapts arbitrary buffer sizes to the kernel block size
//   - crossfade: enable, disable and bypass transitions
//   - settings: per-device tuning cache
//   - effect: the effect itself and its command protocol
//   - decoder: the decode loop feeding a host's buffer queues
//
// # Quick Start
//
// Decode a file, fit it to the effect and process it into a WAV:
//
//	src, _ := wav.Decoder{}.Decode(in)
//	src, cfg, _ := ddpfx.Conform(src)
//
//	e, _ := effect.New(func() engine.Kernel { return engine.NewGainKernel(2) })
//	e.SetConfig(cfg)
//	e.Enable()
//
//	w, _ := wav.NewWriter(out, cfg.Output.SampleRate, cfg.Output.Channels)
//	frames, err := ddpfx.Stream(ctx, e, src, w, ddpfx.DefaultBlockFrames)
//	w.Close()
//
// # Conforming Sources
//
// The effect processes 48, 44.1 and 32 kHz input with 2, 6 or 8 channels
// and always writes stereo. Conform resamples anything else to 48 kHz with
// cubic interpolation and mixes unsupported channel counts to stereo.
// Layouts the effect does not support are otherwise passed through
// untouched.
package ddpfx
