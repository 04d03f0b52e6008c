// SPDX-License-Identifier: EPL-2.0

package ddpfx

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/ddpfx/audio"
	"github.com/ik5/ddpfx/effect"
)

// ConformRate is the rate sources are resampled to when the effect does not
// process their own rate.
const ConformRate = 48000

// layout is the effect configuration for a stream of rate and channels,
// folded to written stereo output.
func layout(rate, channels int) effect.Config {
	cfg := effect.DefaultConfig()
	cfg.Input.SampleRate, cfg.Output.SampleRate = rate, rate
	cfg.Input.Channels, cfg.Output.Channels = channels, 2
	cfg.Output.Access = effect.AccessWrite
	return cfg
}

// Conform adapts src to a layout the effect processes and returns the
// configuration to give the effect for it.
//
// A source at an unsupported rate is resampled to ConformRate using cubic
// interpolation. A channel count other than 2, 6 or 8 is mixed to stereo.
// Closing the returned source closes src.
func Conform(src audio.Source) (audio.Source, effect.Config, error) {
	if src.SampleRate() <= 0 {
		return nil, effect.Config{}, fmt.Errorf("%w: %d Hz", ErrInvalidSource, src.SampleRate())
	}
	if src.Channels() <= 0 {
		return nil, effect.Config{}, fmt.Errorf("%w: %d channels", ErrInvalidSource, src.Channels())
	}

	if !layout(src.SampleRate(), 2).Supported() {
		src = audio.NewResampler(src, ConformRate)
	}

	if !layout(src.SampleRate(), src.Channels()).Supported() {
		mixed, err := audio.NewChannelMixer(src, 2)
		if err != nil {
			return nil, effect.Config{}, fmt.Errorf("%w", err)
		}
		src = mixed
	}

	return src, layout(src.SampleRate(), src.Channels()), nil
}

// ReadAll drains src, reading bufferSize samples at a time. Reaching the
// end of the stream is not an error.
func ReadAll(src audio.Source, bufferSize int) ([]int16, error) {
	if bufferSize < src.Channels() {
		return nil, fmt.Errorf("%w: %d samples", ErrInvalidBufferSize, bufferSize)
	}
	bufferSize -= bufferSize % src.Channels()

	// about two seconds to start with
	pcm := make([]int16, 0, src.SampleRate()*src.Channels()*2)
	buf := make([]int16, bufferSize)

	for {
		n, err := src.ReadPCM(buf)
		if n > 0 {
			if cap(pcm)-len(pcm) < n {
				grown := make([]int16, len(pcm), len(pcm)+max(n, cap(pcm)))
				copy(grown, pcm)
				pcm = grown
			}
			pcm = append(pcm, buf[:n]...)
		}

		if errors.Is(err, io.EOF) {
			return pcm, nil
		}
		if err != nil {
			return pcm, fmt.Errorf("%w", err)
		}
	}
}
