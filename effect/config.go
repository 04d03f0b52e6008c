// SPDX-License-Identifier: EPL-2.0

package effect

import (
	"encoding/binary"
	"fmt"
	"slices"
)

// AccessMode says how Process treats the output buffer.
type AccessMode uint8

const (
	AccessWrite AccessMode = iota
	AccessRead
	AccessAccumulate
)

func (a AccessMode) String() string {
	switch a {
	case AccessWrite:
		return "write"
	case AccessRead:
		return "read"
	case AccessAccumulate:
		return "accumulate"
	}
	return fmt.Sprintf("access(%d)", uint8(a))
}

// Format is the sample format of a buffer.
type Format uint8

const (
	FormatPCM16 Format = 1
	FormatPCM32 Format = 3
)

// DefaultSampleRate is used until a configuration arrives, and to open the
// kernel when the configured rate is not supported.
const DefaultSampleRate = 44100

var (
	supportedRates    = []int{48000, 44100, 32000}
	supportedChannels = []int{2, 6, 8}
)

// BufferConfig describes one side of the effect.
type BufferConfig struct {
	SampleRate int
	Channels   int
	Format     Format
	Access     AccessMode
}

// Config is the input and output layout of the effect.
type Config struct {
	Input  BufferConfig
	Output BufferConfig
}

// ConfigSize is the encoded size of a Config.
const ConfigSize = 16

// DefaultConfig is the layout of a freshly created effect.
func DefaultConfig() Config {
	return Config{
		Input:  BufferConfig{SampleRate: DefaultSampleRate, Channels: 2, Format: FormatPCM16, Access: AccessRead},
		Output: BufferConfig{SampleRate: DefaultSampleRate, Channels: 2, Format: FormatPCM16, Access: AccessAccumulate},
	}
}

// Validate checks that the effect can be configured this way. A valid
// configuration may still be unsupported by the kernel, see Supported.
func (c Config) Validate() error {
	in, out := c.Input, c.Output

	switch {
	case out.Access != AccessWrite && out.Access != AccessAccumulate:
		return fmt.Errorf("%w: output access %v", ErrInvalidArgument, out.Access)
	case in.SampleRate != out.SampleRate:
		return fmt.Errorf("%w: rate %d in, %d out", ErrInvalidArgument, in.SampleRate, out.SampleRate)
	case in.Format != out.Format || in.Format != FormatPCM16:
		return fmt.Errorf("%w: format %d in, %d out", ErrInvalidArgument, in.Format, out.Format)
	case out.Channels != 1 && out.Channels != 2:
		return fmt.Errorf("%w: %d output channels", ErrInvalidArgument, out.Channels)
	}

	// a multichannel input may only be folded to stereo
	if in.Channels != out.Channels && !(out.Channels == 2 && (in.Channels == 6 || in.Channels == 8)) {
		return fmt.Errorf("%w: %d input channels for %d output channels", ErrInvalidArgument, in.Channels, out.Channels)
	}
	return nil
}

// Supported reports whether the kernel processes this layout. Unsupported
// layouts are passed through untouched.
func (c Config) Supported() bool {
	return slices.Contains(supportedRates, c.Input.SampleRate) &&
		slices.Contains(supportedChannels, c.Input.Channels) &&
		c.Output.Channels == 2
}

func (b BufferConfig) append(p []byte) []byte {
	p = binary.LittleEndian.AppendUint32(p, uint32(b.SampleRate))
	p = binary.LittleEndian.AppendUint16(p, uint16(b.Channels))
	return append(p, byte(b.Format), byte(b.Access))
}

func (b *BufferConfig) decode(p []byte) {
	b.SampleRate = int(binary.LittleEndian.Uint32(p))
	b.Channels = int(binary.LittleEndian.Uint16(p[4:]))
	b.Format = Format(p[6])
	b.Access = AccessMode(p[7])
}

func (c Config) MarshalBinary() ([]byte, error) {
	p := make([]byte, 0, ConfigSize)
	p = c.Input.append(p)
	return c.Output.append(p), nil
}

func (c *Config) UnmarshalBinary(p []byte) error {
	if len(p) != ConfigSize {
		return fmt.Errorf("%w: config is %d bytes, want %d", ErrMalformed, len(p), ConfigSize)
	}
	c.Input.decode(p)
	c.Output.decode(p[8:])
	return nil
}
