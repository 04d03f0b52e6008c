// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// ChannelMixer converts a source to a fixed channel count.
// Upmixing repeats source channels cyclically, downmixing averages every
// source channel j into output channel j % channels.
type ChannelMixer struct {
	src      Source
	channels int
	tmp      []int16
}

func NewChannelMixer(src Source, channels int) (*ChannelMixer, error) {
	if channels <= 0 {
		return nil, ErrInvalidChannelCount
	}

	return &ChannelMixer{
		src:      AlignFrames(src),
		channels: channels,
		tmp:      make([]int16, 4096),
	}, nil
}

func (m *ChannelMixer) SampleRate() int { return m.src.SampleRate() }
func (m *ChannelMixer) Channels() int   { return m.channels }

func (m *ChannelMixer) Close() error {
	if err := m.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (m *ChannelMixer) ReadPCM(dst []int16) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if len(dst)%m.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	inCh := m.src.Channels()
	if inCh == m.channels {
		return m.src.ReadPCM(dst)
	}

	frames := len(dst) / m.channels
	need := frames * inCh
	if cap(m.tmp) < need {
		m.tmp = make([]int16, need)
	}
	m.tmp = m.tmp[:need]

	n, err := m.src.ReadPCM(m.tmp)
	got := n / inCh
	if got == 0 {
		return 0, err
	}

	if m.channels > inCh {
		for f := range got {
			in := m.tmp[f*inCh : f*inCh+inCh]
			out := dst[f*m.channels : f*m.channels+m.channels]
			for c := range out {
				out[c] = in[c%inCh]
			}
		}
		return got * m.channels, err
	}

	for f := range got {
		in := m.tmp[f*inCh : f*inCh+inCh]
		out := dst[f*m.channels : f*m.channels+m.channels]
		for c := range out {
			var sum, cnt int32
			for j := c; j < inCh; j += m.channels {
				sum += int32(in[j])
				cnt++
			}
			out[c] = int16(sum / cnt)
		}
	}

	return got * m.channels, err
}
