// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// AlignFrames wraps src so every ReadPCM returns whole frames. Samples
// past the last whole frame of a read are kept and returned first by the
// next call, so a source that reads mid-frame never loses or shifts a
// channel. A partial frame left when src ends is dropped.
//
// Wrapping an already aligned source returns it unchanged.
func AlignFrames(src Source) Source {
	if a, ok := src.(*frameAligned); ok {
		return a
	}
	return &frameAligned{
		Source: src,
		carry:  make([]int16, 0, max(src.Channels(), 1)),
	}
}

type frameAligned struct {
	Source
	carry []int16
}

// ReadPCM fills dst with whole frames. dst shorter than one frame is an
// error; a ragged tail of dst is left untouched.
func (a *frameAligned) ReadPCM(dst []int16) (int, error) {
	ch := a.Channels()
	if ch <= 0 {
		return 0, ErrInvalidChannelCount
	}
	if len(dst) < ch {
		return 0, fmt.Errorf("%w: %d samples for %d channels", ErrInvalidDstSize, len(dst), ch)
	}
	dst = dst[:len(dst)-len(dst)%ch]

	n := copy(dst, a.carry)
	for {
		m, err := a.Source.ReadPCM(dst[n:])
		n += m

		whole := n - n%ch
		if err != nil || whole > 0 || m == 0 {
			a.carry = append(a.carry[:0], dst[whole:n]...)
			if err != nil {
				a.carry = a.carry[:0]
			}
			return whole, err
		}
	}
}
