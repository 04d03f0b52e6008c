// SPDX-License-Identifier: EPL-2.0

package routing

import "fmt"

// Acmod is the bitstream audio coding mode: the arrangement of full-range
// channels.
type Acmod int

const (
	AcmodDualMono Acmod = 0 // 1+1
	AcmodMono     Acmod = 1 // 1/0
	AcmodStereo   Acmod = 2 // 2/0
	Acmod30       Acmod = 3
	Acmod21       Acmod = 4
	Acmod31       Acmod = 5
	Acmod22       Acmod = 6
	Acmod32       Acmod = 7
	Acmod322      Acmod = 21 // 3/2 plus back surround pair
)

var acmodChannels = [...]int{2, 1, 2, 3, 3, 4, 4, 5}

// AcmodChannels returns the number of full-range channels for a, or 0 for an
// unknown mode.
func AcmodChannels(a Acmod) int {
	if a == Acmod322 {
		return 7
	}
	if a < 0 || int(a) >= len(acmodChannels) {
		return 0
	}
	return acmodChannels[a]
}

func (a Acmod) String() string {
	switch a {
	case AcmodDualMono:
		return "1+1"
	case AcmodMono:
		return "1/0"
	case AcmodStereo:
		return "2/0"
	case Acmod30:
		return "3/0"
	case Acmod21:
		return "2/1"
	case Acmod31:
		return "3/1"
	case Acmod22:
		return "2/2"
	case Acmod32:
		return "3/2"
	case Acmod322:
		return "3/2/2"
	}
	return fmt.Sprintf("acmod(%d)", int(a))
}

// StereoMode is the decoder's internal downmix mode.
type StereoMode int

const (
	StereoAuto StereoMode = iota
	StereoSurround
	StereoStereo
)

func (m StereoMode) String() string {
	switch m {
	case StereoAuto:
		return "auto"
	case StereoSurround:
		return "ltrt"
	case StereoStereo:
		return "loro"
	}
	return fmt.Sprintf("stereomode(%d)", int(m))
}

// CompMode is a dynamic range control profile.
type CompMode int

const (
	CompCustomA CompMode = iota
	CompCustomD
	CompLine
	CompRF
	CompPortableL8
	CompPortableL11
	CompPortableL14
	CompPortableTest
)

func (c CompMode) String() string {
	switch c {
	case CompCustomA:
		return "custom-a"
	case CompCustomD:
		return "custom-d"
	case CompLine:
		return "line"
	case CompRF:
		return "rf"
	case CompPortableL8:
		return "portable-l8"
	case CompPortableL11:
		return "portable-l11"
	case CompPortableL14:
		return "portable-l14"
	case CompPortableTest:
		return "portable-test"
	}
	return fmt.Sprintf("compmode(%d)", int(c))
}

// DownmixConfig is the user-facing downmix preference.
type DownmixConfig int

const (
	// DownmixAuto lets the stream's dmixmod choose between LoRo and LtRt.
	DownmixAuto DownmixConfig = iota
	DownmixLtRt
	DownmixLoRo
	// DownmixStream forwards every channel and leaves downmixing to an
	// external stage.
	DownmixStream
)

func (d DownmixConfig) String() string {
	switch d {
	case DownmixAuto:
		return "auto"
	case DownmixLtRt:
		return "ltrt"
	case DownmixLoRo:
		return "loro"
	case DownmixStream:
		return "stream"
	}
	return fmt.Sprintf("downmix(%d)", int(d))
}

// StereoMode maps the preference onto the decoder's stereo mode.
func (d DownmixConfig) StereoMode() (StereoMode, error) {
	switch d {
	case DownmixAuto, DownmixStream:
		return StereoAuto, nil
	case DownmixLtRt:
		return StereoSurround, nil
	case DownmixLoRo:
		return StereoStereo, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrInvalidDownmix, int(d))
}
