// SPDX-License-Identifier: EPL-2.0

package routing

// Input is the stream side of a routing decision.
type Input struct {
	MaxChannels int

	// IndependentPresent is false when the timeslice carried no independent
	// frame. Acmod and LFE are ignored then.
	IndependentPresent bool
	Acmod              Acmod
	LFE                bool

	DependentCount int
	// ChannelMap is the aggregate channel map of the program.
	ChannelMap uint16
}

// rearPairMask selects the back surround pair bits of a channel map.
const rearPairMask = 0x300

// Decision is the decoder output configuration.
type Decision struct {
	Acmod    Acmod
	LFE      bool
	Channels int
	Stereo   StereoMode
	DRC      CompMode
}

var (
	stereo   = Decision{Acmod: AcmodStereo, Channels: 2}
	surround = Decision{Acmod: Acmod32, LFE: true, Channels: 6}
	wide     = Decision{Acmod: Acmod322, LFE: true, Channels: 8}
)

// Resolve folds the stream layout into the sink's channel budget. Stereo
// and DRC are left zero; Policy.Decide fills them in.
func Resolve(in Input) Decision {
	acmod := in.Acmod
	if !in.IndependentPresent {
		acmod = AcmodStereo
	}

	switch in.MaxChannels {
	case 6:
		if acmod > AcmodStereo {
			return surround
		}
	case 8:
		if in.DependentCount > 0 {
			if in.ChannelMap&rearPairMask != 0 {
				return wide
			}
			return surround
		}
		if acmod > AcmodStereo {
			return surround
		}
	}

	return stereo
}
