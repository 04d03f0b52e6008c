// SPDX-License-Identifier: EPL-2.0

package engine

// BlockSize is the number of frames the kernel consumes per Process call.
const BlockSize = 256

// Kernel parameter names. Names are at most four characters.
const (
	ParamVersion        = "ver"
	ParamEndpoint       = "endp"
	ParamPregain        = "preg"
	ParamPostgain       = "pstg"
	ParamVisEnable      = "ven"
	ParamOutputConfig   = "ocf"
	ParamEQBands        = "genb"
	ParamEQBandFreqs    = "gebf"
	ParamVisBandCount   = "vcnb"
	ParamVisBandFreqs   = "vcbf"
	ParamVisGains       = "vcbg"
	ParamVisExcitations = "vcbe"
	ParamLeveler        = "dvlo"
	ParamLevelerInput   = "dvli"
	ParamVirtualBass    = "vmb"
)

// Channel identifies a speaker position in an input channel map.
type Channel uint8

const (
	ChanL Channel = iota
	ChanR
	ChanC
	ChanLFE
	ChanLs
	ChanRs
	ChanLb
	ChanRb
)

var (
	mapStereo = []Channel{ChanL, ChanR}
	map51     = []Channel{ChanL, ChanR, ChanC, ChanLFE, ChanLs, ChanRs}
	map71     = []Channel{ChanL, ChanR, ChanC, ChanLFE, ChanLs, ChanRs, ChanLb, ChanRb}
)

// ChannelMap returns the speaker layout for an interleaved input of n
// channels, or false when the kernel cannot take that layout.
func ChannelMap(n int) ([]Channel, bool) {
	switch n {
	case 2:
		return mapStereo, true
	case 6:
		return map51, true
	case 8:
		return map71, true
	}
	return nil, false
}

// Kernel is the block DSP engine driven by the effect.
//
// Parameters are addressed by name and element index. Init-time parameters
// must be set between Open and Start. SetInput, Process and Output move
// exactly one block: SetInput takes BlockSize interleaved frames of the
// configured input layout, Output fills BlockSize frames of the output
// layout.
type Kernel interface {
	Open() error
	SetInit(name string, value int16) error
	Start() error
	Close() error

	Get(name string, idx int) (int16, error)
	GetBulk(name string, offset int, dst []int16) error
	Set(name string, idx int, value int16) error
	SetBulk(name string, offset int, values []int16) error

	// ResetUserSettings restores every tunable to its default.
	ResetUserSettings() error
	SetInputConfig(sampleRate, blockSize int, layout []Channel) error

	SetInput(block []int16) error
	Process() error
	Output(block []int16) error
}

// ProcessLoop runs the kernel over frames frames of in, writing to out.
// frames must be a multiple of BlockSize. Each block is read before the
// matching output block is written, so in and out may alias as long as the
// output layout is not wider than the input layout.
func ProcessLoop(k Kernel, in []int16, inCh int, out []int16, outCh int, frames int) error {
	if frames%BlockSize != 0 {
		return ErrBlockAlign
	}
	if len(in) < frames*inCh || len(out) < frames*outCh {
		return ErrBufferSize
	}

	for b := 0; b < frames/BlockSize; b++ {
		inBlock := in[b*BlockSize*inCh : (b+1)*BlockSize*inCh]
		outBlock := out[b*BlockSize*outCh : (b+1)*BlockSize*outCh]

		if err := k.SetInput(inBlock); err != nil {
			return err
		}
		if err := k.Process(); err != nil {
			return err
		}
		if err := k.Output(outBlock); err != nil {
			return err
		}
	}

	return nil
}
