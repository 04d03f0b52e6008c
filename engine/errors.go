// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"fmt"
)

// Error is a decoder status code. The numeric values are part of the
// engine contract.
type Error int

const (
	Success           Error = 0
	OpenFailure       Error = 10
	InitFailure       Error = 20
	InvalidHeader     Error = 30
	FrameParamError   Error = 40
	InvalidFrame      Error = 50
	IncompleteFrame   Error = 60
	FrameCleanFailure Error = 70
	FrameCloseFailure Error = 80
)

var errorMessages = map[Error]string{
	Success:           "no error",
	OpenFailure:       "decoder open failed",
	InitFailure:       "decoder not initialised",
	InvalidHeader:     "invalid frame header",
	FrameParamError:   "frame parameter error",
	InvalidFrame:      "invalid frame",
	IncompleteFrame:   "incomplete frame",
	FrameCleanFailure: "frame cleanup failed",
	FrameCloseFailure: "frame close failed",
}

func (e Error) Error() string {
	if msg, ok := errorMessages[e]; ok {
		return msg
	}
	return fmt.Sprintf("decoder error %d", int(e))
}

var (
	ErrBlockAlign        = errors.New("frame count is not a multiple of the block size")
	ErrUnsupportedLayout = errors.New("unsupported input channel layout")
	ErrUnknownParam      = errors.New("unknown kernel parameter")
	ErrParamRange        = errors.New("kernel parameter index out of range")
	ErrNotStarted        = errors.New("kernel not started")
	ErrBufferSize        = errors.New("buffer does not hold a whole block")
)
