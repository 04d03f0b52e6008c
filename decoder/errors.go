// SPDX-License-Identifier: EPL-2.0

package decoder

import "errors"

var (
	ErrEngineOpen = errors.New("decode engine open failed")
	ErrProcessing = errors.New("decode processing error")
	ErrOutputSize = errors.New("output buffer cannot hold a maximal frame")
	ErrPortState  = errors.New("unexpected port enable transition")

	// ErrFormatChanged is returned by Source when the stream changes layout
	// after PCM has been delivered.
	ErrFormatChanged = errors.New("output format changed mid-stream")
)
