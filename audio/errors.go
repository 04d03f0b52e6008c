// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize      = errors.New("dst size must be multiple of channels")
	ErrUnknownFormat       = errors.New("unknown audio format")
	ErrInvalidChannelCount = errors.New("channel count must be positive")
	ErrInvalidSeek         = errors.New("invalid seek")
)
