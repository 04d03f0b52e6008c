// SPDX-License-Identifier: EPL-2.0

package ddpfx

import "errors"

var (
	ErrInvalidSource     = errors.New("invalid source format")
	ErrInvalidBufferSize = errors.New("invalid buffer size")
)
