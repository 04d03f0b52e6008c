// SPDX-License-Identifier: EPL-2.0

package blockbuf

import "errors"

var (
	ErrChannelMismatch = errors.New("in-place processing cannot widen the channel layout")
	ErrShortBuffer     = errors.New("buffer shorter than the requested frame count")
	ErrBlockAlign      = errors.New("frame count is not a multiple of the block size")
)
