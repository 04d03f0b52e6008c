// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
)

// AsReadSeeker returns r unchanged when it already seeks, otherwise it
// buffers the whole stream in memory. Several decoders need random access
// to walk RIFF/AIFF chunks.
func AsReadSeeker(r io.Reader) (io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("buffering input: %w", err)
	}
	return &memReadSeeker{data: data}, nil
}

type memReadSeeker struct {
	data   []byte
	offset int64
}

func (rs *memReadSeeker) Read(p []byte) (int, error) {
	if rs.offset >= int64(len(rs.data)) {
		return 0, io.EOF
	}
	n := copy(p, rs.data[rs.offset:])
	rs.offset += int64(n)
	return n, nil
}

func (rs *memReadSeeker) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = rs.offset + offset
	case io.SeekEnd:
		next = int64(len(rs.data)) + offset
	default:
		return 0, fmt.Errorf("%w: whence %d", ErrInvalidSeek, whence)
	}

	if next < 0 {
		return 0, fmt.Errorf("%w: negative position", ErrInvalidSeek)
	}

	rs.offset = next
	return next, nil
}
