// SPDX-License-Identifier: EPL-2.0

package effect

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument covers every rejected command, parameter or buffer.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNoData is returned by Process once a disable or bypass has faded out.
	ErrNoData          = errors.New("no more data")

	ErrMalformed = errors.New("malformed message")
	ErrNotOpen   = fmt.Errorf("%w: kernel not open", ErrInvalidArgument)
)

// Reply status codes, as carried in int32 reply payloads.
const (
	StatusOK      int32 = 0
	StatusInvalid int32 = -22
	StatusNoData  int32 = -61
)

// Status maps an error to its reply status code.
func Status(err error) int32 {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrNoData):
		return StatusNoData
	}
	return StatusInvalid
}

func invalid(err error) error {
	if err == nil || errors.Is(err, ErrInvalidArgument) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
}
