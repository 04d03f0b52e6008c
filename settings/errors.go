// SPDX-License-Identifier: EPL-2.0

package settings

import "errors"

var (
	ErrNotDefined    = errors.New("no parameters or settings defined")
	ErrIndexRange    = errors.New("setting index out of range")
	ErrUnknownDevice = errors.New("device not in cache")
	ErrRowWidth      = errors.New("row width does not match the schema")
	ErrUnknownParam  = errors.New("parameter index not defined")
)
