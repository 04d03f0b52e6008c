// SPDX-License-Identifier: EPL-2.0

package routing

import "errors"

var ErrInvalidDownmix = errors.New("invalid downmix configuration")
