// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes 16-bit PCM AIFF files using github.com/go-audio/aiff.
//
// go-audio needs random access, so non-seekable readers are buffered in
// memory first.
package aiff
