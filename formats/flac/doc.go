// SPDX-License-Identifier: EPL-2.0

// Package flac decodes FLAC streams through github.com/mewkiz/flac.
//
// Samples of any depth between 4 and 32 bits are scaled to 16 bits.
package flac
