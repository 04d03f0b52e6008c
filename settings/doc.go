// SPDX-License-Identifier: EPL-2.0

// Package settings holds the per output device parameter cache of the
// post-processing effect.
//
// A Schema names the kernel parameters a client may tune and lays them out
// as a fixed-width row. The Cache keeps one such row per output device. When
// the active device has no row of its own, a static fallback chain picks a
// related device, and the first row is used when nothing matches.
//
// Store ties the two together and pushes the selected row to a kernel.
package settings
