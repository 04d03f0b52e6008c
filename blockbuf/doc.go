// SPDX-License-Identifier: EPL-2.0

// Package blockbuf lets a kernel that only takes whole 256-frame blocks
// process buffers of any length.
//
// The Adapter keeps one block of unprocessed input and one block of
// processed output. Every frame handed in produces exactly one frame out,
// delayed by one block: the first 256 frames an Adapter ever emits are
// silence, and the output does not depend on how the input is chunked
// across calls.
//
// Input and output may be separate buffers or the same buffer. Separate
// buffers must not overlap.
package blockbuf
