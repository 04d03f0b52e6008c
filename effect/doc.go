// SPDX-License-Identifier: EPL-2.0

// Package effect is the post-processing effect around a block DSP kernel.
//
// An Effect owns one engine.Kernel, reopened whenever the sample rate,
// channel count or output endpoint changes. Audio goes through a
// blockbuf.Adapter so callers may pass any frame count. Enabling, disabling
// and bypassing are cross-faded over an eighth of a second, and Process
// reports ErrNoData once a disable has faded out.
//
// Control follows a command protocol: Command takes a command code, a
// little-endian payload and the size of the reply buffer the caller
// provides, and every command checks that size. The typed methods behind
// it (SetConfig, SetParam, SetDevice and so on) can be called directly.
package effect
