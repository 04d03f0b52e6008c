// SPDX-License-Identifier: EPL-2.0

// Package engine defines the call contracts of the two black-box engines the
// pipeline drives: the block DSP Kernel used by the effect and the
// frame Decoder used by the decode loop.
//
// The engines themselves are opaque. This package fixes how they are
// opened, configured and fed, and ships GainKernel, a small reference kernel
// that honours the contract so the pipeline can run end to end.
package engine
