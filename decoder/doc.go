// SPDX-License-Identifier: EPL-2.0

// Package decoder drives a frame decode engine from host buffer queues.
//
// A Loop takes compressed input buffers and free PCM output buffers from a
// HostQueue, decodes as many whole frames as fit in each output, and hands
// both back. It follows the sink through a routing.Policy, detects sample
// rate and channel count changes and asks the host to renegotiate its
// output port before decoding on. A DRC profile change mutes the first
// frame decoded under the new profile and fades the next one in.
//
// Source is a ready-made host: it reads the compressed stream from an
// io.Reader and serves the decoded PCM as an audio.Source.
package decoder
