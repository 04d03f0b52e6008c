// SPDX-License-Identifier: EPL-2.0

// Package routing decides how the decoder lays out its PCM output.
//
// Two inputs drive the decision. The sink side (which endpoint is active and
// whether the post-processor is on) selects a row of a static Table, giving
// the maximum channel count, the DRC profile and the downmix preference.
// The stream side (acmod, LFE and dependent substream metadata of the
// current timeslice) is then folded into that maximum by Resolve.
//
// Policy tracks the sink side across calls. Once streaming has started the
// channel count is frozen and only DRC and downmix may follow the sink.
package routing
