// SPDX-License-Identifier: EPL-2.0

package decoder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ik5/ddpfx/engine"
	"github.com/ik5/ddpfx/routing"
)

// Format reported before the engine runs.
const (
	DefaultSampleRate = 48000
	DefaultChannels   = 2
)

// PCMWriter receives interleaved PCM. formats/wav.Writer implements it.
type PCMWriter interface {
	WritePCM(samples []int16) error
}

// Loop is one decoder session. Not safe for concurrent use.
type Loop struct {
	dec    engine.Decoder
	host   HostQueue
	policy *routing.Policy
	log    *slog.Logger
	dump   PCMWriter

	src   routing.EndpointSource
	table *routing.Table

	started bool
	err     error
	port    PortState

	// the last frame and the format the output port was negotiated for
	rate, channels, frameLen int
	lastRate, lastChannels   int
	outChannels              int

	pendingChange bool
	fadeIn        bool
	drc           routing.CompMode

	anchor        int64
	framesOutput  int64
	lastMediaTime int64
	adjusted      int64

	params map[engine.DecoderParam]int
	pcm    []int16
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger. If log is nil, slog.Default() is used.
func WithLogger(log *slog.Logger) Option {
	return func(l *Loop) {
		if log != nil {
			l.log = log
		}
	}
}

// WithEndpointSource sets where the active sink is read from. Without it
// the sink is unknown and the default route applies.
func WithEndpointSource(src routing.EndpointSource) Option {
	return func(l *Loop) { l.src = src }
}

// WithRoutingTable replaces routing.DefaultTable.
func WithRoutingTable(t routing.Table) Option {
	return func(l *Loop) { l.table = &t }
}

// WithDump copies every decoded frame to w.
func WithDump(w PCMWriter) Option {
	return func(l *Loop) { l.dump = w }
}

// New returns a Loop decoding with dec for host. The engine is opened by
// the first Fill.
func New(dec engine.Decoder, host HostQueue, opts ...Option) *Loop {
	l := &Loop{
		dec:          dec,
		host:         host,
		log:          slog.Default(),
		outChannels:  DefaultChannels,
		lastRate:     DefaultSampleRate,
		lastChannels: DefaultChannels,
		drc:          routing.CompPortableL14,
		params:       map[engine.DecoderParam]int{},
		pcm:          make([]int16, engine.MaxFrameBytes/engine.BytesPerSample),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.log = l.log.With("component", "decoder")
	l.policy = routing.NewPolicy(l.src, l.table, l.log)
	return l
}

func (l *Loop) Started() bool             { return l.started }
func (l *Loop) Err() error                { return l.err }
func (l *Loop) PortState() PortState      { return l.port }
func (l *Loop) Policy() *routing.Policy   { return l.policy }
func (l *Loop) PendingFormatChange() bool { return l.pendingChange }

// KeyTime is the presentation time, in microseconds, of the next sample
// to be decoded.
func (l *Loop) KeyTime() int64 {
	return l.anchor + l.framesOutput*1_000_000/int64(max(l.rate, 1))
}

func (l *Loop) start() error {
	if err := l.dec.Open(); err != nil {
		return fmt.Errorf("%w: %w", ErrEngineOpen, err)
	}

	// a reopened engine needs the routing again even if the sink is the same
	if !l.policy.Refresh(false) {
		_ = l.policy.SetDownmix(l.policy.Downmix())
	}
	l.drc = l.policy.DRC()
	l.anchor, l.framesOutput = 0, 0
	l.started = true
	l.log.Debug("decoder started", "max_channels", l.policy.MaxChannels(), "drc", l.drc)
	return nil
}

// Stop closes the engine.
func (l *Loop) Stop() error {
	if !l.started {
		return nil
	}
	l.started = false
	clear(l.params)
	if err := l.dec.Close(); err != nil {
		return fmt.Errorf("decoder close: %w", err)
	}
	return nil
}

// Reset stops the session and clears a latched error. The next Fill
// opens the engine again.
func (l *Loop) Reset() error {
	err := l.Stop()
	l.err = nil
	l.pendingChange = false
	l.fadeIn = false
	l.port = PortNone
	return err
}

// Flush handles a port flush. Flushing the input port restarts the
// timestamp count.
func (l *Loop) Flush(port int) {
	if port == 0 {
		l.framesOutput = 0
	}
}

// Format reports the PCM layout of the output port. Until a frame has
// been decoded this is the last negotiated layout, the default one for a
// new Loop.
func (l *Loop) Format() Format {
	if !l.started || l.rate == 0 {
		return Format{SampleRate: l.lastRate, Channels: l.lastChannels}
	}
	return Format{SampleRate: l.rate, Channels: l.channels}
}

// PortEnableCompleted advances a port renegotiation: the host first
// disables the output port, then enables it again.
func (l *Loop) PortEnableCompleted(port int, enabled bool) error {
	if port != 1 {
		return nil
	}

	switch l.port {
	case PortNone:
	case PortAwaitingDisabled:
		if enabled {
			return fmt.Errorf("%w: enabled while %v", ErrPortState, l.port)
		}
		l.port = PortAwaitingEnabled
	case PortAwaitingEnabled:
		if !enabled {
			return fmt.Errorf("%w: disabled while %v", ErrPortState, l.port)
		}
		l.port = PortNone
		l.log.Debug("output port renegotiated", "format", l.Format())
	}
	return nil
}

// Fill decodes while the host offers both an input and an output buffer.
// It returns early while a port renegotiation is in progress. A failure
// to open the engine is reported to the host once and returned by every
// later call until Reset.
func (l *Loop) Fill(ctx context.Context) error {
	if l.err != nil {
		return l.err
	}
	if l.port != PortNone {
		return nil
	}

	if !l.started {
		if err := l.start(); err != nil {
			l.fail(err)
			return err
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		in, ok := l.host.NextInput()
		if !ok {
			return nil
		}
		out, ok := l.host.NextOutput()
		if !ok {
			return nil
		}

		if l.pendingChange {
			l.tryPortChange()
			return nil
		}

		if in.EOS {
			in.Offset += in.Length
			in.Length = 0
			l.host.ReturnInput(in)

			out.Offset, out.Length = 0, 0
			out.EOS = true
			l.host.ReturnOutput(out)
			l.log.Debug("end of stream")
			return nil
		}

		if out.Length == 0 && out.Free() < engine.MaxFrameBytes {
			err := fmt.Errorf("%w: %d bytes", ErrOutputSize, out.Free())
			l.fail(err)
			return err
		}

		if in.Offset == 0 {
			l.anchor = in.Timestamp
			l.framesOutput = 0
		}

		if halted := l.decode(in, out); halted {
			return nil
		}

		l.syncTime(in.Timestamp)

		if in.Length == 0 {
			l.host.ReturnInput(in)
		}
		if out.Length > 0 {
			l.returnOutput(out)
		}
	}
}

func (l *Loop) fail(err error) {
	l.err = err
	l.log.Error("decoder failed", "error", err)
	l.host.NotifyError(err)
}

func (l *Loop) returnOutput(out *Buffer) {
	out.SyncTime = l.lastMediaTime + l.adjusted
	out.EOS = false
	l.host.ReturnOutput(out)
}

func (l *Loop) syncTime(ts int64) {
	if ts != l.lastMediaTime {
		l.adjusted = 0
		l.lastMediaTime = ts
		return
	}
	if l.rate == 0 {
		l.adjusted = 0
		return
	}
	l.adjusted += int64(l.frameLen) * 1_000_000 / int64(l.rate)
}

// tryPortChange asks the host to renegotiate once every output buffer is
// back.
func (l *Loop) tryPortChange() {
	if n := l.host.OutputsQueued(); n != NumOutputBuffers {
		l.log.Debug("format change waits for output buffers", "queued", n)
		return
	}
	l.pendingChange = false
	l.port = PortAwaitingDisabled
	f := l.Format()
	l.log.Info("output format changed", "format", f)
	l.host.NotifyFormatChanged(f)
}

// decode runs frames from in into out until in is used up or out has no
// room for another maximal frame. It reports whether decoding halted for
// a format change.
func (l *Loop) decode(in, out *Buffer) bool {
	for in.Length > 0 && out.Free() >= engine.MaxFrameBytes {
		l.policy.Refresh(l.started)

		consumed, slice, err := l.decodeFrame(in.Data[in.Offset : in.Offset+in.Length])
		in.Offset += consumed
		in.Length -= consumed

		if err == nil {
			l.frameLen = slice.Blocks * engine.BlockSize
			l.rate = slice.SampleRate
			l.channels = l.outChannels

			if l.rate != l.lastRate {
				l.log.Warn("sample rate changed", "from", l.lastRate, "to", l.rate)
				l.lastRate = l.rate
				l.pendingChange = true
			}
			if l.channels != l.lastChannels {
				l.log.Warn("channel count changed", "from", l.lastChannels, "to", l.channels)
				l.lastChannels = l.channels
				l.pendingChange = true
			}

			pcm := l.pcm[:l.frameLen*l.channels]
			if l.fadeIn {
				fadeIn(pcm, l.channels, l.frameLen)
				l.fadeIn = false
			}
			if drc := l.policy.DRC(); drc != l.drc {
				l.log.Warn("DRC mode changed", "from", l.drc, "to", drc)
				l.drc = drc
				clear(pcm)
				l.fadeIn = true
			}

			if l.pendingChange {
				// the frame is dropped, decoding resumes in the new format
				if in.Length == 0 {
					l.host.ReturnInput(in)
				}
				if out.Length > 0 {
					l.returnOutput(out)
				}
				l.tryPortChange()
				return true
			}
		} else {
			if !errors.Is(err, engine.IncompleteFrame) {
				l.log.Warn("frame not decoded", "error", err)
			}
			l.frameLen = 0
			l.rate = l.lastRate
			l.channels = l.lastChannels

			if consumed == 0 {
				l.log.Warn("decoder took no input, dropping buffer", "bytes", in.Length)
				in.Offset += in.Length
				in.Length = 0
			}
		}

		if l.frameLen == 0 {
			continue
		}

		if out.Length == 0 {
			out.Timestamp = l.KeyTime()
		}
		pcm := l.pcm[:l.frameLen*l.channels]
		out.appendPCM(pcm)
		l.writeDump(pcm)

		l.framesOutput += int64(l.frameLen)
		l.log.Debug("frame decoded", "frames", l.frameLen, "rate", l.rate, "channels", l.channels, "key_time", l.KeyTime())
	}
	return false
}

// decodeFrame adds p to the engine and decodes a timeslice when one is
// complete. It returns the bytes taken from p, also on error.
func (l *Loop) decodeFrame(p []byte) (int, engine.Timeslice, error) {
	consumed, complete, err := l.dec.AddBytes(p)
	if err != nil && l.dec.QuitOnError() {
		return consumed, engine.Timeslice{}, fmt.Errorf("%w: %w", ErrProcessing, err)
	}
	if !complete {
		return consumed, engine.Timeslice{}, engine.IncompleteFrame
	}

	if l.policy.TakeUpdate() {
		if err := l.configure(l.dec.Layout()); err != nil {
			return consumed, engine.Timeslice{}, err
		}
	}

	slice, err := l.dec.Decode(l.pcm)
	if err != nil {
		return consumed, engine.Timeslice{}, err
	}
	return consumed, slice, nil
}

// configure applies the routing decision for layout. Output parameters
// are only written when they change.
func (l *Loop) configure(layout engine.Layout) error {
	d := l.policy.Decide(routing.Input{
		IndependentPresent: layout.IndependentPresent,
		Acmod:              routing.Acmod(layout.Acmod),
		LFE:                layout.LFE,
		DependentCount:     layout.DependentCount,
		ChannelMap:         layout.ChannelMap,
	})

	l.outChannels = d.Channels
	l.dec.SetOutputChannels(d.Channels)

	lfe := 0
	if d.LFE {
		lfe = 1
	}
	for _, p := range []struct {
		param engine.DecoderParam
		value int
	}{
		{engine.OutMode, int(d.Acmod)},
		{engine.OutLFE, lfe},
		{engine.OutStereoMode, int(d.Stereo)},
		{engine.OutCompMode, int(d.DRC)},
	} {
		if v, ok := l.params[p.param]; ok && v == p.value {
			continue
		}
		if err := l.dec.SetOutputParam(p.param, p.value); err != nil {
			return fmt.Errorf("set %v=%d: %w", p.param, p.value, err)
		}
		l.params[p.param] = p.value
	}

	l.log.Debug("channel routing configured",
		"acmod", d.Acmod, "lfe", d.LFE, "channels", d.Channels, "stereo", d.Stereo, "drc", d.DRC)
	return nil
}

func (l *Loop) writeDump(pcm []int16) {
	if l.dump == nil {
		return
	}
	if err := l.dump.WritePCM(pcm); err != nil {
		l.log.Warn("pcm dump failed, dump stopped", "error", err)
		l.dump = nil
	}
}
