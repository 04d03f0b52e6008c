// SPDX-License-Identifier: EPL-2.0

package effect

import (
	"fmt"
	"log/slog"

	"github.com/ik5/ddpfx/blockbuf"
	"github.com/ik5/ddpfx/crossfade"
	"github.com/ik5/ddpfx/engine"
	"github.com/ik5/ddpfx/settings"
)

// KernelFactory returns a closed kernel. It is called every time the
// effect reopens its kernel.
type KernelFactory func() engine.Kernel

// PCMWriter receives interleaved PCM. formats/wav.Writer implements it.
type PCMWriter interface {
	WritePCM(samples []int16) error
}

// Effect is one instance of the post-processing effect. Not safe for
// concurrent use.
type Effect struct {
	newKernel KernelFactory
	kernel    *engine.Instance
	log       *slog.Logger

	cfg       Config
	supported bool

	store *settings.Store
	trans *crossfade.Transition
	buf   *blockbuf.Adapter

	strategy   blockbuf.Strategy
	volL, volR float32
	processed  bool
	audioMode  int32

	dumpIn, dumpOut PCMWriter

	wet, dry []int16
	primer   []int16
}

// Option configures an Effect.
type Option func(*Effect)

// WithLogger sets the logger. If log is nil, slog.Default() is used.
func WithLogger(log *slog.Logger) Option {
	return func(e *Effect) {
		if log != nil {
			e.log = log
		}
	}
}

// WithStrategy selects how in-place buffers are staged.
func WithStrategy(s blockbuf.Strategy) Option {
	return func(e *Effect) { e.strategy = s }
}

// WithDump copies the audio entering and leaving Process to in and out.
// Either may be nil.
func WithDump(in, out PCMWriter) Option {
	return func(e *Effect) {
		e.dumpIn = in
		e.dumpOut = out
	}
}

// New creates an effect in the default configuration, disabled, with the
// speaker as the active device.
func New(factory KernelFactory, opts ...Option) (*Effect, error) {
	if factory == nil {
		return nil, fmt.Errorf("%w: nil kernel factory", ErrInvalidArgument)
	}

	e := &Effect{
		newKernel: factory,
		log:       slog.Default(),
		cfg:       DefaultConfig(),
		volL:      1,
		volR:      1,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With("component", "effect")
	e.store = settings.NewStore(e.log)
	e.trans = crossfade.NewTransition(crossfade.FadeLength(e.cfg.Output.SampleRate))

	if err := e.setConfig(); err != nil {
		return nil, err
	}
	return e, nil
}

// Close releases the kernel.
func (e *Effect) Close() error {
	if e.kernel == nil {
		return nil
	}
	err := e.kernel.Close()
	e.kernel = nil
	return err
}

func (e *Effect) Config() Config                    { return e.cfg }
func (e *Effect) Supported() bool                   { return e.supported }
func (e *Effect) State() crossfade.State            { return e.trans.State() }
func (e *Effect) Enabled() bool                     { return e.trans.Enabled() }
func (e *Effect) Device() settings.Device           { return e.store.Active() }
func (e *Effect) Settings() *settings.Store         { return e.store }
func (e *Effect) AudioMode() int32                  { return e.audioMode }
func (e *Effect) Transition() *crossfade.Transition { return e.trans }

// params the kernel must keep across a reopen
var preserved = []string{
	engine.ParamPregain,
	engine.ParamPostgain,
	engine.ParamVisEnable,
	engine.ParamOutputConfig,
}

// reinit closes the kernel and opens a new one for the current
// configuration and device.
func (e *Effect) reinit() error {
	var backup map[string]int16

	if e.kernel != nil {
		backup = make(map[string]int16, len(preserved))
		for _, name := range preserved {
			v, err := e.kernel.Get(name, 0)
			if err != nil {
				e.log.Warn("could not back up kernel parameter", "param", name, "error", err)
				continue
			}
			backup[name] = v
		}

		if err := e.kernel.Close(); err != nil {
			e.log.Warn("kernel close failed", "error", err)
		}
		e.kernel = nil
	}

	in := e.cfg.Input
	e.supported = e.cfg.Supported()

	rate := DefaultSampleRate
	if e.supported {
		rate = in.SampleRate
	} else {
		e.log.Info("layout not supported, audio will pass through",
			"rate", in.SampleRate, "channels", in.Channels, "out_channels", e.cfg.Output.Channels)
	}

	inCh := in.Channels
	if !e.supported {
		inCh = 2
	}

	endpoint := settings.EndpointFor(e.store.Active())
	e.log.Debug("opening kernel", "endpoint", endpoint, "rate", rate, "channels", inCh)

	inst, err := engine.Open(e.newKernel(), int16(endpoint), rate, inCh, 2)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	e.kernel = inst
	e.store.Detach()

	for name, v := range backup {
		if err := inst.Set(name, 0, v); err != nil {
			e.log.Warn("could not restore kernel parameter", "param", name, "error", err)
		}
	}

	var ver [4]int16
	if err := inst.GetBulk(engine.ParamVersion, 0, ver[:]); err == nil {
		e.log.Debug("kernel version", "version", fmt.Sprintf("%d.%d.%d.%d", ver[0], ver[1], ver[2], ver[3]))
	}
	return nil
}

// setConfig reopens the kernel, reapplies the cached device settings and
// resets the block buffering.
func (e *Effect) setConfig() error {
	if err := e.reinit(); err != nil {
		e.log.Error("re-initialization failed", "error", err)
		return err
	}

	e.trans.SetLength(crossfade.FadeLength(e.cfg.Output.SampleRate))

	if err := e.store.Apply(e.kernel); err != nil {
		e.log.Warn("applying cached settings failed", "error", err)
	}

	e.buf = blockbuf.New(e.cfg.Input.Channels, e.cfg.Output.Channels,
		blockbuf.WithStrategy(e.strategy),
		blockbuf.WithLogger(e.log),
	)
	return nil
}

// SetConfig validates and applies cfg. The kernel is only reopened when
// the sample rate or a channel count changed.
func (e *Effect) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	change := cfg.Input.SampleRate != e.cfg.Input.SampleRate ||
		cfg.Input.Channels != e.cfg.Input.Channels ||
		cfg.Output.Channels != e.cfg.Output.Channels
	e.cfg = cfg

	if !change {
		return nil
	}
	return e.setConfig()
}

// Reset reopens the kernel in the current configuration.
func (e *Effect) Reset() error { return e.setConfig() }

// Enable starts a graceful enable.
func (e *Effect) Enable() {
	if e.trans.Enable() {
		e.log.Debug("enabled", "countdown", e.trans.Countdown())
	}
}

// Disable starts a graceful disable. Process keeps being needed until it
// returns ErrNoData.
func (e *Effect) Disable() {
	if e.trans.Disable() {
		e.log.Debug("disabled", "countdown", e.trans.Countdown())
	}
}

// SetBypass routes audio around the kernel. See crossfade.Transition.
func (e *Effect) SetBypass(bypass, crossFaded bool) {
	e.log.Info("bypass", "bypass", bypass, "cross_faded", crossFaded)
	e.trans.SetBypass(bypass, crossFaded)
}

// SetDevice changes the active output device. The kernel is reopened when
// the endpoint class changes or the device resolves to other settings.
func (e *Effect) SetDevice(d settings.Device) error {
	if !e.store.SetActive(d) {
		return nil
	}
	e.log.Info("output device changed", "device", d)
	return e.setConfig()
}

// SetAudioMode records the host audio mode. It does not change processing.
func (e *Effect) SetAudioMode(mode int32) { e.audioMode = mode }

func (e *Effect) setGain(name string, volL, volR uint32) error {
	if e.kernel == nil {
		return ErrNotOpen
	}
	g := crossfade.ExternalGain(volL, volR)
	if err := e.kernel.Set(name, 0, g); err != nil {
		return invalid(err)
	}
	e.log.Debug("gain", "param", name, "value", g)
	return nil
}

// SetPregain maps the host volume, 8.24 fixed point per channel, to the
// kernel pregain.
func (e *Effect) SetPregain(volL, volR uint32) error {
	return e.setGain(engine.ParamPregain, volL, volR)
}

// SetVolume maps a track volume to the kernel postgain.
func (e *Effect) SetVolume(volL, volR uint32) error {
	return e.setGain(engine.ParamPostgain, volL, volR)
}

// SetParam applies a parameter message.
func (e *Effect) SetParam(m Param) error {
	if e.kernel == nil && m.ID() != ParamDefineSettings {
		return ErrNotOpen
	}

	switch m := m.(type) {
	case *DefineParams:
		if e.store.DefineParams(m.Names) && e.kernel != nil {
			e.log.Debug("parameters redefined, resetting kernel")
			if err := e.kernel.ResetUserSettings(); err != nil {
				return invalid(err)
			}
		}
	case *DefineSettings:
		if e.store.DefineSettings(m.Settings) && e.kernel != nil {
			e.log.Debug("settings redefined, resetting kernel")
			if err := e.kernel.ResetUserSettings(); err != nil {
				return invalid(err)
			}
		}
	case *SingleDeviceValue:
		return invalid(e.store.SetValue(e.kernel, m.Device, int(m.Index), m.Values))
	case *AllValues:
		return invalid(e.store.SetAll(e.kernel, m.Rows))
	case *VisualizerEnable:
		var v int16
		if m.On {
			v = 1
		}
		return invalid(e.kernel.Set(engine.ParamVisEnable, 0, v))
	case *Tuning:
		e.log.Error("tuning parameters are not supported")
		return fmt.Errorf("%w: tuning not supported", ErrInvalidArgument)
	default:
		return fmt.Errorf("%w: parameter %v", ErrInvalidArgument, m.ID())
	}
	return nil
}

// GetParam reads size bytes of parameter id. The size must match the
// parameter exactly. Visualizer data is empty when nothing was processed
// since the last read, or while bypassed.
func (e *Effect) GetParam(id ParamID, size int) ([]byte, error) {
	if e.kernel == nil {
		return nil, ErrNotOpen
	}

	switch id {
	case ParamVisualizerEnable:
		if size != 4 {
			return nil, fmt.Errorf("%w: visualizer enable size %d", ErrInvalidArgument, size)
		}
		v, err := e.kernel.Get(engine.ParamVisEnable, 0)
		if err != nil {
			return nil, invalid(err)
		}
		return le.AppendUint32(nil, uint32(int32(v))), nil

	case ParamVisualizerData:
		if e.trans.Bypassed() {
			return []byte{}, nil
		}
		bands := e.store.Bands()
		if size != bands*4 {
			return nil, fmt.Errorf("%w: visualizer data size %d for %d bands", ErrInvalidArgument, size, bands)
		}
		if !e.processed {
			return []byte{}, nil
		}

		data := make([]int16, 2*bands)
		if err := e.kernel.GetBulk(engine.ParamVisGains, 0, data[:bands]); err != nil {
			return nil, invalid(err)
		}
		if err := e.kernel.GetBulk(engine.ParamVisExcitations, 0, data[bands:]); err != nil {
			return nil, invalid(err)
		}
		e.processed = false
		return appendValues(make([]byte, 0, size), data), nil

	case ParamVersion:
		if size != 8 {
			return nil, fmt.Errorf("%w: version size %d", ErrInvalidArgument, size)
		}
		var ver [4]int16
		if err := e.kernel.GetBulk(engine.ParamVersion, 0, ver[:]); err != nil {
			return nil, invalid(err)
		}
		return appendValues(make([]byte, 0, 8), ver[:]), nil
	}

	return nil, fmt.Errorf("%w: parameter %v is not readable", ErrInvalidArgument, id)
}

func (e *Effect) dump(w *PCMWriter, samples []int16, which string) {
	if *w == nil {
		return
	}
	if err := (*w).WritePCM(samples); err != nil {
		e.log.Warn("pcm dump failed, dump stopped", "dump", which, "error", err)
		*w = nil
	}
}
