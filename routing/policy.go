// SPDX-License-Identifier: EPL-2.0

package routing

import (
	"log/slog"
	"sync"
)

// EndpointSource reports the active sink and whether the post-processor is
// enabled on it.
type EndpointSource interface {
	Sink() (endpoint string, dsOn bool)
}

// SourceFunc adapts a function to EndpointSource.
type SourceFunc func() (string, bool)

func (f SourceFunc) Sink() (string, bool) { return f() }

// Static is a settable EndpointSource. It is safe to update from another
// goroutine while a Policy reads it.
type Static struct {
	mu       sync.Mutex
	endpoint string
	dsOn     bool
}

// NewStatic returns a source reporting endpoint and dsOn.
func NewStatic(endpoint string, dsOn bool) *Static {
	return &Static{endpoint: endpoint, dsOn: dsOn}
}

func (s *Static) Sink() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endpoint, s.dsOn
}

// Set changes the reported sink.
func (s *Static) Set(endpoint string, dsOn bool) {
	s.mu.Lock()
	s.endpoint, s.dsOn = endpoint, dsOn
	s.mu.Unlock()
}

// Policy tracks the sink and derives the decoder output configuration.
// Not safe for concurrent use.
type Policy struct {
	src   EndpointSource
	table Table
	log   *slog.Logger

	endpoint Endpoint
	dsOn     bool
	seen     bool

	maxChannels int
	drc         CompMode
	downmix     DownmixConfig
	stereo      StereoMode
	updated     bool
}

// NewPolicy returns a Policy reading src. A nil table selects DefaultTable.
// If log is nil, slog.Default() is used.
func NewPolicy(src EndpointSource, table *Table, log *slog.Logger) *Policy {
	if log == nil {
		log = slog.Default()
	}
	if src == nil {
		src = NewStatic("", false)
	}

	t := DefaultTable
	if table != nil {
		t = *table
	}

	return &Policy{
		src:         src,
		table:       t,
		log:         log.With("component", "routing"),
		endpoint:    EndpointInvalid,
		maxChannels: 2,
		drc:         CompPortableL14,
		downmix:     DownmixAuto,
		stereo:      StereoAuto,
	}
}

// Refresh re-reads the sink and recomputes the routing when the endpoint
// or the post-processor state changed since the last call. The channel
// budget is only updated while started is false. It reports whether
// anything was recomputed.
func (p *Policy) Refresh(started bool) bool {
	name, dsOn := p.src.Sink()
	endpoint := ParseEndpoint(name)

	if p.seen && endpoint == p.endpoint && dsOn == p.dsOn {
		return false
	}

	if endpoint == EndpointInvalid {
		p.log.Debug("active endpoint not defined, using default", "sink", name)
	}
	if !p.seen || endpoint != p.endpoint {
		p.log.Info("endpoint changed", "from", p.endpoint, "to", endpoint)
	}
	if p.seen && dsOn != p.dsOn {
		p.log.Info("post-processor state changed", "on", dsOn)
	}

	p.seen = true
	p.endpoint = endpoint
	p.dsOn = dsOn

	route := p.table.Lookup(endpoint)
	if !started {
		p.maxChannels = route.MaxChannels
	}
	p.drc = route.DRC

	// table entries are always valid
	_ = p.SetDownmix(route.Downmix(dsOn))

	return true
}

// SetDownmix applies a downmix preference and marks the routing updated.
func (p *Policy) SetDownmix(d DownmixConfig) error {
	mode, err := d.StereoMode()
	if err != nil {
		return err
	}

	p.downmix = d
	p.stereo = mode
	p.updated = true
	return nil
}

// TakeUpdate reports whether the routing changed since the last call and
// clears the flag.
func (p *Policy) TakeUpdate() bool {
	u := p.updated
	p.updated = false
	return u
}

// Decide resolves the stream layout against the current sink state.
func (p *Policy) Decide(in Input) Decision {
	in.MaxChannels = p.maxChannels
	d := Resolve(in)
	d.Stereo = p.stereo
	d.DRC = p.drc
	return d
}

func (p *Policy) Endpoint() Endpoint     { return p.endpoint }
func (p *Policy) DSOn() bool             { return p.dsOn }
func (p *Policy) MaxChannels() int       { return p.maxChannels }
func (p *Policy) DRC() CompMode          { return p.drc }
func (p *Policy) Downmix() DownmixConfig { return p.downmix }
func (p *Policy) StereoMode() StereoMode { return p.stereo }
