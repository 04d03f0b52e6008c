// SPDX-License-Identifier: EPL-2.0

package settings

import (
	"fmt"
	"log/slog"

	"github.com/ik5/ddpfx/engine"
)

// Params is the part of a kernel the store pushes values through.
// engine.Kernel satisfies it.
type Params interface {
	Get(name string, idx int) (int16, error)
	GetBulk(name string, offset int, dst []int16) error
	Set(name string, idx int, value int16) error
	SetBulk(name string, offset int, values []int16) error
}

// Store keeps the schema, the device cache and the routing state of one
// effect instance. Not safe for concurrent use.
type Store struct {
	schema  Schema
	lengths map[int8]int
	cache   *Cache
	log     *slog.Logger

	active Device
	used   Device
	bands  int
}

// NewStore returns an empty store with the speaker active.
// If log is nil, slog.Default() is used.
func NewStore(log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "settings")

	return &Store{
		lengths: map[int8]int{},
		cache:   NewCache(0, log),
		log:     log,
		active:  Speaker,
	}
}

func (s *Store) Schema() Schema { return s.schema }
func (s *Store) Cache() *Cache  { return s.cache }
func (s *Store) Active() Device { return s.active }

// Used returns the device whose row was last pushed, 0 when none.
func (s *Store) Used() Device { return s.used }

// Bands returns the visualizer band count set by the last push.
func (s *Store) Bands() int { return s.bands }

// Defined reports whether both parameter names and settings exist.
func (s *Store) Defined() bool {
	return len(s.schema.Names) > 0 && len(s.schema.Settings) > 0
}

// DefineParams replaces the parameter name table. Names are cut to
// MaxNameLen. It reports whether a table existed before, in which case the
// kernel should drop user settings.
func (s *Store) DefineParams(names []string) bool {
	had := s.schema.Names != nil

	s.schema.Names = make([]string, len(names))
	for i, n := range names {
		if len(n) > MaxNameLen {
			n = n[:MaxNameLen]
		}
		s.schema.Names[i] = n
		s.log.Debug("parameter defined", "index", i, "name", n)
	}
	return had
}

// DefineSettings replaces the row layout and clears the cache. It reports
// whether the cache held rows before, in which case the kernel should drop
// user settings.
func (s *Store) DefineSettings(defs []Setting) bool {
	had := s.cache.Len() > 0

	s.schema.Settings = append([]Setting(nil), defs...)
	s.lengths = s.schema.Lengths()
	s.cache = NewCache(len(defs), s.log)
	s.log.Debug("settings defined", "count", len(defs))
	return had
}

// Detach forgets which row was pushed. Call it after the kernel was
// reopened and holds defaults again.
func (s *Store) Detach() { s.used = 0 }

// SetActive makes d the active device. It reports whether the kernel must
// be reconfigured: the endpoint class changed, or d resolves to another
// cached row than the one in use.
func (s *Store) SetActive(d Device) bool {
	if d == s.active {
		return false
	}

	old := s.active
	s.active = d

	if EndpointFor(d) != EndpointFor(old) {
		return true
	}

	i := s.cache.Index(d)
	return i >= 0 && s.cache.Device(i) != s.used
}

func (s *Store) name(p int8) (string, error) {
	name, ok := s.schema.Name(p)
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownParam, p)
	}
	return name, nil
}

// SetValue stores values for d starting at column idx. An empty cache is
// seeded with a row for d read back from k, and d becomes the device in
// use. When d is in use the values are pushed to k right away.
func (s *Store) SetValue(k Params, d Device, idx int, values []int16) error {
	if !s.Defined() {
		return ErrNotDefined
	}
	if idx < 0 || len(values) == 0 || idx+len(values) > s.cache.Width() {
		return fmt.Errorf("%w: %d+%d of %d", ErrIndexRange, idx, len(values), s.cache.Width())
	}

	if s.cache.Len() == 0 {
		if err := s.seed(k, d); err != nil {
			return err
		}
	}

	if _, err := s.cache.Set(d, idx, values); err != nil {
		return err
	}
	if d != s.used {
		return nil
	}

	st := s.schema.Settings[idx]
	name, err := s.name(st.Param)
	if err != nil {
		return err
	}
	off := int(st.Offset)

	if len(values) == 1 {
		if err := k.Set(name, off, values[0]); err != nil {
			return fmt.Errorf("set %s: %w", name, err)
		}
		if name == engine.ParamEQBands {
			if err := k.Set(engine.ParamVisBandCount, off, values[0]); err != nil {
				return fmt.Errorf("set %s: %w", engine.ParamVisBandCount, err)
			}
			s.bands = int(values[0])
		}
		return nil
	}

	if err := k.SetBulk(name, off, values); err != nil {
		return fmt.Errorf("set %s: %w", name, err)
	}
	if name == engine.ParamEQBandFreqs {
		if err := k.SetBulk(engine.ParamVisBandFreqs, off, values); err != nil {
			return fmt.Errorf("set %s: %w", engine.ParamVisBandFreqs, err)
		}
	}
	return nil
}

func (s *Store) seed(k Params, d Device) error {
	s.log.Warn("cache is empty, seeding from current kernel settings", "device", d)

	row := make([]int16, s.cache.Width())
	for i, st := range s.schema.Settings {
		name, err := s.name(st.Param)
		if err != nil {
			return err
		}
		v, err := k.Get(name, int(st.Offset))
		if err != nil {
			return fmt.Errorf("get %s: %w", name, err)
		}
		row[i] = v
	}

	if err := s.cache.Seed(d, row); err != nil {
		return err
	}
	s.used = d
	return nil
}

// SetAll replaces the whole cache and pushes the row of the active device.
func (s *Store) SetAll(k Params, rows []Row) error {
	if !s.Defined() {
		return ErrNotDefined
	}
	if err := s.cache.Replace(rows); err != nil {
		return err
	}
	return s.Apply(k)
}

// Apply pushes the row the active device resolves to. Each parameter is
// written once, bulk parameters with a single SetBulk. The visualizer
// band layout then follows the equalizer bands and the endpoint defaults
// are forced.
func (s *Store) Apply(k Params) error {
	i := s.cache.Index(s.active)
	if i < 0 {
		s.log.Warn("no device settings found to apply")
		return nil
	}
	s.used = s.cache.Device(i)
	row := s.cache.Row(i)

	for j := 0; j < len(row); j++ {
		st := s.schema.Settings[j]
		if st.Offset != 0 {
			s.log.Error("setting ignored, start offset must be 0", "column", j, "offset", st.Offset)
			continue
		}

		name, err := s.name(st.Param)
		if err != nil {
			return err
		}

		n := s.lengths[st.Param]
		if n <= 1 {
			if err := k.Set(name, 0, row[j]); err != nil {
				return fmt.Errorf("set %s: %w", name, err)
			}
			continue
		}

		end := min(j+n, len(row))
		if err := k.SetBulk(name, 0, row[j:end]); err != nil {
			return fmt.Errorf("set %s: %w", name, err)
		}
		j = end - 1
	}

	return s.syncKernel(k)
}

func (s *Store) syncKernel(k Params) error {
	bands, err := k.Get(engine.ParamEQBands, 0)
	if err != nil {
		return fmt.Errorf("get %s: %w", engine.ParamEQBands, err)
	}
	s.bands = max(int(bands), 0)

	if err := k.Set(engine.ParamVisBandCount, 0, int16(s.bands)); err != nil {
		return fmt.Errorf("set %s: %w", engine.ParamVisBandCount, err)
	}

	freqs := make([]int16, s.bands)
	if err := k.GetBulk(engine.ParamEQBandFreqs, 0, freqs); err != nil {
		return fmt.Errorf("get %s: %w", engine.ParamEQBandFreqs, err)
	}
	if err := k.SetBulk(engine.ParamVisBandFreqs, 0, freqs); err != nil {
		return fmt.Errorf("set %s: %w", engine.ParamVisBandFreqs, err)
	}

	ep := ParamsFor(EndpointFor(s.active))
	for _, p := range []struct {
		name  string
		value int16
	}{
		{engine.ParamLeveler, ep.Leveler},
		{engine.ParamLevelerInput, ep.LevelerInput},
		{engine.ParamVirtualBass, ep.VirtualBass},
	} {
		if err := k.Set(p.name, 0, p.value); err != nil {
			return fmt.Errorf("set %s: %w", p.name, err)
		}
	}

	return nil
}
