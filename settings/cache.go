// SPDX-License-Identifier: EPL-2.0

package settings

import (
	"fmt"
	"log/slog"
)

// Row is the full set of values for one device.
type Row struct {
	Device Device
	Values []int16
}

// Cache maps devices to fixed-width value rows. Row order is the order
// rows were supplied in and matters for the no-match fallback.
type Cache struct {
	width   int
	devices []Device
	values  []int16
	log     *slog.Logger
}

// NewCache returns an empty cache of rows width values wide.
// If log is nil, slog.Default() is used.
func NewCache(width int, log *slog.Logger) *Cache {
	if log == nil {
		log = slog.Default()
	}
	return &Cache{width: width, log: log}
}

func (c *Cache) Width() int { return c.width }
func (c *Cache) Len() int   { return len(c.devices) }

// Device returns the device of row i.
func (c *Cache) Device(i int) Device { return c.devices[i] }

// Row returns the values of row i. The slice aliases the cache.
func (c *Cache) Row(i int) []int16 {
	return c.values[i*c.width : (i+1)*c.width]
}

// Find returns the row of d, or -1.
func (c *Cache) Find(d Device) int {
	for i, dev := range c.devices {
		if dev == d {
			return i
		}
	}
	return -1
}

// Index resolves the active device to a row. The device itself is tried
// first, then its fallback chain. When nothing matches the first row is
// used. It returns -1 only for an empty cache.
func (c *Cache) Index(active Device) int {
	if len(c.devices) == 0 {
		c.log.Warn("device settings cache is empty, no settings to apply")
		return -1
	}

	if i := c.Find(active); i >= 0 {
		return i
	}

	if active == AuxDigital {
		c.log.Warn("settings requested for the digital output", "device", active)
	}
	for _, d := range Fallbacks(active) {
		if i := c.Find(d); i >= 0 {
			c.log.Debug("using fallback device settings", "device", active, "fallback", d)
			return i
		}
	}

	c.log.Warn("no suitable device found, using first cache row", "device", active, "row_device", c.devices[0])
	return 0
}

// Seed replaces the cache with a single row for d.
func (c *Cache) Seed(d Device, values []int16) error {
	if len(values) != c.width {
		return fmt.Errorf("%w: %d values, want %d", ErrRowWidth, len(values), c.width)
	}
	c.devices = []Device{d}
	c.values = append(c.values[:0], values...)
	return nil
}

// Set writes values into the row of d starting at column idx and returns
// the row index.
func (c *Cache) Set(d Device, idx int, values []int16) (int, error) {
	if idx < 0 || idx+len(values) > c.width {
		return -1, fmt.Errorf("%w: %d+%d of %d", ErrIndexRange, idx, len(values), c.width)
	}
	row := c.Find(d)
	if row < 0 {
		return -1, fmt.Errorf("%w: %v", ErrUnknownDevice, d)
	}
	copy(c.Row(row)[idx:], values)
	return row, nil
}

// Replace drops every row and loads rows instead. Nothing changes when a
// row has the wrong width.
func (c *Cache) Replace(rows []Row) error {
	for _, r := range rows {
		if len(r.Values) != c.width {
			return fmt.Errorf("%w: device %v has %d values, want %d", ErrRowWidth, r.Device, len(r.Values), c.width)
		}
	}

	c.devices = c.devices[:0]
	c.values = c.values[:0]
	for _, r := range rows {
		c.devices = append(c.devices, r.Device)
		c.values = append(c.values, r.Values...)
	}
	return nil
}

// Clear drops every row.
func (c *Cache) Clear() {
	c.devices = nil
	c.values = nil
}
