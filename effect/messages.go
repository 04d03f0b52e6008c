// SPDX-License-Identifier: EPL-2.0

package effect

import (
	"bytes"
	"encoding"
	"encoding/binary"
	"fmt"

	"github.com/ik5/ddpfx/settings"
)

// ParamID identifies a parameter of SetParam and GetParam.
type ParamID int32

const (
	ParamDefineParams ParamID = iota + 1
	ParamDefineSettings
	ParamSingleDeviceValue
	ParamAllValues
	ParamVisualizerEnable
	ParamVisualizerData
	ParamVersion
	ParamTuning
)

func (p ParamID) String() string {
	switch p {
	case ParamDefineParams:
		return "define_params"
	case ParamDefineSettings:
		return "define_settings"
	case ParamSingleDeviceValue:
		return "single_device_value"
	case ParamAllValues:
		return "all_values"
	case ParamVisualizerEnable:
		return "visualizer_enable"
	case ParamVisualizerData:
		return "visualizer_data"
	case ParamVersion:
		return "version"
	case ParamTuning:
		return "tuning"
	}
	return fmt.Sprintf("param(%d)", int32(p))
}

// Param is a settable parameter message.
type Param interface {
	ID() ParamID
	encoding.BinaryMarshaler
}

var le = binary.LittleEndian

func short(what string, got, want int) error {
	return fmt.Errorf("%w: %s is %d bytes, want %d", ErrMalformed, what, got, want)
}

// DefineParams names the kernel parameters settings may refer to, by
// index.
type DefineParams struct {
	Names []string
}

func (*DefineParams) ID() ParamID { return ParamDefineParams }

func (m *DefineParams) MarshalBinary() ([]byte, error) {
	p := le.AppendUint16(nil, uint16(len(m.Names)))
	for _, n := range m.Names {
		if len(n) > settings.MaxNameLen {
			return nil, fmt.Errorf("%w: parameter name %q too long", ErrMalformed, n)
		}
		var name [settings.MaxNameLen]byte
		copy(name[:], n)
		p = append(p, name[:]...)
	}
	return p, nil
}

func (m *DefineParams) UnmarshalBinary(p []byte) error {
	if len(p) < 2 {
		return short("define params", len(p), 2)
	}
	n := int(int16(le.Uint16(p)))
	if n < 0 || len(p) < 2+n*settings.MaxNameLen {
		return short("define params", len(p), 2+max(n, 0)*settings.MaxNameLen)
	}

	m.Names = make([]string, n)
	for i := range n {
		name := p[2+i*settings.MaxNameLen : 2+(i+1)*settings.MaxNameLen]
		if j := bytes.IndexByte(name, 0); j >= 0 {
			name = name[:j]
		}
		m.Names[i] = string(name)
	}
	return nil
}

// DefineSettings lays out a device row.
type DefineSettings struct {
	Settings []settings.Setting
}

func (*DefineSettings) ID() ParamID { return ParamDefineSettings }

const settingSize = 3

func (m *DefineSettings) MarshalBinary() ([]byte, error) {
	p := le.AppendUint16(nil, uint16(len(m.Settings)))
	for _, s := range m.Settings {
		p = append(p, byte(s.Param))
		p = le.AppendUint16(p, uint16(s.Offset))
	}
	return p, nil
}

func (m *DefineSettings) UnmarshalBinary(p []byte) error {
	if len(p) < 2 {
		return short("define settings", len(p), 2)
	}
	n := int(int16(le.Uint16(p)))
	if n < 0 || len(p) < 2+n*settingSize {
		return short("define settings", len(p), 2+max(n, 0)*settingSize)
	}

	m.Settings = make([]settings.Setting, n)
	for i := range n {
		b := p[2+i*settingSize:]
		m.Settings[i] = settings.Setting{Param: int8(b[0]), Offset: int16(le.Uint16(b[1:]))}
	}
	return nil
}

// SingleDeviceValue updates consecutive columns of one device row.
type SingleDeviceValue struct {
	Device settings.Device
	Index  int16
	Values []int16
}

func (*SingleDeviceValue) ID() ParamID { return ParamSingleDeviceValue }

func (m *SingleDeviceValue) MarshalBinary() ([]byte, error) {
	p := le.AppendUint32(nil, uint32(m.Device))
	p = le.AppendUint16(p, uint16(m.Index))
	p = le.AppendUint16(p, uint16(len(m.Values)))
	return appendValues(p, m.Values), nil
}

func (m *SingleDeviceValue) UnmarshalBinary(p []byte) error {
	if len(p) < 8 {
		return short("single device value", len(p), 8)
	}
	m.Device = settings.Device(int32(le.Uint32(p)))
	m.Index = int16(le.Uint16(p[4:]))
	n := int(int16(le.Uint16(p[6:])))
	if n < 0 || len(p) < 8+2*n {
		return short("single device value", len(p), 8+2*max(n, 0))
	}
	m.Values = decodeValues(p[8:], n)
	return nil
}

// AllValues replaces every device row. Width, the number of values per
// row, must be set before UnmarshalBinary.
type AllValues struct {
	Width int
	Rows  []settings.Row
}

func (*AllValues) ID() ParamID { return ParamAllValues }

func (m *AllValues) MarshalBinary() ([]byte, error) {
	p := le.AppendUint16(nil, uint16(len(m.Rows)))
	for _, r := range m.Rows {
		if len(r.Values) != m.Width {
			return nil, fmt.Errorf("%w: device %v has %d values, want %d", ErrMalformed, r.Device, len(r.Values), m.Width)
		}
		p = le.AppendUint32(p, uint32(r.Device))
		p = appendValues(p, r.Values)
	}
	return p, nil
}

func (m *AllValues) UnmarshalBinary(p []byte) error {
	if len(p) < 2 {
		return short("all values", len(p), 2)
	}
	n := int(int16(le.Uint16(p)))
	rowSize := 4 + 2*m.Width
	if n < 0 || len(p) < 2+n*rowSize {
		return short("all values", len(p), 2+max(n, 0)*rowSize)
	}

	m.Rows = make([]settings.Row, n)
	for i := range n {
		b := p[2+i*rowSize:]
		m.Rows[i] = settings.Row{
			Device: settings.Device(int32(le.Uint32(b))),
			Values: decodeValues(b[4:], m.Width),
		}
	}
	return nil
}

// VisualizerEnable switches the kernel's band analysis on or off.
type VisualizerEnable struct {
	On bool
}

func (*VisualizerEnable) ID() ParamID { return ParamVisualizerEnable }

func (m *VisualizerEnable) MarshalBinary() ([]byte, error) {
	var v uint32
	if m.On {
		v = 1
	}
	return le.AppendUint32(nil, v), nil
}

func (m *VisualizerEnable) UnmarshalBinary(p []byte) error {
	if len(p) < 4 {
		return short("visualizer enable", len(p), 4)
	}
	m.On = le.Uint32(p) != 0
	return nil
}

// Tuning carries an opaque tuning blob. The effect rejects it.
type Tuning struct {
	Data []byte
}

func (*Tuning) ID() ParamID { return ParamTuning }

func (m *Tuning) MarshalBinary() ([]byte, error) { return bytes.Clone(m.Data), nil }

func (m *Tuning) UnmarshalBinary(p []byte) error {
	m.Data = bytes.Clone(p)
	return nil
}

func appendValues(p []byte, values []int16) []byte {
	for _, v := range values {
		p = le.AppendUint16(p, uint16(v))
	}
	return p
}

func decodeValues(p []byte, n int) []int16 {
	values := make([]int16, n)
	for i := range values {
		values[i] = int16(le.Uint16(p[2*i:]))
	}
	return values
}

// decodeParam decodes a SetParam value. width is the current row width.
func decodeParam(id ParamID, value []byte, width int) (Param, error) {
	var m interface {
		Param
		encoding.BinaryUnmarshaler
	}

	switch id {
	case ParamDefineParams:
		m = &DefineParams{}
	case ParamDefineSettings:
		m = &DefineSettings{}
	case ParamSingleDeviceValue:
		m = &SingleDeviceValue{}
	case ParamAllValues:
		m = &AllValues{Width: width}
	case ParamVisualizerEnable:
		m = &VisualizerEnable{}
	case ParamTuning:
		m = &Tuning{}
	default:
		return nil, fmt.Errorf("%w: parameter %v is not settable", ErrInvalidArgument, id)
	}

	if err := m.UnmarshalBinary(value); err != nil {
		return nil, err
	}
	return m, nil
}

// paramHeaderSize is the fixed part of a parameter command: status, key
// size and value size, each 32 bits.
const paramHeaderSize = 12

// EncodeSetParam builds the payload of a CmdSetParam command.
func EncodeSetParam(m Param) ([]byte, error) {
	value, err := m.MarshalBinary()
	if err != nil {
		return nil, err
	}

	p := make([]byte, 0, paramHeaderSize+4+len(value))
	p = le.AppendUint32(p, 0)
	p = le.AppendUint32(p, 4)
	p = le.AppendUint32(p, uint32(len(value)))
	p = le.AppendUint32(p, uint32(m.ID()))
	return append(p, value...), nil
}

// EncodeGetParam builds the payload of a CmdGetParam command asking for
// size bytes of parameter id.
func EncodeGetParam(id ParamID, size int) []byte {
	p := make([]byte, 0, paramHeaderSize+4)
	p = le.AppendUint32(p, 0)
	p = le.AppendUint32(p, 4)
	p = le.AppendUint32(p, uint32(size))
	return le.AppendUint32(p, uint32(id))
}

// DecodeGetParamReply splits a CmdGetParam reply into its status and value.
func DecodeGetParamReply(p []byte) (int32, []byte, error) {
	h, err := decodeParamHeader(p)
	if err != nil {
		return 0, nil, err
	}
	if len(p) < h.valueOffset+h.vsize {
		return 0, nil, short("get param reply", len(p), h.valueOffset+h.vsize)
	}
	return h.status, p[h.valueOffset : h.valueOffset+h.vsize], nil
}

type paramHeader struct {
	status      int32
	psize       int
	vsize       int
	valueOffset int
}

func decodeParamHeader(p []byte) (paramHeader, error) {
	if len(p) < paramHeaderSize+4 {
		return paramHeader{}, short("parameter command", len(p), paramHeaderSize+4)
	}

	h := paramHeader{
		status: int32(le.Uint32(p)),
		psize:  int(le.Uint32(p[4:])),
		vsize:  int(le.Uint32(p[8:])),
	}
	if h.psize <= 0 || h.psize > len(p) || h.vsize < 0 {
		return paramHeader{}, fmt.Errorf("%w: key size %d, value size %d", ErrMalformed, h.psize, h.vsize)
	}
	// the value starts at the next 32 bit boundary after the key
	h.valueOffset = paramHeaderSize + ((h.psize-1)/4+1)*4
	return h, nil
}
