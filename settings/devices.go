// SPDX-License-Identifier: EPL-2.0

package settings

import (
	"fmt"
	"strings"
)

// Device is an output device id. Ids are single bit flags, 0 is never a
// device.
type Device int32

const (
	Earpiece        Device = 0x1
	Speaker         Device = 0x2
	WiredHeadset    Device = 0x4
	WiredHeadphone  Device = 0x8
	BluetoothSCO    Device = 0x10
	SCOHeadset      Device = 0x20
	SCOCarkit       Device = 0x40
	A2DP            Device = 0x80
	A2DPHeadphones  Device = 0x100
	A2DPSpeaker     Device = 0x200
	AuxDigital      Device = 0x400
	AnlgDockHeadset Device = 0x800
	DgtlDockHeadset Device = 0x1000
	USBAccessory    Device = 0x2000
	USBDevice       Device = 0x4000
	RemoteSubmix    Device = 0x8000
)

var deviceNames = map[Device]string{
	Earpiece:        "earpiece",
	Speaker:         "speaker",
	WiredHeadset:    "wired_headset",
	WiredHeadphone:  "wired_headphone",
	BluetoothSCO:    "bluetooth_sco",
	SCOHeadset:      "sco_headset",
	SCOCarkit:       "sco_carkit",
	A2DP:            "a2dp",
	A2DPHeadphones:  "a2dp_headphones",
	A2DPSpeaker:     "a2dp_speaker",
	AuxDigital:      "aux_digital",
	AnlgDockHeadset: "analog_dock",
	DgtlDockHeadset: "digital_dock",
	USBAccessory:    "usb_accessory",
	USBDevice:       "usb_device",
	RemoteSubmix:    "remote_submix",
}

func (d Device) String() string {
	if name, ok := deviceNames[d]; ok {
		return name
	}
	return fmt.Sprintf("device(%#x)", int32(d))
}

// ParseDevice returns the device with the given name, as printed by String.
func ParseDevice(name string) (Device, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for d, n := range deviceNames {
		if n == name {
			return d, true
		}
	}
	return 0, false
}

// Endpoint is the kernel's notion of an output class.
type Endpoint int16

const (
	Internal Endpoint = iota
	External
	Headphones
	HDMI
	SPDIF
	DLNA
	Analog

	numEndpoints
)

func (e Endpoint) String() string {
	switch e {
	case Internal:
		return "internal_speakers"
	case External:
		return "external_speakers"
	case Headphones:
		return "headphones"
	case HDMI:
		return "hdmi"
	case SPDIF:
		return "spdif"
	case DLNA:
		return "dlna"
	case Analog:
		return "analog"
	}
	return fmt.Sprintf("endpoint(%d)", int16(e))
}

// EndpointFor maps an output device to the kernel endpoint tuned for it.
// Unknown devices are treated as external speakers.
func EndpointFor(d Device) Endpoint {
	switch d {
	case WiredHeadset, WiredHeadphone, A2DPHeadphones, AnlgDockHeadset, DgtlDockHeadset:
		return Headphones
	case Speaker:
		return Internal
	case RemoteSubmix, AuxDigital:
		return HDMI
	}
	return External
}

// EndpointParams are the leveler and virtual bass values forced on every
// device apply.
type EndpointParams struct {
	Leveler      int16
	LevelerInput int16
	VirtualBass  int16
}

var endpointParams = [numEndpoints]EndpointParams{
	Internal:   {-320, -320, 144},
	External:   {-320, -320, 144},
	Headphones: {-320, -320, 144},
	HDMI:       {-320, -320, 144},
	SPDIF:      {-320, -320, 144},
	DLNA:       {-320, -320, 144},
	Analog:     {-320, -320, 144},
}

// ParamsFor returns the per endpoint values. Out of range endpoints get the
// external speaker row.
func ParamsFor(e Endpoint) EndpointParams {
	if e < 0 || e >= numEndpoints {
		return endpointParams[External]
	}
	return endpointParams[e]
}

var fallbacks = map[Device][]Device{
	Earpiece:        {Speaker},
	Speaker:         {Earpiece},
	WiredHeadset:    {WiredHeadphone, Earpiece},
	WiredHeadphone:  {WiredHeadset, Earpiece},
	BluetoothSCO:    {A2DP, WiredHeadset, WiredHeadphone, Earpiece},
	SCOHeadset:      {BluetoothSCO, A2DP, A2DPHeadphones, WiredHeadset, WiredHeadphone, Earpiece},
	SCOCarkit:       {A2DPSpeaker, Speaker},
	A2DP:            {BluetoothSCO, WiredHeadset, WiredHeadphone, Earpiece},
	A2DPHeadphones:  {SCOHeadset, WiredHeadphone, WiredHeadset, Earpiece},
	A2DPSpeaker:     {SCOCarkit, Speaker},
	AuxDigital:      {Speaker},
	RemoteSubmix:    {Speaker},
	AnlgDockHeadset: {WiredHeadphone, WiredHeadset, Earpiece},
	DgtlDockHeadset: {WiredHeadphone, WiredHeadset, Earpiece},
	USBAccessory:    {WiredHeadphone, WiredHeadset, Earpiece},
	USBDevice:       {WiredHeadphone, WiredHeadset, Earpiece},
}

// Fallbacks returns the devices tried, in order, when d has no cached row.
// The returned slice must not be modified.
func Fallbacks(d Device) []Device {
	return fallbacks[d]
}
