// SPDX-License-Identifier: EPL-2.0

package routing

// Endpoint is an output sink class.
type Endpoint int

const (
	EndpointHDMI2 Endpoint = iota
	EndpointHDMI6
	EndpointHDMI8
	EndpointHeadset
	EndpointSpeaker
	// EndpointInvalid is used when the sink is unknown or unset.
	EndpointInvalid

	numEndpoints
)

var endpointNames = [numEndpoints]string{
	"hdmi2",
	"hdmi6",
	"hdmi8",
	"headset",
	"speaker",
	"invalid",
}

func (e Endpoint) String() string {
	if e < 0 || e >= numEndpoints {
		return "unknown"
	}
	return endpointNames[e]
}

// ParseEndpoint maps a sink name to its Endpoint. Unknown names resolve to
// EndpointInvalid.
func ParseEndpoint(name string) Endpoint {
	for i, n := range endpointNames {
		if n == name {
			return Endpoint(i)
		}
	}
	return EndpointInvalid
}

// Route is one row of the endpoint table.
type Route struct {
	DownmixOff  DownmixConfig // post-processor off
	DownmixOn   DownmixConfig // post-processor on
	DRC         CompMode
	MaxChannels int
}

// Downmix returns the preference for the given post-processor state.
func (r Route) Downmix(dsOn bool) DownmixConfig {
	if dsOn {
		return r.DownmixOn
	}
	return r.DownmixOff
}

// Table holds one Route per Endpoint.
type Table [numEndpoints]Route

// DefaultTable is the stock endpoint configuration.
var DefaultTable = Table{
	EndpointHDMI2:   {DownmixLoRo, DownmixLtRt, CompLine, 2},
	EndpointHDMI6:   {DownmixStream, DownmixStream, CompLine, 6},
	EndpointHDMI8:   {DownmixStream, DownmixStream, CompLine, 8},
	EndpointHeadset: {DownmixLoRo, DownmixLtRt, CompPortableL14, 2},
	EndpointSpeaker: {DownmixLoRo, DownmixLtRt, CompPortableL14, 2},
	EndpointInvalid: {DownmixLoRo, DownmixLtRt, CompPortableL14, 2},
}

// WithMonoSpeaker returns a copy of t for devices with a single speaker,
// where a surround-compatible downmix is pointless.
func (t Table) WithMonoSpeaker() Table {
	t[EndpointSpeaker].DownmixOn = DownmixLoRo
	return t
}

// Lookup returns the row for e, falling back to the invalid row.
func (t *Table) Lookup(e Endpoint) Route {
	if e < 0 || e >= numEndpoints {
		e = EndpointInvalid
	}
	return t[e]
}
