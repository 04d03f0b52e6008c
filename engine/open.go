// SPDX-License-Identifier: EPL-2.0

package engine

import "fmt"

// Instance is an opened, started kernel configured for one PCM layout.
type Instance struct {
	Kernel
	SampleRate  int
	InChannels  int
	OutChannels int
}

// Open brings k up for endpoint at the given layout.
//
// Kernels older than major version 2 take the endpoint as an init-time
// parameter, newer ones only accept it after Start.
func Open(k Kernel, endpoint int16, sampleRate, inChannels, outChannels int) (*Instance, error) {
	if err := k.Open(); err != nil {
		return nil, fmt.Errorf("kernel open: %w", err)
	}

	inst, err := start(k, endpoint, sampleRate, inChannels)
	if err != nil {
		_ = k.Close()
		return nil, err
	}

	inst.OutChannels = outChannels
	return inst, nil
}

func start(k Kernel, endpoint int16, sampleRate, inChannels int) (*Instance, error) {
	var ver [4]int16
	if err := k.GetBulk(ParamVersion, 0, ver[:]); err != nil {
		return nil, fmt.Errorf("kernel version: %w", err)
	}

	if ver[0] < 2 {
		if err := k.SetInit(ParamEndpoint, endpoint); err != nil {
			return nil, fmt.Errorf("kernel init endpoint: %w", err)
		}
	}

	if err := k.Start(); err != nil {
		return nil, fmt.Errorf("kernel start: %w", err)
	}

	if ver[0] >= 2 {
		if err := k.Set(ParamEndpoint, 0, endpoint); err != nil {
			return nil, fmt.Errorf("kernel endpoint: %w", err)
		}
	}

	layout, ok := ChannelMap(inChannels)
	if !ok {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedLayout, inChannels)
	}

	if err := k.SetInputConfig(sampleRate, BlockSize, layout); err != nil {
		return nil, fmt.Errorf("kernel input config: %w", err)
	}

	return &Instance{Kernel: k, SampleRate: sampleRate, InChannels: inChannels}, nil
}
