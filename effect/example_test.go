// SPDX-License-Identifier: EPL-2.0

package effect_test

import (
	"fmt"

	"github.com/ik5/ddpfx/effect"
	"github.com/ik5/ddpfx/engine"
)

func Example() {
	e, err := effect.New(func() engine.Kernel { return engine.NewGainKernel(2) })
	if err != nil {
		fmt.Println(err)
		return
	}
	defer e.Close()

	cfg := effect.DefaultConfig()
	cfg.Output.Access = effect.AccessWrite
	if err := e.SetConfig(cfg); err != nil {
		fmt.Println(err)
		return
	}

	reply, _ := e.Command(effect.CmdEnable, nil, 4)
	fmt.Println(e.State(), reply)

	in := make([]int16, 512*2)
	out := make([]int16, len(in))
	err = e.Process(effect.Buffer{Samples: in, Frames: 512}, effect.Buffer{Samples: out, Frames: 512})
	fmt.Println(err, e.Transition().Countdown())

	// Output:
	// enabling [0 0 0 0]
	// <nil> 7048
}

func ExampleEncodeGetParam() {
	e, err := effect.New(func() engine.Kernel { return engine.NewGainKernel(2) })
	if err != nil {
		fmt.Println(err)
		return
	}
	defer e.Close()

	reply, err := e.Command(effect.CmdGetParam, effect.EncodeGetParam(effect.ParamVersion, 8), 64)
	if err != nil {
		fmt.Println(err)
		return
	}
	status, value, _ := effect.DecodeGetParamReply(reply)
	fmt.Println(status, value)

	// Output: 0 [2 0 0 0 0 0 0 0]
}
