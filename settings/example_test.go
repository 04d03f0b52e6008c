// SPDX-License-Identifier: EPL-2.0

package settings_test

import (
	"fmt"

	"github.com/ik5/ddpfx/settings"
)

func ExampleCache_Index() {
	c := settings.NewCache(1, nil)
	_ = c.Replace([]settings.Row{
		{Device: settings.Speaker, Values: []int16{0}},
		{Device: settings.Earpiece, Values: []int16{1}},
	})

	// a wired headset has no row of its own and falls back to the earpiece
	i := c.Index(settings.WiredHeadset)
	fmt.Println(c.Device(i))
	// Output: earpiece
}
