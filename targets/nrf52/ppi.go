//go:build nrf52 || nrf52840

package main

import (
	"device/nrf"

	"adcpipe/core"
)

// ppiChannels is the number of programmable PPI channels.
const ppiChannels = 20

// nrfRouterDriver implements core.RouterDriver on the PPI.
type nrfRouterDriver struct {
	used uint32
}

func (d *nrfRouterDriver) Alloc() (core.RouteChannel, error) {
	for ch := 0; ch < ppiChannels; ch++ {
		if d.used&(1<<ch) == 0 {
			d.used |= 1 << ch
			return core.RouteChannel(ch), nil
		}
	}
	return 0, core.ErrRouteUnavailable
}

func (d *nrfRouterDriver) Assign(ch core.RouteChannel, event core.EventID, task core.TaskID) error {
	if int(ch) >= ppiChannels || d.used&(1<<ch) == 0 {
		return core.ErrRouteNotConnected
	}
	nrf.PPI.CH[ch].EEP.Set(uint32(event))
	nrf.PPI.CH[ch].TEP.Set(uint32(task))
	return nil
}

func (d *nrfRouterDriver) Enable(ch core.RouteChannel) {
	nrf.PPI.CHENSET.Set(1 << ch)
}

func (d *nrfRouterDriver) Disable(ch core.RouteChannel) {
	nrf.PPI.CHENCLR.Set(1 << ch)
}
