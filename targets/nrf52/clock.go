//go:build nrf52 || nrf52840

package main

import "device/nrf"

// nrfClockDriver implements core.ClockDriver on the CLOCK peripheral:
// LFCLK from the 32.768 kHz crystal for the RTC, and the HFXO for
// conversions.
type nrfClockDriver struct{}

func (nrfClockDriver) StartLowFrequency() {
	// The runtime may already run LFCLK for its own RTC.
	if nrf.CLOCK.LFCLKSTAT.Get()&nrf.CLOCK_LFCLKSTAT_STATE_Msk != 0 {
		return
	}
	nrf.CLOCK.LFCLKSRC.Set(nrf.CLOCK_LFCLKSRC_SRC_Xtal << nrf.CLOCK_LFCLKSRC_SRC_Pos)
	nrf.CLOCK.EVENTS_LFCLKSTARTED.Set(0)
	nrf.CLOCK.TASKS_LFCLKSTART.Set(1)
}

func (nrfClockDriver) LowFrequencyRunning() bool {
	return nrf.CLOCK.LFCLKSTAT.Get()&nrf.CLOCK_LFCLKSTAT_STATE_Msk != 0
}

func (nrfClockDriver) RequestHighAccuracy() {
	nrf.CLOCK.EVENTS_HFCLKSTARTED.Set(0)
	nrf.CLOCK.TASKS_HFCLKSTART.Set(1)
}

func (nrfClockDriver) ReleaseHighAccuracy() {
	nrf.CLOCK.TASKS_HFCLKSTOP.Set(1)
}

func (nrfClockDriver) HighAccuracyRunning() bool {
	stat := nrf.CLOCK.HFCLKSTAT.Get()
	return stat&nrf.CLOCK_HFCLKSTAT_STATE_Msk != 0 && stat&nrf.CLOCK_HFCLKSTAT_SRC_Msk != 0
}
