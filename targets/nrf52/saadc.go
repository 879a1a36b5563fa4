//go:build nrf52 || nrf52840

package main

import (
	"device/nrf"
	"errors"
	"runtime/interrupt"
	"unsafe"

	"adcpipe/core"
)

var (
	errMixedResolution = errors.New("saadc: all channels must share one resolution")
	errNoBandgap       = errors.New("saadc: bandgap reference not available")
)

// nrfADCDriver implements core.ADCDriver on the SAADC in scan mode.
// EasyDMA writes each burst into the next slots of the armed buffer and
// raises END once RESULT.MAXCNT samples are written.
type nrfADCDriver struct {
	armed []core.Sample
	done  func([]core.Sample)
}

var saadc nrfADCDriver

func (d *nrfADCDriver) Configure(set *core.ChannelSet) error {
	res := set.Channel(0).Resolution
	for i := 0; i < set.Count(); i++ {
		ch := set.Channel(i)
		if ch.Resolution != res {
			return errMixedResolution
		}
		if ch.Reference == core.RefBandgap {
			return errNoBandgap
		}
	}

	nrf.SAADC.ENABLE.Set(nrf.SAADC_ENABLE_ENABLE_Disabled << nrf.SAADC_ENABLE_ENABLE_Pos)
	for i := range nrf.SAADC.CH {
		nrf.SAADC.CH[i].PSELP.Set(nrf.SAADC_CH_PSELP_PSELP_NC)
		nrf.SAADC.CH[i].PSELN.Set(nrf.SAADC_CH_PSELN_PSELN_NC)
	}
	for i := 0; i < set.Count(); i++ {
		ch := set.Channel(i)
		nrf.SAADC.CH[i].CONFIG.Set(channelConfig(ch))
		nrf.SAADC.CH[i].PSELP.Set(inputSelect(ch.Input))
	}
	nrf.SAADC.RESOLUTION.Set(resolutionValue(res))
	nrf.SAADC.OVERSAMPLE.Set(0)
	nrf.SAADC.SAMPLERATE.Set(nrf.SAADC_SAMPLERATE_MODE_Task << nrf.SAADC_SAMPLERATE_MODE_Pos)
	nrf.SAADC.ENABLE.Set(nrf.SAADC_ENABLE_ENABLE_Enabled << nrf.SAADC_ENABLE_ENABLE_Pos)

	nrf.SAADC.EVENTS_CALIBRATEDONE.Set(0)
	nrf.SAADC.TASKS_CALIBRATEOFFSET.Set(1)
	for nrf.SAADC.EVENTS_CALIBRATEDONE.Get() == 0 {
	}
	nrf.SAADC.EVENTS_CALIBRATEDONE.Set(0)

	nrf.SAADC.EVENTS_END.Set(0)
	nrf.SAADC.INTENSET.Set(nrf.SAADC_INTENSET_END_Msk)
	intr := interrupt.New(nrf.IRQ_SAADC, saadc.handleInterrupt)
	intr.SetPriority(irqPriority)
	intr.Enable()
	return nil
}

func (d *nrfADCDriver) Arm(buf []core.Sample) error {
	if len(buf) == 0 {
		return core.ErrRearmRejected
	}
	if len(buf) > nrf.SAADC_RESULT_MAXCNT_MAXCNT_Msk>>nrf.SAADC_RESULT_MAXCNT_MAXCNT_Pos {
		return core.ErrRearmRejected
	}
	d.armed = buf
	nrf.SAADC.RESULT.PTR.Set(uint32(uintptr(unsafe.Pointer(&buf[0]))))
	nrf.SAADC.RESULT.MAXCNT.Set(uint32(len(buf)))
	nrf.SAADC.TASKS_START.Set(1)
	return nil
}

func (d *nrfADCDriver) SampleTask() core.TaskID {
	return core.TaskID(uintptr(unsafe.Pointer(&nrf.SAADC.TASKS_SAMPLE)))
}

func (d *nrfADCDriver) Sample() {
	nrf.SAADC.TASKS_SAMPLE.Set(1)
}

func (d *nrfADCDriver) SetCompletionHandler(fn func([]core.Sample)) {
	d.done = fn
}

func (d *nrfADCDriver) handleInterrupt(interrupt.Interrupt) {
	if nrf.SAADC.EVENTS_END.Get() == 0 {
		return
	}
	nrf.SAADC.EVENTS_END.Set(0)

	buf := d.armed
	d.armed = nil
	if buf == nil || d.done == nil {
		return
	}
	// A short transfer is handed on as is; the engine rejects it.
	if n := int(nrf.SAADC.RESULT.AMOUNT.Get()); n < len(buf) {
		buf = buf[:n]
	}
	d.done(buf)
}

func channelConfig(ch core.ChannelConfig) uint32 {
	refsel := uint32(nrf.SAADC_CH_CONFIG_REFSEL_Internal)
	if ch.Reference == core.RefVDD4 {
		refsel = nrf.SAADC_CH_CONFIG_REFSEL_VDD1_4
	}
	// core.Gain follows the CH.CONFIG.GAIN encoding, 1/6 through 4.
	return (nrf.SAADC_CH_CONFIG_RESP_Bypass<<nrf.SAADC_CH_CONFIG_RESP_Pos)&nrf.SAADC_CH_CONFIG_RESP_Msk |
		(nrf.SAADC_CH_CONFIG_RESN_Bypass<<nrf.SAADC_CH_CONFIG_RESN_Pos)&nrf.SAADC_CH_CONFIG_RESN_Msk |
		(uint32(ch.Gain)<<nrf.SAADC_CH_CONFIG_GAIN_Pos)&nrf.SAADC_CH_CONFIG_GAIN_Msk |
		(refsel<<nrf.SAADC_CH_CONFIG_REFSEL_Pos)&nrf.SAADC_CH_CONFIG_REFSEL_Msk |
		(nrf.SAADC_CH_CONFIG_TACQ_10us<<nrf.SAADC_CH_CONFIG_TACQ_Pos)&nrf.SAADC_CH_CONFIG_TACQ_Msk |
		(nrf.SAADC_CH_CONFIG_MODE_SE<<nrf.SAADC_CH_CONFIG_MODE_Pos)&nrf.SAADC_CH_CONFIG_MODE_Msk
}

func inputSelect(in core.AnalogInput) uint32 {
	if in == core.InputVDD {
		return nrf.SAADC_CH_PSELP_PSELP_VDD
	}
	return nrf.SAADC_CH_PSELP_PSELP_AnalogInput0 + uint32(in)
}

func resolutionValue(r core.Resolution) uint32 {
	switch r {
	case core.Resolution8:
		return nrf.SAADC_RESOLUTION_VAL_8bit
	case core.Resolution12:
		return nrf.SAADC_RESOLUTION_VAL_12bit
	case core.Resolution14:
		return nrf.SAADC_RESOLUTION_VAL_14bit
	default:
		return nrf.SAADC_RESOLUTION_VAL_10bit
	}
}
