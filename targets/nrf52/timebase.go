//go:build nrf52 || nrf52840

package main

import (
	"device/nrf"
	"runtime/interrupt"
	"unsafe"

	"adcpipe/core"

	"periph.io/x/conn/v3/physic"
)

const irqPriority = 0xC0

// rtcTimeBase drives RTC2 in TICK mode. RTC0 and RTC1 belong to the
// radio stack and the runtime.
type rtcTimeBase struct {
	handler func()
}

var rtc rtcTimeBase

func (*rtcTimeBase) Capabilities() core.TimeBaseCapabilities {
	return core.TimeBaseCapabilities{
		Kind:         core.CounterTick,
		Input:        32768 * physic.Hertz,
		MaxPrescaler: nrf.RTC_PRESCALER_PRESCALER_Msk >> nrf.RTC_PRESCALER_PRESCALER_Pos,
	}
}

func (*rtcTimeBase) Configure(rate core.TriggerRate) error {
	nrf.RTC2.TASKS_STOP.Set(1)
	nrf.RTC2.TASKS_CLEAR.Set(1)
	nrf.RTC2.PRESCALER.Set(rate.Prescaler)
	nrf.RTC2.EVENTS_TICK.Set(0)
	// Route the event to PPI; interrupts are opt-in.
	nrf.RTC2.EVTENSET.Set(nrf.RTC_EVTENSET_TICK_Msk)
	return nil
}

func (*rtcTimeBase) Start() {
	nrf.RTC2.TASKS_START.Set(1)
}

func (*rtcTimeBase) Event() core.EventID {
	return core.EventID(uintptr(unsafe.Pointer(&nrf.RTC2.EVENTS_TICK)))
}

func (r *rtcTimeBase) SetInterruptHandler(fn func()) {
	r.handler = fn
	if fn == nil {
		nrf.RTC2.INTENCLR.Set(nrf.RTC_INTENCLR_TICK_Msk)
		return
	}
	intr := interrupt.New(nrf.IRQ_RTC2, rtc.handleInterrupt)
	intr.SetPriority(irqPriority)
	intr.Enable()
	nrf.RTC2.INTENSET.Set(nrf.RTC_INTENSET_TICK_Msk)
}

func (r *rtcTimeBase) handleInterrupt(interrupt.Interrupt) {
	if nrf.RTC2.EVENTS_TICK.Get() == 0 {
		return
	}
	nrf.RTC2.EVENTS_TICK.Set(0)
	if r.handler != nil {
		r.handler()
	}
}

// timerTimeBase drives TIMER2 in 16-bit timer mode, clocked at
// 16 MHz / 2^9 and cleared on COMPARE[0].
type timerTimeBase struct {
	handler func()
}

var timer timerTimeBase

const timerPrescaler = 9

func (*timerTimeBase) Capabilities() core.TimeBaseCapabilities {
	return core.TimeBaseCapabilities{
		Kind:        core.CounterCompare,
		Input:       (16 * physic.MegaHertz) >> timerPrescaler,
		CompareBits: 16,
	}
}

func (*timerTimeBase) Configure(rate core.TriggerRate) error {
	nrf.TIMER2.TASKS_STOP.Set(1)
	nrf.TIMER2.TASKS_CLEAR.Set(1)
	nrf.TIMER2.MODE.Set(nrf.TIMER_MODE_MODE_Timer)
	nrf.TIMER2.BITMODE.Set(nrf.TIMER_BITMODE_BITMODE_16Bit)
	nrf.TIMER2.PRESCALER.Set(timerPrescaler)
	nrf.TIMER2.CC[0].Set(rate.Ticks)
	nrf.TIMER2.SHORTS.Set(nrf.TIMER_SHORTS_COMPARE0_CLEAR_Msk)
	nrf.TIMER2.EVENTS_COMPARE[0].Set(0)
	return nil
}

func (*timerTimeBase) Start() {
	nrf.TIMER2.TASKS_START.Set(1)
}

func (*timerTimeBase) Event() core.EventID {
	return core.EventID(uintptr(unsafe.Pointer(&nrf.TIMER2.EVENTS_COMPARE[0])))
}

func (t *timerTimeBase) SetInterruptHandler(fn func()) {
	t.handler = fn
	if fn == nil {
		nrf.TIMER2.INTENCLR.Set(nrf.TIMER_INTENCLR_COMPARE0_Msk)
		return
	}
	intr := interrupt.New(nrf.IRQ_TIMER2, timer.handleInterrupt)
	intr.SetPriority(irqPriority)
	intr.Enable()
	nrf.TIMER2.INTENSET.Set(nrf.TIMER_INTENSET_COMPARE0_Msk)
}

func (t *timerTimeBase) handleInterrupt(interrupt.Interrupt) {
	if nrf.TIMER2.EVENTS_COMPARE[0].Get() == 0 {
		return
	}
	nrf.TIMER2.EVENTS_COMPARE[0].Set(0)
	if t.handler != nil {
		t.handler()
	}
}
